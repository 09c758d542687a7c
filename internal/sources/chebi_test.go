// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metabolights/compound-builder/pkg/types"
)

const chebiWaterXML = `<?xml version="1.0" encoding="UTF-8"?>
<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/">
  <S:Body>
    <getCompleteEntityResponse xmlns="https://www.ebi.ac.uk/webservices/chebi">
      <return>
        <chebiId>CHEBI:15377</chebiId>
        <chebiAsciiName>water</chebiAsciiName>
        <definition>An oxygen hydride.</definition>
        <smiles>O</smiles>
        <inchi>InChI=1S/H2O/h1H2</inchi>
        <inchiKey>XLYOFNOQVPJJNP-UHFFFAOYSA-N</inchiKey>
        <charge>0</charge>
        <mass>18.01530</mass>
        <monoisotopicMass>18.01056</monoisotopicMass>
        <Formulae><data>H2O</data><source>ChEBI</source></Formulae>
        <Synonyms><data>aqua</data><type>SYNONYM</type></Synonyms>
        <Synonyms><data>dihydrogen oxide</data><type>SYNONYM</type></Synonyms>
        <IupacNames><data>oxidane</data><type>IUPAC NAME</type></IupacNames>
        <Citations><data>15882455</data><type>PubMed citation</type><source>CiteXplore</source></Citations>
        <DatabaseLinks><data>CAS:7732-18-5</data><type>CAS Registry Number</type></DatabaseLinks>
        <CompoundOrigins>
          <speciesText>Homo Sapiens</speciesText>
          <speciesAccession>NCBI:9606</speciesAccession>
          <SourceType>MetaboLights</SourceType>
          <SourceAccession>MTBLS1</SourceAccession>
        </CompoundOrigins>
      </return>
    </getCompleteEntityResponse>
  </S:Body>
</S:Envelope>`

func chebiTestServer(t *testing.T, body string) (*httptest.Server, types.SourcesConfig) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	cfg := types.SourcesConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		Endpoints:  types.EndpointsConfig{ChebiAPI: srv.URL + "/?chebiId="},
	}
	return srv, cfg
}

func TestFetchChEBI(t *testing.T) {
	srv, cfg := chebiTestServer(t, chebiWaterXML)

	compound, err := FetchChEBI(context.Background(), srv.Client(), "15377", cfg, types.NewRefMapping())
	require.NoError(t, err)

	assert.Equal(t, "15377", compound.ID)
	assert.Equal(t, "CHEBI:15377", compound.ChebiID)
	assert.Equal(t, "water", compound.Name)
	assert.Equal(t, "An oxygen hydride.", compound.Definition)
	assert.Equal(t, "H2O", compound.Formula)
	assert.Equal(t, "XLYOFNOQVPJJNP-UHFFFAOYSA-N", compound.InchiKey)
	assert.Equal(t, []string{"aqua", "dihydrogen oxide"}, compound.Synonyms)
	assert.Equal(t, []string{"oxidane"}, compound.IupacNames)

	require.Len(t, compound.Citations, 1)
	assert.Equal(t, "15882455", compound.Citations[0].Value)

	require.Len(t, compound.DatabaseLinks, 1)
	assert.Equal(t, "CAS Registry Number", compound.DatabaseLinks[0].Type)

	// Species names are lowercased on the way in.
	require.Contains(t, compound.Species, "homo sapiens")
	assert.Equal(t, "NCBI:9606", compound.Species["homo sapiens"][0].SpeciesAccession)
}

func TestFetchChEBIMergesMappingSpecies(t *testing.T) {
	srv, cfg := chebiTestServer(t, chebiWaterXML)

	mapping := types.NewRefMapping()
	mapping.CompoundMapping["CHEBI:15377"] = []types.MappingEntry{
		{Study: "MTBLS42", Compound: "CHEBI:15377", Assay: 1, Species: "Mus Musculus", Part: "liver"},
	}

	compound, err := FetchChEBI(context.Background(), srv.Client(), "15377", cfg, mapping)
	require.NoError(t, err)

	require.Contains(t, compound.Species, "mus musculus")
	origin := compound.Species["mus musculus"][0]
	assert.Equal(t, "MTBLS42", origin.SourceAccession)
	assert.Equal(t, "liver", origin.Part)
}

func TestFetchChEBIEmptyEnvelope(t *testing.T) {
	srv, cfg := chebiTestServer(t, `<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/"><S:Body/></S:Envelope>`)

	_, err := FetchChEBI(context.Background(), srv.Client(), "99999", cfg, types.NewRefMapping())
	assert.ErrorContains(t, err, "no entity")
}

func TestFetchChEBIMalformedXML(t *testing.T) {
	srv, cfg := chebiTestServer(t, "<<<not xml")

	_, err := FetchChEBI(context.Background(), srv.Client(), "15377", cfg, types.NewRefMapping())
	assert.Error(t, err)
}

func TestSeedFromCompound(t *testing.T) {
	compound := &ChebiCompound{
		ID:       "15377",
		InchiKey: "XLYOFNOQVPJJNP-UHFFFAOYSA-N",
		Citations: []types.Citation{
			{Value: "15882455"},
		},
	}
	seed := compound.Seed("MTBLC15377")
	assert.Equal(t, "MTBLC15377", seed.CompoundID)
	assert.Equal(t, "15377", seed.ChebiID)
	assert.Len(t, seed.Citations, 1)
}
