// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package queue

import (
	"encoding/json"
	"fmt"
)

// envelopeVersion is bumped if the chunk wire format ever changes shape.
const envelopeVersion = 1

// chunkEnvelope is the typed wire format for one queue entry: a version field
// plus the id list. Consumers reject versions they do not understand instead
// of guessing at the payload shape.
type chunkEnvelope struct {
	Version int      `json:"v"`
	IDs     []string `json:"ids"`
}

// encodeChunk serializes one chunk of ids for the queue.
func encodeChunk(ids []string) (string, error) {
	data, err := json.Marshal(chunkEnvelope{Version: envelopeVersion, IDs: ids})
	if err != nil {
		return "", fmt.Errorf("encoding chunk: %w", err)
	}
	return string(data), nil
}

// decodeChunk restores the exact id list from a queue payload, including ids
// containing special characters.
func decodeChunk(payload string) ([]string, error) {
	var env chunkEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, fmt.Errorf("decoding chunk: %w", err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("unsupported chunk version %d", env.Version)
	}
	return env.IDs, nil
}
