// Package xjson funnels all JSON marshalling through a single import site so
// the codec can be switched without touching callers.
package xjson

import (
	stdjson "encoding/json"

	gjson "github.com/goccy/go-json"
)

// Marshal encodes v using the configured codec.
func Marshal(v interface{}) ([]byte, error) {
	return gjson.Marshal(v)
}

// Unmarshal decodes data into v using the configured codec.
func Unmarshal(data []byte, v interface{}) error {
	return gjson.Unmarshal(data, v)
}

// MarshalIndent encodes v with indentation, for human-facing output.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gjson.MarshalIndent(v, prefix, indent)
}

// RawMessage is kept compatible with encoding/json's RawMessage type.
type RawMessage = stdjson.RawMessage
