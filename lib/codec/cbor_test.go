// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type claim struct {
	Project string `cbor:"project_url"`
	User    string `cbor:"user_name"`
	Build   int64  `cbor:"build_number"`
}

func TestMarshalIsDeterministic(t *testing.T) {
	first := map[string]any{"b": 2, "a": 1, "c": []string{"x"}}
	second := map[string]any{"c": []string{"x"}, "a": 1, "b": 2}

	firstBytes, err := Marshal(first)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	secondBytes, err := Marshal(second)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(firstBytes, secondBytes) {
		t.Errorf("map insertion order changed the encoding:\n%x\n%x", firstBytes, secondBytes)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	data, err := Marshal(map[string]any{
		"project_url":  "http://ci/job/App/",
		"user_name":    "alice",
		"build_number": 12,
		"extra":        "from a newer client",
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded claim
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Project != "http://ci/job/App/" || decoded.User != "alice" || decoded.Build != 12 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestUnmarshalAnyUsesStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"request_info": map[string]any{"projects": []string{"App"}}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded["request_info"].(map[string]any); !ok {
		t.Fatalf("nested map decoded as %T, want map[string]any", decoded["request_info"])
	}
}

func TestRawMessageDefersDecoding(t *testing.T) {
	type envelope struct {
		Version int        `cbor:"version"`
		Info    RawMessage `cbor:"request_info"`
	}
	data, err := Marshal(map[string]any{
		"version":      1,
		"request_info": map[string]any{"project_name": "App", "build_number": 3},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var outer envelope
	if err := Unmarshal(data, &outer); err != nil {
		t.Fatalf("Unmarshal envelope: %v", err)
	}
	var inner struct {
		Name  string `cbor:"project_name"`
		Build int64  `cbor:"build_number"`
	}
	if err := Unmarshal(outer.Info, &inner); err != nil {
		t.Fatalf("Unmarshal info: %v", err)
	}
	if outer.Version != 1 || inner.Name != "App" || inner.Build != 3 {
		t.Errorf("decoded %d %+v", outer.Version, inner)
	}
}

func TestUnmarshalRejectsDeepNesting(t *testing.T) {
	var value any = "leaf"
	for range maxNesting + 1 {
		value = []any{value}
	}
	data, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err == nil {
		t.Fatal("document nested past the limit decoded")
	}
}
