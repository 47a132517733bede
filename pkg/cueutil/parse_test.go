// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const sliceSchema = `
#Slice: {
	identifier:   string & !=""
	architecture: string
	count?:       int & >=0
}
`

type slice struct {
	Identifier   string `json:"identifier"`
	Architecture string `json:"architecture"`
	Count        int    `json:"count"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	data := []byte(`{"identifier": "device-arm64", "architecture": "arm64", "count": 2}`)

	result, err := ParseAndDecode[slice]([]byte(sliceSchema), data, "#Slice")
	if err != nil {
		t.Fatalf("ParseAndDecode() error = %v", err)
	}
	if result.Value.Identifier != "device-arm64" || result.Value.Count != 2 {
		t.Errorf("decoded value = %+v", *result.Value)
	}
}

func TestParseAndDecodeRejectsSchemaViolations(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		data string
		want string
	}{
		{"wrong type", `{"identifier": "x", "architecture": "arm64", "count": "two"}`, "count"},
		{"empty identifier", `{"identifier": "", "architecture": "arm64"}`, "identifier"},
		{"unknown field", `{"identifier": "x", "architecture": "arm64", "extra": 1}`, "extra"},
		{"syntax error", `{"identifier": `, "input.json"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseAndDecode[slice]([]byte(sliceSchema), []byte(tc.data), "#Slice",
				WithFilename("input.json"))
			if err == nil {
				t.Fatal("ParseAndDecode() accepted invalid input")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestParseAndDecodeConcreteness(t *testing.T) {
	t.Parallel()

	// architecture is required by the schema but missing here.
	incomplete := []byte(`{"identifier": "device-arm64"}`)
	if _, err := ParseAndDecode[slice]([]byte(sliceSchema), incomplete, "#Slice"); err == nil {
		t.Error("ParseAndDecode() accepted a non-concrete document")
	}

	// Relaxed concreteness still accepts complete documents.
	complete := []byte(`{"identifier": "device-arm64", "architecture": "arm64"}`)
	if _, err := ParseAndDecode[slice]([]byte(sliceSchema), complete, "#Slice", WithConcrete(false)); err != nil {
		t.Errorf("ParseAndDecode(WithConcrete(false)) error = %v", err)
	}
}

func TestParseAndDecodeSizeLimit(t *testing.T) {
	t.Parallel()

	data := []byte(`{"identifier": "device-arm64", "architecture": "arm64"}`)

	_, err := ParseAndDecode[slice]([]byte(sliceSchema), data, "#Slice", WithMaxFileSize(8))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("ParseAndDecode() with 8-byte limit error = %v", err)
	}
}

func TestParseAndDecodeMissingDefinition(t *testing.T) {
	t.Parallel()

	data := []byte(`{"identifier": "x", "architecture": "arm64"}`)
	if _, err := ParseAndDecode[slice]([]byte(sliceSchema), data, "#Nope"); err == nil {
		t.Error("ParseAndDecode() accepted an unknown schema definition")
	}
}
