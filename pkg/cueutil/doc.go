// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// The package consolidates the 3-step CUE parsing pattern used by the
// config and bundle packages:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed manifest_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Manifest](
//	    schemaBytes,
//	    manifestBytes,
//	    "#Manifest",
//	    cueutil.WithFilename("manifest.json"),
//	)
//
// JSON documents can be validated directly: JSON is a subset of CUE, so
// manifest bytes compile as-is and unify with the schema definition.
package cueutil
