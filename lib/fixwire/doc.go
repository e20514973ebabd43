// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fixwire encodes the fix coordination protocol.
//
// A connection carries one request frame from the client and at most
// one response frame from the server. A frame is a 4-byte big-endian
// length followed by that many bytes of CBOR:
//
//	request:  {version, request_type, request_info}
//	response: {version, response_type: "fix_state", response_info: [...]}
//
// The identity field inside request_info and response_info depends on
// the protocol version. Version 1 carries a bare job name in
// "project_name"; version 2 carries the job URL in "project_url".
// Request and Response are version-independent; the encoders pick the
// field name.
package fixwire
