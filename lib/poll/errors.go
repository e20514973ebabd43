// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package poll

import "fmt"

// Phase names the cycle phase a request belongs to.
type Phase string

const (
	PhaseDiscover    Phase = "discover"
	PhaseDetail      Phase = "detail"
	PhaseLastSuccess Phase = "last_success"
)

// RequestError reports one failed CI request.
type RequestError struct {
	Phase Phase
	URL   string
	Err   error
}

func (err *RequestError) Error() string {
	return fmt.Sprintf("poll %s %s: %v", err.Phase, err.URL, err.Err)
}

func (err *RequestError) Unwrap() error { return err.Err }
