// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jenkins

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from a Jenkins server.
type APIError struct {
	StatusCode int
	URL        string

	// Body is a bounded prefix of the response body.
	Body string
}

func (err *APIError) Error() string {
	if err.Body == "" {
		return fmt.Sprintf("jenkins: GET %s: HTTP %d", err.URL, err.StatusCode)
	}
	return fmt.Sprintf("jenkins: GET %s: HTTP %d: %s", err.URL, err.StatusCode, err.Body)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) &&
		(apiError.StatusCode == http.StatusUnauthorized || apiError.StatusCode == http.StatusForbidden)
}
