// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fixwire

import (
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/buildmonitor/lib/codec"
	"github.com/bureau-foundation/buildmonitor/lib/fix"
)

// Protocol versions.
const (
	Version1 = 1
	Version2 = 2
)

// RequestType selects the server operation.
type RequestType string

const (
	FixState     RequestType = "fix_state"
	ReportFixing RequestType = "report_fixing"
	MarkFixed    RequestType = "mark_fixed"
)

var (
	// ErrUnsupportedVersion is returned for a version other than 1 or 2.
	ErrUnsupportedVersion = errors.New("fixwire: unsupported protocol version")

	// ErrUnknownRequestType is returned for an unrecognized request_type.
	ErrUnknownRequestType = errors.New("fixwire: unknown request type")
)

// Request is a decoded request. Projects is used by FixState; Project,
// UserName and BuildNumber by the mutations.
type Request struct {
	Version     int
	Type        RequestType
	Projects    []string
	Project     string
	UserName    string
	BuildNumber int64
}

// Response answers a FixState request. Each record's ProjectKey holds
// the identity in the response's version: a bare name for version 1,
// a URL for version 2.
type Response struct {
	Version int
	Records []fix.Record
}

type requestEnvelope struct {
	Version     int              `cbor:"version"`
	RequestType string           `cbor:"request_type"`
	RequestInfo codec.RawMessage `cbor:"request_info"`
}

type responseEnvelope struct {
	Version      int              `cbor:"version"`
	ResponseType string           `cbor:"response_type"`
	ResponseInfo codec.RawMessage `cbor:"response_info"`
}

// payload holds every request_info field of both versions. Encoders
// fill only the fields of the chosen version.
type payload struct {
	ProjectName string   `cbor:"project_name,omitempty"`
	ProjectURL  string   `cbor:"project_url,omitempty"`
	UserName    string   `cbor:"user_name,omitempty"`
	BuildNumber int64    `cbor:"build_number,omitempty"`
	Projects    []string `cbor:"projects,omitempty"`
}

func (p *payload) setIdentity(version int, identity string) {
	if version == Version1 {
		p.ProjectName = identity
	} else {
		p.ProjectURL = identity
	}
}

func (p *payload) identity(version int) string {
	if version == Version1 {
		return p.ProjectName
	}
	return p.ProjectURL
}

func checkVersion(version int) error {
	if version != Version1 && version != Version2 {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	return nil
}

// EncodeRequest serializes a request document.
func EncodeRequest(request Request) ([]byte, error) {
	if err := checkVersion(request.Version); err != nil {
		return nil, err
	}
	var info payload
	switch request.Type {
	case FixState:
		info.Projects = request.Projects
	case ReportFixing:
		info.setIdentity(request.Version, request.Project)
		info.UserName = request.UserName
		info.BuildNumber = request.BuildNumber
	case MarkFixed:
		info.setIdentity(request.Version, request.Project)
		info.BuildNumber = request.BuildNumber
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequestType, request.Type)
	}
	infoBytes, err := codec.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("fixwire: encoding request_info: %w", err)
	}
	return codec.Marshal(requestEnvelope{
		Version:     request.Version,
		RequestType: string(request.Type),
		RequestInfo: infoBytes,
	})
}

// DecodeRequest parses a request document.
func DecodeRequest(data []byte) (Request, error) {
	var envelope requestEnvelope
	if err := codec.Unmarshal(data, &envelope); err != nil {
		return Request{}, fmt.Errorf("fixwire: decoding request: %w", err)
	}
	if err := checkVersion(envelope.Version); err != nil {
		return Request{}, err
	}
	var info payload
	if len(envelope.RequestInfo) > 0 {
		if err := codec.Unmarshal(envelope.RequestInfo, &info); err != nil {
			return Request{}, fmt.Errorf("fixwire: decoding request_info: %w", err)
		}
	}

	request := Request{Version: envelope.Version, Type: RequestType(envelope.RequestType)}
	switch request.Type {
	case FixState:
		request.Projects = info.Projects
	case ReportFixing:
		request.Project = info.identity(request.Version)
		request.UserName = info.UserName
		request.BuildNumber = info.BuildNumber
	case MarkFixed:
		request.Project = info.identity(request.Version)
		request.BuildNumber = info.BuildNumber
	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownRequestType, envelope.RequestType)
	}
	return request, nil
}

// EncodeResponse serializes a FixState response. Version 1 responses
// carry the last path segment of each key as project_name.
func EncodeResponse(version int, records []fix.Record) ([]byte, error) {
	if err := checkVersion(version); err != nil {
		return nil, err
	}
	info := make([]payload, 0, len(records))
	for _, record := range records {
		entry := payload{UserName: record.UserName, BuildNumber: record.BuildNumber}
		if version == Version1 {
			entry.ProjectName = fix.LastSegment(record.ProjectKey)
		} else {
			entry.ProjectURL = record.ProjectKey
		}
		info = append(info, entry)
	}
	infoBytes, err := codec.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("fixwire: encoding response_info: %w", err)
	}
	return codec.Marshal(responseEnvelope{
		Version:      version,
		ResponseType: string(FixState),
		ResponseInfo: infoBytes,
	})
}

// DecodeResponse parses a FixState response document.
func DecodeResponse(data []byte) (Response, error) {
	var envelope responseEnvelope
	if err := codec.Unmarshal(data, &envelope); err != nil {
		return Response{}, fmt.Errorf("fixwire: decoding response: %w", err)
	}
	if err := checkVersion(envelope.Version); err != nil {
		return Response{}, err
	}
	if envelope.ResponseType != string(FixState) {
		return Response{}, fmt.Errorf("fixwire: unexpected response_type %q", envelope.ResponseType)
	}
	var info []payload
	if len(envelope.ResponseInfo) > 0 {
		if err := codec.Unmarshal(envelope.ResponseInfo, &info); err != nil {
			return Response{}, fmt.Errorf("fixwire: decoding response_info: %w", err)
		}
	}
	response := Response{Version: envelope.Version, Records: make([]fix.Record, 0, len(info))}
	for _, entry := range info {
		response.Records = append(response.Records, fix.Record{
			ProjectKey:  entry.identity(envelope.Version),
			UserName:    entry.UserName,
			BuildNumber: entry.BuildNumber,
		})
	}
	return response, nil
}

// WriteRequest encodes and frames a request.
func WriteRequest(w io.Writer, request Request) error {
	data, err := EncodeRequest(request)
	if err != nil {
		return err
	}
	return WriteFrame(w, data)
}

// ReadRequest reads and decodes one request frame.
func ReadRequest(r io.Reader) (Request, error) {
	data, err := ReadFrame(r)
	if err != nil {
		return Request{}, err
	}
	return DecodeRequest(data)
}

// WriteResponse encodes and frames a FixState response.
func WriteResponse(w io.Writer, version int, records []fix.Record) error {
	data, err := EncodeResponse(version, records)
	if err != nil {
		return err
	}
	return WriteFrame(w, data)
}

// ReadResponse reads and decodes one response frame.
func ReadResponse(r io.Reader) (Response, error) {
	data, err := ReadFrame(r)
	if err != nil {
		return Response{}, err
	}
	return DecodeResponse(data)
}
