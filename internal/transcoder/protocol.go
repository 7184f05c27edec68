package transcoder

import (
	"fmt"

	"woffsmith/internal/container"
)

// Kind tags protocol messages.
type Kind string

const (
	KindConvert Kind = "convert"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultErrorMessage is reported when a failure carries no message of its own.
const DefaultErrorMessage = "Conversion failed"

// Request asks a worker to encode Source into Format.
type Request struct {
	ID       string
	Kind     Kind
	Source   []byte
	Format   container.Format
	FileName string
}

// Response answers exactly one Request with the same ID.
type Response struct {
	ID        string
	Kind      Kind
	Container []byte
	FileName  string
	Format    container.Format
	Message   string

	cause error
}

// OK reports whether the response carries a container.
func (r Response) OK() bool {
	return r.Kind == KindSuccess
}

// Err returns nil for success responses and a *ConversionError otherwise.
func (r Response) Err() error {
	if r.Kind == KindSuccess {
		return nil
	}
	msg := r.Message
	if msg == "" {
		msg = DefaultErrorMessage
	}
	return &ConversionError{ID: r.ID, FileName: r.FileName, Message: msg, Cause: r.cause}
}

// ConversionError reports a failed conversion for one request.
type ConversionError struct {
	ID       string
	FileName string
	Message  string
	Cause    error
}

func (e *ConversionError) Error() string {
	if e.FileName == "" {
		return e.Message
	}
	return fmt.Sprintf("convert %s: %s", e.FileName, e.Message)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

func successResponse(req Request, data []byte) Response {
	return Response{
		ID:        req.ID,
		Kind:      KindSuccess,
		Container: data,
		FileName:  container.OutputName(req.FileName, req.Format),
		Format:    req.Format,
	}
}

func errorResponse(req Request, err error) Response {
	msg := DefaultErrorMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Response{
		ID:       req.ID,
		Kind:     KindError,
		FileName: req.FileName,
		Format:   req.Format,
		Message:  msg,
		cause:    err,
	}
}
