package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
)

var (
	// ErrSubmitInFlight is returned when an auth submission is already running.
	ErrSubmitInFlight = errors.New("another submission is already in progress")
	// ErrNoSession is returned by protected calls made while signed out.
	ErrNoSession = errors.New("not signed in")
)

const networkMessage = "An unexpected error occurred. Please check your network connection."

// ErrorResponse is an error body returned by the API. It is either
// *FieldErrors or *GeneralError.
type ErrorResponse interface {
	error
	StatusCode() int
	isErrorResponse()
}

// FieldErrors carries per-field validation messages. Status is zero when the
// input was rejected locally before any request was sent.
type FieldErrors struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *FieldErrors) Error() string {
	if e.Message != "" {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msgs := e.Fields[k]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "the given data was invalid"
}

func (e *FieldErrors) StatusCode() int { return e.Status }
func (*FieldErrors) isErrorResponse() {}

// GeneralError is an error body without field details, such as 401 or 500.
type GeneralError struct {
	Status  int
	Message string
}

func (e *GeneralError) Error() string { return e.Message }
func (e *GeneralError) StatusCode() int { return e.Status }
func (*GeneralError) isErrorResponse() {}

// NetworkError wraps a transport failure or an unreadable response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// FormErrors is the display model for a form: one message per field shown
// inline and a banner for everything else.
type FormErrors struct {
	Fields  map[string]string
	General string
}

// Empty reports whether there is nothing to display.
func (f FormErrors) Empty() bool {
	return len(f.Fields) == 0 && f.General == ""
}

// FormErrorsFrom converts any client error into the display model.
func FormErrorsFrom(err error) FormErrors {
	if err == nil {
		return FormErrors{}
	}

	var (
		fieldErr   *FieldErrors
		generalErr *GeneralError
		netErr     *NetworkError
	)
	switch {
	case errors.As(err, &fieldErr):
		out := FormErrors{Fields: make(map[string]string, len(fieldErr.Fields))}
		for field, msgs := range fieldErr.Fields {
			if len(msgs) > 0 {
				out.Fields[field] = msgs[0]
			}
		}
		return out
	case errors.As(err, &generalErr):
		return FormErrors{General: generalErr.Message}
	case errors.As(err, &netErr):
		return FormErrors{General: networkMessage}
	default:
		return FormErrors{General: err.Error()}
	}
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// decodeErrorResponse reads a non-2xx response. fallback is used when the body
// carries no message.
func decodeErrorResponse(resp *http.Response, fallback string) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &NetworkError{Err: err}
	}

	var body errorBody
	_ = json.Unmarshal(raw, &body)

	if len(body.Errors) > 0 {
		return &FieldErrors{Status: resp.StatusCode, Message: body.Message, Fields: body.Errors}
	}
	if body.Message == "" {
		body.Message = fallback
	}
	return &GeneralError{Status: resp.StatusCode, Message: body.Message}
}
