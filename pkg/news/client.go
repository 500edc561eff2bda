package news

import (
	"context"
	"errors"
	"fmt"

	"uptotimenews/internal/model"
)

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrTransport         = errors.New("transport failure")
)

type NewsClient interface {
	Fetch(ctx context.Context) ([]model.Article, error)
	Name() string
}

// MalformedResponseError reports a body that does not have the expected
// envelope shape. Index is -1 unless a specific array element is at fault.
type MalformedResponseError struct {
	Source string
	Index  int
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("%s decode: %s", e.Source, e.Reason)
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s decode: element %d: %s", e.Source, e.Index, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// TransportError covers everything that goes wrong before a body can be
// decoded: network errors, timeouts and non-2xx statuses.
type TransportError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch: unexpected status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s fetch: %v", e.Source, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
