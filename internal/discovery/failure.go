// Package discovery implements the artist listing use case: it parses the
// caller's filters and weights, loads the artist set and ranks it.
package discovery

import (
	"errors"
	"fmt"

	"github.com/onnwee/artistrank/internal/ranking"
)

// Kind classifies a failed listing.
type Kind string

const (
	// KindParameter means a filter or weight could not be parsed.
	KindParameter Kind = "parameter_error"
	// KindSystem covers repository failures and anything unexpected.
	KindSystem Kind = "system_error"
	// KindResource means the requested resource does not exist.
	KindResource Kind = "resource_error"
)

// Failure is the error returned by Service. Message is safe to show to callers.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Classify maps err onto the failure taxonomy. Errors that already are a
// *Failure are returned as is.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}

	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	var perr *ranking.ParameterError
	if errors.As(err, &perr) {
		return &Failure{Kind: KindParameter, Message: perr.Error(), Err: err}
	}

	return &Failure{
		Kind:    KindSystem,
		Message: fmt.Sprintf("%T: %v", rootCause(err), err),
		Err:     err,
	}
}

// NewResourceFailure reports a missing resource.
func NewResourceFailure(message string) *Failure {
	return &Failure{Kind: KindResource, Message: message}
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
