package marking

import (
	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/pkg/errors"
)

var (
	ErrDocumentLoad  = errors.New("document load failure")
	ErrSerialization = errors.New("serialization failure")
	ErrOutputInvalid = errors.New("output failed validation")

	ErrInvalidColorFormat      = pdfutils.ErrInvalidColorFormat
	ErrMalformedHighlightColor = pdfutils.ErrMalformedHighlightColor
	ErrMalformedMark           = pdfutils.ErrMalformedMark
)

// MarkError identifies the page and index of a mark that could not be
// rendered.
type MarkError = pdfutils.MarkError

// loadError reports a document that could not be read. It matches both
// ErrDocumentLoad and the error that caused it.
type loadError struct {
	cause error
}

func loadFailure(cause error) error {
	return &loadError{cause: cause}
}

func (e *loadError) Error() string {
	return ErrDocumentLoad.Error() + ": " + e.cause.Error()
}

func (e *loadError) Unwrap() []error {
	return []error{ErrDocumentLoad, e.cause}
}
