package style

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is matched by every error returned for a document that is
	// not valid JSON or whose top level is not an object.
	ErrSyntax = errors.New("style: invalid document")

	// ErrDuplicateID is returned when a source or layer id is already taken.
	ErrDuplicateID = errors.New("style: duplicate identifier")

	// ErrDanglingReference is returned when a layer names a source that is
	// not part of the document.
	ErrDanglingReference = errors.New("style: dangling source reference")

	// ErrUnknownLayer is returned when a layer insertion point does not exist.
	ErrUnknownLayer = errors.New("style: unknown layer")

	ErrInvalidSource = errors.New("style: invalid source")
	ErrInvalidLayer  = errors.New("style: invalid layer")
	ErrInvalidImage  = errors.New("style: invalid image")
)

// SyntaxError describes a document that could not be parsed at all.
type SyntaxError struct {
	Offset int64 // byte offset of the failure, or -1 when unknown
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("style: %s at offset %d", e.Msg, e.Offset)
	}
	return "style: " + e.Msg
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
