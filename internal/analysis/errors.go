package analysis

import "errors"

var (
	// ErrEmptyDocument is returned when a document has no usable text.
	ErrEmptyDocument = errors.New("document contains no text")

	// ErrInvalidLexicon is returned when a lexicon fails validation.
	ErrInvalidLexicon = errors.New("invalid lexicon")
)
