package qa

import "errors"

// ErrEmptyQuestion is returned when a question has no non-whitespace text.
var ErrEmptyQuestion = errors.New("question is empty")
