package exam

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrAlreadySubmitted rejects a second submission of a completed
	// record instead of silently overwriting its score.
	ErrAlreadySubmitted = errors.New("exam record already submitted")
)
