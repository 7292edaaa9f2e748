package app

import "fmt"

// InputError marks a caller mistake, as opposed to a storage or server
// fault. The HTTP layer maps it to a 400.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

func inputErrorf(format string, args ...any) *InputError {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}
