package chat

// ValidationError is a user action whose precondition does not hold. Its
// message is meant to be shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrNoSelection = &ValidationError{Message: "select a conversation first"}
	ErrBodyTooLong = &ValidationError{Message: "message is longer than 5000 characters"}
)
