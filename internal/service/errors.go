package service

import "fmt"

// Kind classifies a failed operation so the HTTP boundary can pick a
// status code without inspecting message text.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindInactiveAccount
	KindAuthorization
	KindNotFound
	KindIntegrity
	KindPersistence
)

type Error struct {
	Kind    Kind
	Message string
	// Fields carries per-field validation messages, nil otherwise.
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func NewAuthentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func NewInactiveAccount(message string) *Error {
	return &Error{Kind: KindInactiveAccount, Message: message}
}

func NewAuthorization(reason string) *Error {
	return &Error{Kind: KindAuthorization, Message: reason}
}

func NewNotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func NewIntegrity(message string) *Error {
	return &Error{Kind: KindIntegrity, Message: message}
}

func NewPersistence(err error) *Error {
	return &Error{Kind: KindPersistence, Message: "operation failed", Err: err}
}
