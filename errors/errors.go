// Package errors defines the error taxonomy shared by the hub, the use cases
// and the client. Every failure carries a stable machine-readable code that
// travels across the wire inside ERROR frames.
package errors

import (
	stderrors "errors"
	"fmt"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeTeamNotFound     = "TEAM_NOT_FOUND"
	CodeMemberNotFound   = "MEMBER_NOT_FOUND"
	CodeQuestionNotFound = "QUESTION_NOT_FOUND"
	CodeAnswerNotFound   = "ANSWER_NOT_FOUND"
	CodeAlreadyAnswered  = "QUESTION_ALREADY_ANSWERED"
	CodeNotJoined        = "NOT_JOINED"
	CodeInvalidMessage   = "INVALID_MESSAGE"
	CodeTimeout          = "TIMEOUT"
	CodeConnection       = "CONNECTION_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
)

// DomainError is a failure with a code. Two DomainErrors match under
// errors.Is when their codes are equal, so a detailed error built with
// Newf still matches the sentinel of the same code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrValidation       = &DomainError{Code: CodeValidation, Message: "validation failed"}
	ErrTeamNotFound     = &DomainError{Code: CodeTeamNotFound, Message: "team not found"}
	ErrMemberNotFound   = &DomainError{Code: CodeMemberNotFound, Message: "member not found"}
	ErrQuestionNotFound = &DomainError{Code: CodeQuestionNotFound, Message: "question not found"}
	ErrAnswerNotFound   = &DomainError{Code: CodeAnswerNotFound, Message: "answer not found"}
	ErrAlreadyAnswered  = &DomainError{Code: CodeAlreadyAnswered, Message: "question already answered"}
	ErrNotJoined        = &DomainError{Code: CodeNotJoined, Message: "connection has not joined a team"}
	ErrInvalidMessage   = &DomainError{Code: CodeInvalidMessage, Message: "invalid message"}
	ErrTimeout          = &DomainError{Code: CodeTimeout, Message: "timed out"}
	ErrConnection       = &DomainError{Code: CodeConnection, Message: "connection failure"}

	ErrWorkerPanic = fmt.Errorf("worker panic")
)

// Newf builds a DomainError with the given code and a formatted message.
func Newf(code, format string, args ...any) error {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation is a shortcut for Newf(CodeValidation, ...).
func Validation(format string, args ...any) error {
	return Newf(CodeValidation, format, args...)
}

// CodeOf returns the code of the first DomainError in err's chain,
// CodeInternal when there is none.
func CodeOf(err error) string {
	var domainErr *DomainError
	if stderrors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err is one of the entity-not-found failures.
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case CodeTeamNotFound, CodeMemberNotFound, CodeQuestionNotFound, CodeAnswerNotFound:
		return true
	}
	return false
}
