package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
	ErrCodeLocked       ErrorCode = "LOCKED"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound      = NewError(ErrCodeNotFound, "user not found")
	ErrSessionNotFound   = NewError(ErrCodeNotFound, "session not found")
	ErrFavoritesNotFound = NewError(ErrCodeNotFound, "no favorites for owner")
	ErrCommentsNotFound  = NewError(ErrCodeNotFound, "no comments for owner")
	ErrGalleriesNotFound = NewError(ErrCodeNotFound, "no galleries for owner")
	ErrUnauthorized      = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload    = NewError(ErrCodeInvalid, "invalid payload")

	ErrAlreadyFavorited      = NewError(ErrCodeConflict, "relic already favorited")
	ErrFavoriteNotFound      = NewError(ErrCodeNotFound, "favorite not found")
	ErrCommentNotFound       = NewError(ErrCodeNotFound, "comment not found")
	ErrEmptyCommentContent   = NewError(ErrCodeInvalid, "comment content is empty")
	ErrCommentNotPending     = NewError(ErrCodeConflict, "comment is not pending review")
	ErrGalleryNotFound       = NewError(ErrCodeNotFound, "gallery not found")
	ErrGalleryNameTaken      = NewError(ErrCodeConflict, "gallery name already used")
	ErrRelicAlreadyInGallery = NewError(ErrCodeConflict, "relic already in gallery")
	ErrRelicNotInGallery     = NewError(ErrCodeNotFound, "relic not in gallery")

	// ErrLockNotAcquired reports that a named distributed lock could not be
	// taken within its wait budget. State-changing operations fail hard on it.
	ErrLockNotAcquired = NewError(ErrCodeLocked, "operation lock not acquired")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
