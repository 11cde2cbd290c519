package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks bad user input; reported synchronously to the
	// submitting request and never allowed to reach the background path.
	ErrValidation = errors.New("validation error")
	// ErrRemote marks any failure talking to the vision/generation provider.
	ErrRemote = errors.New("remote service error")
	// ErrNotFound marks lookups for records that are missing or owned by
	// another user.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration marks missing or unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

type serviceError struct {
	marker    error
	component string
	operation string
	message   string
	err       error
}

func (e *serviceError) Error() string {
	detail := buildDetail(e.component, e.operation, e.message)
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %s", e.marker.Error(), detail, e.err.Error())
	}
	return fmt.Sprintf("%s: %s", e.marker.Error(), detail)
}

func (e *serviceError) Unwrap() []error {
	if e.err != nil {
		return []error{e.marker, e.err}
	}
	return []error{e.marker}
}

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above. The message is kept user
// presentable; UserMessage recovers it.
func Wrap(marker error, component, operation, message string, err error) error {
	if marker == nil {
		marker = ErrRemote
	}
	return &serviceError{
		marker:    marker,
		component: component,
		operation: operation,
		message:   message,
		err:       err,
	}
}

// UserMessage extracts the human-readable portion of a classified error so
// API responses read naturally, without the sentinel and component plumbing.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var svcErr *serviceError
	if errors.As(err, &svcErr) {
		if msg := strings.TrimSpace(svcErr.message); msg != "" {
			return msg
		}
		return buildDetail(svcErr.component, svcErr.operation, svcErr.message)
	}
	msg := err.Error()
	for _, marker := range []error{ErrValidation, ErrRemote, ErrNotFound, ErrConfiguration} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
