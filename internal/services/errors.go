package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"warbler/internal/events"
	"warbler/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound and ErrDuplicate are re-exported so handlers only need this package.
	ErrNotFound  = repositories.ErrNotFound
	ErrDuplicate = repositories.ErrDuplicate

	ErrUnauthorized = errors.New("access unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrSelfFollow   = errors.New("users cannot follow themselves")
	ErrValidation   = errors.New("validation failed")
)

// ValidationError lists the fields of an input that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &ValidationError{Fields: fields}
}

// publish sends an event after a committed write. Failures are logged and never
// surface to the caller.
func publish(p events.Publisher, log *logrus.Entry, event events.Event) {
	entry := log.WithFields(logrus.Fields{"event": event.Type, "event_id": event.ID})
	if p == nil {
		entry.Debug("event publisher is not initialized, skipping")
		return
	}
	if err := p.Publish(event); err != nil {
		entry.WithError(err).Warn("failed to publish event")
	}
}
