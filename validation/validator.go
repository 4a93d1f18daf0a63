package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/s3gate/errors"
)

// FieldError is one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector gathers field failures and folds them into one INVALID_INPUT
// error. Methods chain.
type Collector struct {
	fields []FieldError
}

// New creates an empty Collector.
func New() *Collector {
	return &Collector{}
}

// Failf records a failure for field.
func (c *Collector) Failf(field, format string, args ...any) *Collector {
	c.fields = append(c.fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	return c
}

// Check records a failure for field unless ok.
func (c *Collector) Check(ok bool, field, format string, args ...any) *Collector {
	if !ok {
		c.Failf(field, format, args...)
	}
	return c
}

// Required fails on blank strings.
func (c *Collector) Required(field, value string) *Collector {
	return c.Check(strings.TrimSpace(value) != "", field, "is required")
}

// Between fails unless lo < value <= hi.
func (c *Collector) Between(field string, value, lo, hi int) *Collector {
	return c.Check(value > lo && value <= hi, field, "must be greater than %d and at most %d", lo, hi)
}

// OneOf fails when a non-empty value is not in allowed.
func (c *Collector) OneOf(field, value string, allowed ...string) *Collector {
	return c.Check(value == "" || slices.Contains(allowed, value), field, "must be one of: %s", strings.Join(allowed, ", "))
}

// Fields returns the recorded failures.
func (c *Collector) Fields() []FieldError {
	return c.fields
}

// Err returns nil when nothing failed.
func (c *Collector) Err() *errors.AppError {
	if len(c.fields) == 0 {
		return nil
	}
	msgs := make([]string, len(c.fields))
	for i, f := range c.fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(msgs, "; ")).WithDetail("fields", c.fields)
}
