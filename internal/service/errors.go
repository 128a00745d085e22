package service

import (
	"errors"
	"fmt"

	"go-stock-ledger/internal/apierror"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrStockBusy           = errors.New("stock is being updated by another request, try again")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
)

// ValidationError rejects a write with one or more field problems that share
// a kind. Nothing has been persisted when it is returned.
type ValidationError struct {
	Kind   apierror.Kind
	Errors []apierror.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return string(e.Kind)
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Errors[0].Message)
	}
	return fmt.Sprintf("%s: %s (and %d more)", e.Kind, e.Errors[0].Message, len(e.Errors)-1)
}

// collector accumulates problems of one validation stage.
type collector struct {
	kind apierror.Kind
	errs []apierror.FieldError
}

func newCollector(kind apierror.Kind) *collector {
	return &collector{kind: kind}
}

func (c *collector) header(field, format string, args ...interface{}) {
	c.errs = append(c.errs, apierror.FieldError{
		Kind:    c.kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *collector) item(i int, field, format string, args ...interface{}) {
	c.errs = append(c.errs, apierror.FieldError{
		Kind:    c.kind,
		Field:   field,
		Item:    apierror.ItemIndex(i),
		Message: fmt.Sprintf(format, args...),
	})
}

// err returns nil when the stage found nothing.
func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &ValidationError{Kind: c.kind, Errors: c.errs}
}

func singleError(kind apierror.Kind, field, format string, args ...interface{}) error {
	c := newCollector(kind)
	c.header(field, format, args...)
	return c.err()
}
