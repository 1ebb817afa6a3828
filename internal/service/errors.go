package service

import (
	"context"
	"errors"
	"strings"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// Transactor runs fn inside one database transaction; repository calls made
// with the ctx passed to fn join it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
