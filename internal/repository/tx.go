// Package repository contains the GORM-backed implementations of the domain
// repository interfaces. All implementations resolve their handle from the
// context first, so that work started through Transactor.InTx runs on the
// same database transaction across repositories.
package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// Transactor runs a closure inside a single database transaction. The ctx
// passed to fn carries the transaction handle; repository calls made with
// that ctx join the transaction and the whole unit commits or rolls back
// together.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom returns the transaction handle carried by ctx, falling back to the
// repository's own connection when no transaction is open.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
