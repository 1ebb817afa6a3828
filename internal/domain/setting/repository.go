package setting

import (
	"context"
	"errors"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
	ErrUnknownKey      = errors.New("unknown setting key")
	ErrValueNotPositive = errors.New("setting value must be a positive integer")
)

type Repository interface {
	List(ctx context.Context) ([]*Setting, error)

	// GetValue returns the stored value for key, or fallback when no row
	// exists.
	GetValue(ctx context.Context, key Key, fallback int64) (int64, error)

	// Set updates the row for key, creating it on first write.
	Set(ctx context.Context, key Key, value int64) (*Setting, error)
}
