package domain

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already in use")
	ErrGroupNotFound     = errors.New("role group not found")
	ErrDuplicateGroup    = errors.New("role group name already taken")
	ErrUnknownPermission = errors.New("unknown permission")
)
