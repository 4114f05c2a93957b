package domain

import "errors"

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("the email doesn't exist or the password you've entered is incorrect")
	ErrDuplicateEmail     = errors.New("the email already exists")
	ErrNotFound           = errors.New("not found")
	ErrInternal           = errors.New("internal error")

	ErrInvalidRole = errors.New("invalid role")
	ErrSelfFollow  = errors.New("cannot follow yourself")
)
