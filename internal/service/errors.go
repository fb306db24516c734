package service

import "errors"

var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("not allowed")
	ErrUpload             = errors.New("image upload failed")
)
