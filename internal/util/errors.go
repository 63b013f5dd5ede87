package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrUsernameRegistered  = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrMalformedSubmission = errors.New("malformed submission")
	ErrCredentialNotFound  = errors.New("credential not found")
	ErrCredentialRevoked   = errors.New("credential has been revoked")
)
