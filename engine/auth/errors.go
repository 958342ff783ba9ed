package auth

import "errors"

// ErrInvalidCredentials is returned when email or password do not match
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidToken is returned when an access token fails verification
var ErrInvalidToken = errors.New("invalid access token")

// ErrTokenExpired is returned when an access token is past its lifetime
var ErrTokenExpired = errors.New("access token expired")

// ErrRefreshNotFound is returned when a refresh token is unknown or revoked
var ErrRefreshNotFound = errors.New("refresh token not found")

// ErrRefreshExpired is returned when a refresh token is past its lifetime
var ErrRefreshExpired = errors.New("refresh token expired")
