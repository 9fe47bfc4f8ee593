package approval

import "errors"

// Token and decision errors.
var (
	ErrSecretTooShort = errors.New("approval token secret must be at least 32 bytes")
	ErrInvalidToken   = errors.New("invalid approval token")
	ErrTokenExpired   = errors.New("approval token expired")
	ErrTokenUsed      = errors.New("approval token already redeemed")
	ErrAlreadyDecided = errors.New("run already has a decision")
)
