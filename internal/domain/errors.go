package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrJobTerminal   = errors.New("job already terminal")
)
