package ticket

import "errors"

var (
	ErrNotFound        = errors.New("ticket not found")
	ErrInvalidStatus   = errors.New("unrecognized ticket status")
	ErrInvalidSeverity = errors.New("unrecognized ticket severity")
)
