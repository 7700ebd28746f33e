package game

import "errors"

var (
	ErrIllegalMove          = errors.New("illegal move")
	ErrOutOfTurn            = errors.New("out of turn")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrConcurrentOperation  = errors.New("operation already in progress")
)
