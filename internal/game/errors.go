package game

import (
	"errors"
	"fmt"

	"power_chess/internal/shared"
)

var (
	ErrIllegalMove        = errors.New("illegal move")
	ErrIllegalPromotion   = errors.New("illegal promotion")
	ErrInvalidLocation    = shared.ErrInvalidLocation
	ErrInvalidActionInput = errors.New("invalid action input")
	// ErrPrecondition flags a caller protocol violation, such as asking for a
	// turn before a move was submitted.
	ErrPrecondition   = errors.New("precondition not met")
	ErrGameOver       = fmt.Errorf("%w: game is over", ErrIllegalMove)
	ErrSquareOccupied = errors.New("square occupied")
)
