package universe

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds       = errors.New("cell is out of bounds")
	ErrInvalidDimensions = errors.New("invalid universe dimensions")
	ErrUnknownPattern    = errors.New("unknown pattern")
	ErrDuplicatePattern  = errors.New("pattern already registered")
	ErrMalformedPattern  = errors.New("malformed pattern")
)

//IndexError is returned when a direct (non wrapping) address falls outside the grid
type IndexError struct {
	Row    int
	Col    int
	Width  int
	Height int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("cell (%d, %d) is outside the %dx%d universe", e.Row, e.Col, e.Width, e.Height)
}

func (e *IndexError) Unwrap() error {
	return ErrOutOfBounds
}
