package physics

import (
	"errors"
	"math"
)

// Configuration errors. All are fatal at construction time.
var (
	// ErrInvalidRadius indicates a body with a non-positive radius.
	ErrInvalidRadius = errors.New("physics: radius must be positive")

	// ErrInvalidGain indicates a body with a non-positive user force gain.
	ErrInvalidGain = errors.New("physics: user force gain must be positive")

	// ErrInvalidArena indicates a non-positive arena width or height.
	ErrInvalidArena = errors.New("physics: arena dimensions must be positive")

	// ErrInvalidTick indicates a non-positive tick period.
	ErrInvalidTick = errors.New("physics: tick period must be positive")

	// ErrParameterBounds indicates a coefficient outside its valid range.
	ErrParameterBounds = errors.New("physics: parameter out of valid bounds")

	// ErrBodyTooLarge indicates a body that cannot fit inside the arena.
	ErrBodyTooLarge = errors.New("physics: body does not fit inside the arena")

	// ErrUnknownModel indicates an unrecognised damping, wall or response model name.
	ErrUnknownModel = errors.New("physics: unknown model")
)

func isNaNOrInf(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
