package vehicle

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyAttached = errors.New("vehicle: already attached to a world")
	ErrNotAttached     = errors.New("vehicle: not attached to a world")
)

// ConfigError reports a rejected chassis or wheel parameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("vehicle: invalid %s: %s", e.Field, e.Reason)
}

type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("vehicle: wheel index %d out of range [0, %d)", e.Index, e.Count)
}

// DegenerateStepError is returned when a step produced a non-finite value.
// No forces from that step were applied.
type DegenerateStepError struct {
	Wheel    int
	Quantity string
}

func (e *DegenerateStepError) Error() string {
	return fmt.Sprintf("vehicle: wheel %d produced a non-finite %s", e.Wheel, e.Quantity)
}
