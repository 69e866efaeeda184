package physics

import "errors"

var (
	ErrDuplicateContactMaterial = errors.New("physics: contact material already registered for this pair")
	ErrWorldStarted             = errors.New("physics: world configuration is frozen after the first step")
	ErrReentrantStep            = errors.New("physics: step called while the world is stepping")
	ErrInvalidBody              = errors.New("physics: invalid body")
	ErrInvalidTimeStep          = errors.New("physics: time step must be positive and finite")
)
