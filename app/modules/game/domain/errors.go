package gamedomain

import "errors"

// ErrUnknownOrderStrategy is returned when configuration names a turn order
// strategy that does not exist.
var ErrUnknownOrderStrategy = errors.New("unknown turn order strategy")
