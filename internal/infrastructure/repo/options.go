package repo

import (
	"github.com/google/uuid"

	"cafe-orders/internal/clock"
)

// NewID returns a time-ordered UUIDv7 string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type options struct {
	clock clock.Clock
}

type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.NewSystem()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
