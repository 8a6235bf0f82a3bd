// Package clock abstracts wall-clock time so engines and storage backends can
// be tested against virtual time instead of time.Now().
package clock

import "time"

// Clock provides the current time. All time-dependent code in this module
// reads time through a Clock instead of calling the time package directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration
}

// Real delegates to the standard time package.
type Real struct{}

// NewReal returns a Clock backed by the system clock.
func NewReal() *Real {
	return &Real{}
}

func (c *Real) Now() time.Time {
	return time.Now()
}

func (c *Real) Since(t time.Time) time.Duration {
	return time.Since(t)
}
