package adapter

import "time"

// Clock is the source of the current instant for watermarks, bookmark timestamps and event times
//
//go:generate mockgen -source=clock.go -destination=../mocks/clock.go -package=mocks -mock_names=Clock=MockClock
type Clock interface {
	// Now returns the current instant in UTC
	Now() time.Time
	// Since returns the time elapsed since t
	Since(t time.Time) time.Duration
}

// systemClock implements Clock using the standard time package
type systemClock struct{}

// NewClock creates a new system clock
func NewClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}
