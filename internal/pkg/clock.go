package pkg

import "time"

// Clock provides the current time so that expiry can be tested.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func NewClock() *RealClock {
	return &RealClock{}
}

func (that *RealClock) Now() time.Time {
	return time.Now()
}
