package cache

import "time"

// clock is the time source for expiry checks, swapped out in tests.
type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
