package sync

import "time"

// Clock abstracts debounce timers so tests can use short intervals without
// changing the engine.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NewRealClock returns a Clock backed by the runtime timers.
func NewRealClock() Clock {
	return realClock{}
}
