package magic

import "time"

// Clock schedules deferred work
type Clock interface {
	AfterFunc(d time.Duration, f func())
}

// systemClock runs callbacks on real timers
type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
