package clock

import "time"

// Clock abstracts time so the session engine stays deterministic in tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the recurring time source that drives session ticks. The host may
// suspend the process arbitrarily between fires, so consumers must re-derive
// elapsed time from the wall clock instead of counting fires.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{inner: time.NewTicker(d)}
}

type systemTicker struct {
	inner *time.Ticker
}

func (t systemTicker) C() <-chan time.Time { return t.inner.C }

func (t systemTicker) Stop() { t.inner.Stop() }
