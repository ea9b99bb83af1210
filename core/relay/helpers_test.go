package relay

import (
	"errors"
	"time"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type published struct {
	topic   string
	payload string
}

type recordPublisher struct {
	msgs []published
	err  error
}

func (p *recordPublisher) Publish(topic string, payload []byte) error {
	p.msgs = append(p.msgs, published{topic: topic, payload: string(payload)})
	return p.err
}

var errBroker = errors.New("broker gone")

// stubTrigger returns the queued answers in order, then false.
type stubTrigger struct {
	answers []bool
	calls   int
}

func (s *stubTrigger) ShouldToggle(RelayState) bool {
	s.calls++
	if len(s.answers) == 0 {
		return false
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a
}
