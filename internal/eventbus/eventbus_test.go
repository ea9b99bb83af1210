package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/relayctl/core/events"
)

func TestBusCarriesMixedEvents(t *testing.T) {
	var bus EventBus = New()
	defer bus.Close()
	sub := bus.Subscribe()

	bus.Publish(events.RelayEvent{Topic: "home/boiler", Kind: events.KindCommand})
	bus.Publish(events.ConnectAttempt{Attempt: 1, Time: time.Now()})

	first := <-sub
	second := <-sub
	assert.IsType(t, events.RelayEvent{}, first)
	assert.IsType(t, events.ConnectAttempt{}, second)
}
