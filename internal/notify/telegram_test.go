package notify

import (
	"testing"

	"showbook/internal/events"
)

func TestNilNotifierSubscribe(t *testing.T) {
	var n *TelegramNotifier
	bus := events.NewEventBus()

	// Незаведенный нотификатор просто отключен
	n.Subscribe(bus)
	bus.Publish(&events.Event{Type: events.EventBookingConfirmed, Payload: []byte(`{}`)})
}
