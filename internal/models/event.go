package models

import "time"

type Event struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	StartTime     time.Time `json:"start_time"`
	TotalCapacity int64     `json:"total_capacity"`
	ReservedCount int64     `json:"reserved_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Available returns the number of seats still open for reservation.
func (e *Event) Available() int64 {
	return e.TotalCapacity - e.ReservedCount
}

// EventWithAvailability is the read-model shape returned by list queries.
type EventWithAvailability struct {
	Event
	AvailableSeats int64 `json:"available_seats"`
}
