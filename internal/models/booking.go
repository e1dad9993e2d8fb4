package models

import "time"

type Booking struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	UserName  string    `json:"user_name"`
	Seats     int64     `json:"seats"`
	Status    string    `json:"status"` // PENDING, CONFIRMED, FAILED
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the booking currently counts against its
// event's reserved seats.
func (b *Booking) Active() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}
