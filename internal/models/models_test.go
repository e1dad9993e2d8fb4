package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventAvailable(t *testing.T) {
	e := &Event{TotalCapacity: 100, ReservedCount: 37}
	assert.Equal(t, int64(63), e.Available())
}

func TestBookingActive(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusPending}).Active())
	assert.True(t, (&Booking{Status: StatusConfirmed}).Active())
	assert.False(t, (&Booking{Status: StatusFailed}).Active())
}
