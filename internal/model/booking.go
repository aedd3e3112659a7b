package model

import "time"

// Booking records the seats a user bought for one concert date.  A
// booking is created atomically with its seat transitions and is
// immutable afterwards: every seat in SeatLabels is marked booked in
// the ledger and belongs to exactly this booking.
//
// Fields:
//  ID         – primary key identifier.
//  ConcertID  – concert the booking is for.
//  UserID     – user who made the booking.
//  Date       – concert date (UTC).
//  SeatLabels – labels of the seats bought, all distinct.
//  CreatedAt  – commit timestamp.
type Booking struct {
	ID         uint64    // bookings.id
	ConcertID  uint64    // bookings.concert_id
	UserID     uint64    // bookings.user_id
	Date       time.Time // bookings.date
	SeatLabels []string  // booking_seats rows joined to seats.label
	CreatedAt  time.Time // bookings.created_at
}
