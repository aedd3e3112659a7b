// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking commits.  It
// contains enough information for downstream consumers to log, notify
// or trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID    uint64   `json:"booking_id"`
	UserID       uint64   `json:"user_id"`
	ConcertID    uint64   `json:"concert_id"`
	ConcertTitle string   `json:"concert_title"`
	Date         string   `json:"date"`
	SeatLabels   []string `json:"seats"`
	BookedAt     string   `json:"booked_at"`
}
