package model

import "time"

// Seat is one sellable seat for a single concert date.  A seat is
// identified by its (date, label) pair; the numeric ID only exists for
// storage.  The version counter implements optimistic concurrency: a
// booking commit must observe the same version it read, otherwise the
// seat was claimed by a concurrent transaction.
//
// Fields:
//  ID         – primary key identifier.
//  Date       – concert date this seat belongs to (UTC).
//  Label      – human readable seat label, unique within a date.
//  PriceCents – ticket price in cents.
//  Booked     – whether the seat has been sold.
//  Version    – optimistic locking counter, bumped on every write.
type Seat struct {
	ID         uint64    // seats.id
	Date       time.Time // seats.date
	Label      string    // seats.label
	PriceCents uint32    // seats.price_cents
	Booked     bool      // seats.booked
	Version    uint32    // seats.version
}
