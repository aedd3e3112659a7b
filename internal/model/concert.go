package model

import "time"

// Concert describes one entry in the read-only concert catalog.  A
// concert is scheduled on one or more dates; seats and bookings are
// always scoped to a single date, never to the concert as a whole.
//
// Fields:
//  ID         – primary key identifier.
//  Title      – concert title.
//  ImageName  – promotional image file name.
//  Blurb      – free-text description.
//  Dates      – scheduled dates, stored in UTC.
//  Performers – performers appearing at the concert.
type Concert struct {
	ID         uint64      // concerts.id
	Title      string      // concerts.title
	ImageName  string      // concerts.image_name
	Blurb      string      // concerts.blurb
	Dates      []time.Time // concert_dates.date rows
	Performers []Performer // via concert_performers
}

// HasDate reports whether the concert is scheduled on the given date.
// Comparison is instant-based so callers may pass any location.
func (c *Concert) HasDate(date time.Time) bool {
	for _, d := range c.Dates {
		if d.Equal(date) {
			return true
		}
	}
	return false
}

// Performer is an artist or group appearing at one or more concerts.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – performer name.
//  ImageName – promotional image file name.
//  Genre     – musical genre label.
//  Blurb     – free-text description.
type Performer struct {
	ID        uint64 // performers.id
	Name      string // performers.name
	ImageName string // performers.image_name
	Genre     string // performers.genre
	Blurb     string // performers.blurb
}
