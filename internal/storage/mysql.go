package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/concert-booking/internal/model"
)

// MySQLStore persists the seat ledger in MySQL.  Seats live in the
// `seats` table with a version column; bookings span `bookings` and
// `booking_seats`.  All timestamps are stored in UTC.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a MySQLStore bound to the given database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// SeatsByDate returns all seats for a date matching the filter,
// ordered by label.
func (s *MySQLStore) SeatsByDate(ctx context.Context, date time.Time, filter SeatFilter) ([]model.Seat, error) {
	q := `SELECT id, date, label, price_cents, booked, version FROM seats WHERE date = ?`
	switch filter {
	case SeatsBooked:
		q += ` AND booked = 1`
	case SeatsUnbooked:
		q += ` AND booked = 0`
	}
	q += ` ORDER BY label`
	rows, err := s.db.QueryContext(ctx, q, date.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSeats(rows)
}

// FreeSeats returns the unbooked seats for the date whose labels are
// in labels, together with their current version counters.
func (s *MySQLStore) FreeSeats(ctx context.Context, date time.Time, labels []string) ([]model.Seat, error) {
	if len(labels) == 0 {
		return []model.Seat{}, nil
	}
	placeholders := make([]string, 0, len(labels))
	args := make([]interface{}, 0, len(labels)+1)
	args = append(args, date.UTC())
	for _, l := range labels {
		placeholders = append(placeholders, "?")
		args = append(args, l)
	}
	q := `SELECT id, date, label, price_cents, booked, version
	      FROM seats
	      WHERE date = ? AND booked = 0 AND label IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSeats(rows)
}

// BookSeats performs the booking commit: a compare-and-swap per seat
// plus the booking rows, all inside one transaction.  A seat whose
// version moved (or that was booked meanwhile) makes the UPDATE touch
// zero rows, which aborts the transaction with ErrSeatConflict.
func (s *MySQLStore) BookSeats(ctx context.Context, b *model.Booking, seats []model.Seat) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const cas = `UPDATE seats
	             SET booked = 1, version = version + 1
	             WHERE id = ? AND version = ? AND booked = 0`
	for _, seat := range seats {
		res, err := tx.ExecContext(ctx, cas, seat.ID, seat.Version)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrSeatConflict
		}
	}

	createdAt := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (concert_id, user_id, date, created_at) VALUES (?,?,?,?)`,
		b.ConcertID, b.UserID, b.Date.UTC(), createdAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	// Bulk insert booking_seats rows in a single statement.
	insert := `INSERT INTO booking_seats (booking_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seats)*2)
	for i, seat := range seats {
		if i > 0 {
			insert += ","
		}
		insert += "(?, ?)"
		args = append(args, id, seat.ID)
	}
	if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	b.ID = uint64(id)
	b.CreatedAt = createdAt
	return nil
}

// Occupancy counts total and booked seats for the date.
func (s *MySQLStore) Occupancy(ctx context.Context, date time.Time) (int, int, error) {
	var total, booked int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(booked), 0) FROM seats WHERE date = ?`,
		date.UTC()).Scan(&total, &booked)
	if err != nil {
		return 0, 0, err
	}
	return total, booked, nil
}

// BookingByID loads a booking and its seat labels.
func (s *MySQLStore) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	var b model.Booking
	err := s.db.QueryRowContext(ctx,
		`SELECT id, concert_id, user_id, date, created_at FROM bookings WHERE id = ?`,
		id).Scan(&b.ID, &b.ConcertID, &b.UserID, &b.Date, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	labels, err := s.labelsForBookings(ctx, []uint64{b.ID})
	if err != nil {
		return nil, err
	}
	b.SeatLabels = labels[b.ID]
	return &b, nil
}

// BookingsByUser returns the user's bookings, newest first, with seat
// labels populated in one additional query.
func (s *MySQLStore) BookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, concert_id, user_id, date, created_at
		 FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	ids := make([]uint64, 0)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.ConcertID, &b.UserID, &b.Date, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}
	labels, err := s.labelsForBookings(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		bookings[i].SeatLabels = labels[bookings[i].ID]
	}
	return bookings, nil
}

func (s *MySQLStore) labelsForBookings(ctx context.Context, ids []uint64) (map[uint64][]string, error) {
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT bs.booking_id, se.label
	      FROM booking_seats bs
	      JOIN seats se ON se.id = bs.seat_id
	      WHERE bs.booking_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY bs.booking_id, se.label`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64][]string, len(ids))
	for rows.Next() {
		var id uint64
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, err
		}
		out[id] = append(out[id], label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanSeats(rows *sql.Rows) ([]model.Seat, error) {
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var seat model.Seat
		if err := rows.Scan(&seat.ID, &seat.Date, &seat.Label, &seat.PriceCents, &seat.Booked, &seat.Version); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}
