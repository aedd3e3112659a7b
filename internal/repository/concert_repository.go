package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/concert-booking/internal/model"
)

// ConcertRepo reads the concert catalog.  The catalog is maintained
// out of band (seed scripts, admin tooling) and is never written by
// this service, so only lookup queries exist.
type ConcertRepo struct {
	db *sql.DB
}

// NewConcertRepo returns a ConcertRepo bound to the given database.
func NewConcertRepo(db *sql.DB) *ConcertRepo { return &ConcertRepo{db: db} }

// GetByID loads a single concert with its dates and performers.  It
// returns ErrConcertNotFound when the id does not exist.
func (r *ConcertRepo) GetByID(ctx context.Context, id uint64) (*model.Concert, error) {
	var c model.Concert
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, image_name, blurb FROM concerts WHERE id = ?`,
		id).Scan(&c.ID, &c.Title, &c.ImageName, &c.Blurb)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrConcertNotFound
		}
		return nil, err
	}
	if err := r.loadDates(ctx, []*model.Concert{&c}); err != nil {
		return nil, err
	}
	if err := r.loadPerformers(ctx, []*model.Concert{&c}); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every concert in the catalog with dates and performers
// populated.  Concerts are ordered by id.
func (r *ConcertRepo) List(ctx context.Context) ([]model.Concert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, image_name, blurb FROM concerts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	concerts := make([]model.Concert, 0)
	for rows.Next() {
		var c model.Concert
		if err := rows.Scan(&c.ID, &c.Title, &c.ImageName, &c.Blurb); err != nil {
			return nil, err
		}
		concerts = append(concerts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	refs := make([]*model.Concert, len(concerts))
	for i := range concerts {
		refs[i] = &concerts[i]
	}
	if err := r.loadDates(ctx, refs); err != nil {
		return nil, err
	}
	if err := r.loadPerformers(ctx, refs); err != nil {
		return nil, err
	}
	return concerts, nil
}

// loadDates populates Dates for the given concerts in one query.
func (r *ConcertRepo) loadDates(ctx context.Context, concerts []*model.Concert) error {
	if len(concerts) == 0 {
		return nil
	}
	index := make(map[uint64]*model.Concert, len(concerts))
	placeholders := make([]string, 0, len(concerts))
	args := make([]interface{}, 0, len(concerts))
	for _, c := range concerts {
		index[c.ID] = c
		placeholders = append(placeholders, "?")
		args = append(args, c.ID)
	}
	q := `SELECT concert_id, date FROM concert_dates
	      WHERE concert_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY concert_id, date`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var date sql.NullTime
		if err := rows.Scan(&id, &date); err != nil {
			return err
		}
		if c, ok := index[id]; ok && date.Valid {
			c.Dates = append(c.Dates, date.Time.UTC())
		}
	}
	return rows.Err()
}

// loadPerformers populates Performers for the given concerts in one
// query over the concert_performers join table.
func (r *ConcertRepo) loadPerformers(ctx context.Context, concerts []*model.Concert) error {
	if len(concerts) == 0 {
		return nil
	}
	index := make(map[uint64]*model.Concert, len(concerts))
	placeholders := make([]string, 0, len(concerts))
	args := make([]interface{}, 0, len(concerts))
	for _, c := range concerts {
		index[c.ID] = c
		placeholders = append(placeholders, "?")
		args = append(args, c.ID)
	}
	q := `SELECT cp.concert_id, p.id, p.name, p.image_name, p.genre, p.blurb
	      FROM concert_performers cp
	      JOIN performers p ON p.id = cp.performer_id
	      WHERE cp.concert_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY cp.concert_id, p.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid uint64
		var p model.Performer
		if err := rows.Scan(&cid, &p.ID, &p.Name, &p.ImageName, &p.Genre, &p.Blurb); err != nil {
			return err
		}
		if c, ok := index[cid]; ok {
			c.Performers = append(c.Performers, p)
		}
	}
	return rows.Err()
}

// PerformerRepo reads the performer catalog.
type PerformerRepo struct {
	db *sql.DB
}

// NewPerformerRepo returns a PerformerRepo bound to the given database.
func NewPerformerRepo(db *sql.DB) *PerformerRepo { return &PerformerRepo{db: db} }

// GetByID returns a single performer or ErrPerformerNotFound.
func (r *PerformerRepo) GetByID(ctx context.Context, id uint64) (*model.Performer, error) {
	var p model.Performer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, image_name, genre, blurb FROM performers WHERE id = ?`,
		id).Scan(&p.ID, &p.Name, &p.ImageName, &p.Genre, &p.Blurb)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPerformerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns all performers ordered by id.
func (r *PerformerRepo) List(ctx context.Context) ([]model.Performer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, image_name, genre, blurb FROM performers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	performers := make([]model.Performer, 0)
	for rows.Next() {
		var p model.Performer
		if err := rows.Scan(&p.ID, &p.Name, &p.ImageName, &p.Genre, &p.Blurb); err != nil {
			return nil, err
		}
		performers = append(performers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return performers, nil
}
