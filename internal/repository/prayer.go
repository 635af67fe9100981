package repository

import (
	"context"
	"database/sql"

	"github.com/AndrewAllenDS/prayer-request-app/internal/model"
)

type PrayerRepository struct {
	db *sql.DB
}

func NewPrayerRepository(db *sql.DB) *PrayerRepository {
	return &PrayerRepository{db: db}
}

// Insert appends one submission. Field content is stored as given.
func (r *PrayerRepository) Insert(ctx context.Context, name, request, date string) (*model.Submission, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO prayers (name, request, date) VALUES (?, ?, ?)`,
		name, request, date,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "insert prayer", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, &PersistenceError{Op: "insert prayer", Err: err}
	}
	return &model.Submission{ID: id, Name: name, Request: request, Date: date}, nil
}

// ListOrderedByDate returns every submission sorted by the raw date string.
// The comparison is byte-wise, so only sortable formats such as ISO 8601
// come out in calendar order. Ties keep insertion order.
func (r *PrayerRepository) ListOrderedByDate(ctx context.Context) ([]model.Submission, error) {
	return r.list(ctx, "list prayers by date",
		`SELECT id, name, request, date FROM prayers ORDER BY date, id`)
}

// List returns every submission in storage order.
func (r *PrayerRepository) List(ctx context.Context) ([]model.Submission, error) {
	return r.list(ctx, "list prayers", `SELECT id, name, request, date FROM prayers`)
}

func (r *PrayerRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prayers`).Scan(&n); err != nil {
		return 0, &PersistenceError{Op: "count prayers", Err: err}
	}
	return n, nil
}

func (r *PrayerRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &PersistenceError{Op: "ping", Err: err}
	}
	return nil
}

func (r *PrayerRepository) list(ctx context.Context, op, query string) ([]model.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &PersistenceError{Op: op, Err: err}
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var (
			s                   model.Submission
			name, request, date sql.NullString
		)
		if err := rows.Scan(&s.ID, &name, &request, &date); err != nil {
			return nil, &PersistenceError{Op: op, Err: err}
		}
		s.Name, s.Request, s.Date = name.String, request.String, date.String
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: op, Err: err}
	}
	return subs, nil
}
