package scrumdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new scrum repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetByDate(ctx context.Context, db bun.IDB, date string) (*Scrum, error) {
	db = r.resolveDB(db)
	scrum := new(Scrum)
	err := db.NewSelect().
		Model(scrum).
		Where("scrum_date = ?", date).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scrumdb.GetByDate: %w", err)
	}
	return scrum, nil
}

func (r *Impl) GetByMessage(ctx context.Context, db bun.IDB, messageID string) (*Scrum, error) {
	db = r.resolveDB(db)
	scrum := new(Scrum)
	err := db.NewSelect().
		Model(scrum).
		Where("message_id = ?", messageID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scrumdb.GetByMessage: %w", err)
	}
	return scrum, nil
}

func (r *Impl) Create(ctx context.Context, db bun.IDB, scrum *Scrum) error {
	db = r.resolveDB(db)
	scrum.IsOpen = true
	_, err := db.NewInsert().
		Model(scrum).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateScrum
		}
		return fmt.Errorf("scrumdb.Create: %w", err)
	}
	return nil
}

func (r *Impl) MarkClosed(ctx context.Context, db bun.IDB, scrumID int64, closedAt time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Scrum)(nil)).
		Set("is_open = FALSE").
		Set("closed_at = ?", closedAt).
		Where("id = ?", scrumID).
		Where("is_open").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scrumdb.MarkClosed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("scrumdb.MarkClosed: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAlreadyClosed
	}
	return nil
}

func (r *Impl) UpsertResponse(ctx context.Context, db bun.IDB, response *Response) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(response).
		On("CONFLICT (scrum_id, participant_id) DO UPDATE").
		Set("available = EXCLUDED.available").
		Set("responded_at = EXCLUDED.responded_at").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scrumdb.UpsertResponse: %w", err)
	}
	return nil
}

func (r *Impl) DeleteResponse(ctx context.Context, db bun.IDB, scrumID, participantID int64, available bool) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Response)(nil)).
		Where("scrum_id = ?", scrumID).
		Where("participant_id = ?", participantID).
		Where("available = ?", available).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("scrumdb.DeleteResponse: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("scrumdb.DeleteResponse: rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *Impl) ListResponses(ctx context.Context, db bun.IDB, scrumID int64) ([]Response, error) {
	db = r.resolveDB(db)
	var responses []Response
	err := db.NewSelect().
		Model(&responses).
		Where("scrum_id = ?", scrumID).
		Order("participant_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scrumdb.ListResponses: %w", err)
	}
	return responses, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == "23505"
	}
	return false
}
