package participantdb

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

// NewRepository creates a new participant repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id int64) (*Participant, error) {
	db = r.resolveDB(db)
	p := new(Participant)
	err := db.NewSelect().Model(p).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("participantdb.GetByID: %w", err)
	}
	return p, nil
}

func (r *Impl) GetByExternalID(ctx context.Context, db bun.IDB, externalID string) (*Participant, error) {
	db = r.resolveDB(db)
	p := new(Participant)
	err := db.NewSelect().
		Model(p).
		Join("JOIN participant_identities AS pi ON pi.participant_id = p.id").
		Where("pi.external_id = ?", externalID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("participantdb.GetByExternalID: %w", err)
	}
	return p, nil
}

func (r *Impl) List(ctx context.Context, db bun.IDB) ([]Participant, error) {
	db = r.resolveDB(db)
	var participants []Participant
	if err := db.NewSelect().Model(&participants).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("participantdb.List: %w", err)
	}
	return participants, nil
}

func (r *Impl) Create(ctx context.Context, db bun.IDB, p *Participant, externalID string) error {
	db = r.resolveDB(db)
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(p).Returning("*").Exec(ctx); err != nil {
			return fmt.Errorf("participantdb.Create: %w", err)
		}
		identity := &Identity{ParticipantID: p.ID, ExternalID: externalID}
		if _, err := tx.NewInsert().Model(identity).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return ErrIdentityTaken
			}
			return fmt.Errorf("participantdb.Create identity: %w", err)
		}
		return nil
	})
}

func (r *Impl) IncrementStreak(ctx context.Context, db bun.IDB, id int64) (int, error) {
	db = r.resolveDB(db)
	var streak int
	err := db.NewUpdate().
		Model((*Participant)(nil)).
		Set("streak = streak + 1").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Returning("streak").
		Scan(ctx, &streak)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("participantdb.IncrementStreak: %w", err)
	}
	return streak, nil
}

func (r *Impl) ResetStreak(ctx context.Context, db bun.IDB, id int64) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Participant)(nil)).
		Set("streak = 0").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("participantdb.ResetStreak: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("participantdb.ResetStreak: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation recognises SQLSTATE 23505 from either Postgres driver.
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
