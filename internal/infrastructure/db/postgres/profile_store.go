package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pogodka/weather-bot/internal/core/domain"
	"github.com/pogodka/weather-bot/internal/core/ports"
)

// uniqueViolation is the postgres error code for a duplicate primary key.
const uniqueViolation = "23505"

// ProfileStore persists user profiles in the users table, one transaction per
// InTx call.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore wraps a connection pool as a ports.ProfileStore.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// InTx runs fn inside a transaction: commit when fn returns nil, rollback
// otherwise. The deferred rollback also covers panics and commit failures.
func (s *ProfileStore) InTx(ctx context.Context, fn func(tx ports.ProfileTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after a successful commit

	if err := fn(&profileTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CountProfiles returns the total number of stored profiles.
func (s *ProfileStore) CountProfiles(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

// CountActiveSince returns how many profiles have activity after the cutoff.
func (s *ProfileStore) CountActiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE last_activity >= $1`, cutoff).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active profiles: %w", err)
	}
	return n, nil
}

type profileTx struct {
	tx pgx.Tx
}

func (t *profileTx) Find(ctx context.Context, id int64) (*domain.UserProfile, error) {
	const q = `
		SELECT id, username, first_name, last_name, registration_date, last_activity
		FROM users WHERE id = $1`

	var (
		p         domain.UserProfile
		username  *string
		firstName *string
		lastName  *string
	)
	err := t.tx.QueryRow(ctx, q, id).Scan(
		&p.ID, &username, &firstName, &lastName, &p.RegistrationDate, &p.LastActivity,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	p.Username = deref(username)
	p.FirstName = deref(firstName)
	p.LastName = deref(lastName)
	return &p, nil
}

func (t *profileTx) Insert(ctx context.Context, p *domain.UserProfile) error {
	const q = `
		INSERT INTO users (id, username, first_name, last_name, registration_date, last_activity)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := t.tx.Exec(ctx, q,
		p.ID, nullable(p.Username), nullable(p.FirstName), nullable(p.LastName),
		p.RegistrationDate, p.LastActivity,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (t *profileTx) Update(ctx context.Context, p *domain.UserProfile) error {
	const q = `
		UPDATE users
		SET username = $2, first_name = $3, last_name = $4, last_activity = $5
		WHERE id = $1`

	_, err := t.tx.Exec(ctx, q,
		p.ID, nullable(p.Username), nullable(p.FirstName), nullable(p.LastName), p.LastActivity,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// nullable maps Go's empty string onto SQL NULL so absent identity fields stay
// distinguishable from empty ones.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
