package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"privacyhub/internal/apperr"
	"privacyhub/internal/models"
)

const pgUniqueViolation = "23505"

// EmailSealer encrypts emails at rest. crypto.Sealer implements it.
type EmailSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
	BlindIndex(plaintext string) string
}

// PostgresIdentities stores identities in the identities table. Emails are
// encrypted; the blind index is what uniqueness and login lookups use.
type PostgresIdentities struct {
	db     *sqlx.DB
	sealer EmailSealer
}

func NewPostgresIdentities(db *sqlx.DB, sealer EmailSealer) *PostgresIdentities {
	return &PostgresIdentities{db: db, sealer: sealer}
}

const identityColumns = `id, username, email, email_blind_index, password_hash, created_at`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (s *PostgresIdentities) Create(ctx context.Context, identity *models.Identity) error {
	sealed, err := s.sealer.Seal(identity.Email)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not encrypt email", err)
	}
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now().UTC()
	}
	identity.EmailIndex = s.sealer.BlindIndex(identity.Email)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO identities (`+identityColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		identity.ID, identity.Username, sealed, identity.EmailIndex, identity.PasswordHash, identity.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrUserExists
		}
		return apperr.Wrap(apperr.KindInternal, "could not create identity", err)
	}
	return nil
}

func (s *PostgresIdentities) getOne(ctx context.Context, query string, args ...any) (*models.Identity, error) {
	var u models.Identity
	if err := s.db.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Wrap(apperr.KindInternal, "could not load identity", err)
	}
	email, err := s.sealer.Open(u.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not decrypt email", err)
	}
	u.Email = email
	return &u, nil
}

func (s *PostgresIdentities) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	return s.getOne(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, id)
}

func (s *PostgresIdentities) FindByLogin(ctx context.Context, identifier string) (*models.Identity, error) {
	return s.getOne(ctx,
		`SELECT `+identityColumns+` FROM identities
		 WHERE username = $1 OR email_blind_index = $2
		 ORDER BY (username = $1) DESC, created_at ASC
		 LIMIT 1`,
		identifier, s.sealer.BlindIndex(identifier))
}

func (s *PostgresIdentities) UpdateUsername(ctx context.Context, id, username string) (*models.Identity, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE identities SET username = $1 WHERE id = $2`, username, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrUsernameTaken
		}
		return nil, apperr.Wrap(apperr.KindInternal, "could not update username", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.GetByID(ctx, id)
}
