package sqlite

import (
	"context"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
)

type phoneSessionsRepo struct {
	db dbtx
}

const phoneSessionColumns = `id, token_hash, kind, phone_number, secret, attempts, created_at, expires_at`

func scanPhoneSession(row scanner) (domain.PhoneSession, error) {
	var (
		s                domain.PhoneSession
		kind             string
		created, expires int64
	)
	err := row.Scan(&s.ID, &s.TokenHash, &kind, &s.PhoneNumber, &s.Secret, &s.Attempts, &created, &expires)
	if err != nil {
		return domain.PhoneSession{}, mapNotFound(err)
	}
	s.Kind = domain.PhoneSessionKind(kind)
	s.CreatedAt = fromMillis(created)
	s.ExpiresAt = fromMillis(expires)
	return s, nil
}

func (r *phoneSessionsRepo) CreatePhoneSession(ctx context.Context, s domain.PhoneSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO phone_sessions (`+phoneSessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.TokenHash, string(s.Kind), s.PhoneNumber, s.Secret, s.Attempts,
		toMillis(s.CreatedAt), toMillis(s.ExpiresAt),
	)
	return mapConstraint(err)
}

func (r *phoneSessionsRepo) GetPhoneSessionByHash(ctx context.Context, hash string) (domain.PhoneSession, error) {
	return scanPhoneSession(r.db.QueryRowContext(ctx,
		`SELECT `+phoneSessionColumns+` FROM phone_sessions WHERE token_hash = ?`, hash))
}

func (r *phoneSessionsRepo) ListPhoneSessions(ctx context.Context) ([]domain.PhoneSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+phoneSessionColumns+` FROM phone_sessions WHERE expires_at > ? ORDER BY created_at DESC, id DESC`,
		nowMillis(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.PhoneSession
	for rows.Next() {
		s, err := scanPhoneSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *phoneSessionsRepo) IncrementPhoneSessionAttempts(ctx context.Context, id string) (domain.PhoneSession, error) {
	return scanPhoneSession(r.db.QueryRowContext(ctx,
		`UPDATE phone_sessions SET attempts = attempts + 1 WHERE id = ? RETURNING `+phoneSessionColumns, id))
}

func (r *phoneSessionsRepo) DeletePhoneSession(ctx context.Context, id string) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM phone_sessions WHERE id = ?`, id))
}

func (r *phoneSessionsRepo) DeleteExpiredPhoneSessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM phone_sessions WHERE expires_at <= ?`, nowMillis())
	return err
}
