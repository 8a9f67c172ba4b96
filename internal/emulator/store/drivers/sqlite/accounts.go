package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, email, email_verified, display_name, phone_number, password_hash, disabled, created_at, updated_at`

func scanAccount(row scanner) (domain.Account, error) {
	var (
		a                domain.Account
		email, phone     sql.NullString
		created, updated int64
	)
	err := row.Scan(&a.ID, &email, &a.EmailVerified, &a.DisplayName, &phone,
		&a.PasswordHash, &a.Disabled, &created, &updated)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.Email = fromNullString(email)
	a.PhoneNumber = fromNullString(phone)
	a.CreatedAt = fromMillis(created)
	a.UpdatedAt = fromMillis(updated)
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := nowMillis()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, nullString(a.Email), a.EmailVerified, a.DisplayName, nullString(a.PhoneNumber),
		a.PasswordHash, a.Disabled, now, now,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email))
}

func (r *accountsRepo) GetAccountByPhone(ctx context.Context, phone string) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE phone_number = ?`, phone))
}

func (r *accountsRepo) UpdateProfile(ctx context.Context, id, displayName string, emailVerified bool) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE accounts SET display_name = ?, email_verified = ?, updated_at = ? WHERE id = ?`,
		displayName, emailVerified, nowMillis(), id,
	))
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, nowMillis(), id,
	))
}

func (r *accountsRepo) DeleteAllAccounts(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts`)
	return err
}
