package sqlite

import (
	"context"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
)

type providerLinksRepo struct {
	db dbtx
}

const linkColumns = `provider_id, federated_id, account_id, email, display_name, created_at`

func scanLink(row scanner) (domain.ProviderLink, error) {
	var (
		l       domain.ProviderLink
		created int64
	)
	if err := row.Scan(&l.ProviderID, &l.FederatedID, &l.AccountID, &l.Email, &l.DisplayName, &created); err != nil {
		return domain.ProviderLink{}, mapNotFound(err)
	}
	l.CreatedAt = fromMillis(created)
	return l, nil
}

func (r *providerLinksRepo) CreateProviderLink(ctx context.Context, l domain.ProviderLink) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO provider_links (`+linkColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		l.ProviderID, l.FederatedID, l.AccountID, l.Email, l.DisplayName, nowMillis(),
	)
	// The primary key violation reads "UNIQUE constraint failed" as well.
	return mapConstraint(err)
}

func (r *providerLinksRepo) GetProviderLink(
	ctx context.Context,
	providerID, federatedID string,
) (domain.ProviderLink, error) {
	return scanLink(r.db.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM provider_links WHERE provider_id = ? AND federated_id = ?`,
		providerID, federatedID,
	))
}

func (r *providerLinksRepo) ListAccountLinks(ctx context.Context, accountID string) ([]domain.ProviderLink, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM provider_links WHERE account_id = ? ORDER BY created_at`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.ProviderLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
