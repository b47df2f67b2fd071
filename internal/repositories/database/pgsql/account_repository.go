package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/rental_ledger/internal/models"
	"github.com/SscSPs/rental_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `code, name, account_type, category, parent_code, role, description, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for the chart of accounts.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.Category,
		&m.ParentCode,
		&m.Role,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	defer rows.Close()
	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return out, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`
	_, err := r.Pool.Exec(ctx, query,
		m.Code,
		m.Name,
		m.AccountType,
		m.Category,
		m.ParentCode,
		m.Role,
		m.Description,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account with code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return apperrors.NewAppError(500, "failed to save account "+m.Code, err)
	}
	return nil
}

// FindAccountByCode retrieves an account by its code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	a, err := scanAccount(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		return nil, notFoundOr(err, "account "+code)
	}
	return &a, nil
}

// FindAccountsByCodes retrieves the accounts that exist among codes.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, codes)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by code", err)
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		out[a.Code] = a
	}
	return out, nil
}

// ListAccounts returns the chart ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY code;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list accounts", err)
	}
	return collectAccounts(rows)
}

// CountLinesForAccount returns how many posted lines reference code.
func (r *PgxAccountRepository) CountLinesForAccount(ctx context.Context, code string) (int64, error) {
	var n int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transaction_entry_lines WHERE account_code = $1;`, code).Scan(&n)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count lines for account "+code, err)
	}
	return n, nil
}

// UpdateAccount overwrites the mutable columns of an existing account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET name = $2, account_type = $3, category = $4, parent_code = $5, role = $6,
		    description = $7, is_active = $8, last_updated_at = $9, last_updated_by = $10
		WHERE code = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.Code,
		m.Name,
		m.AccountType,
		m.Category,
		m.ParentCode,
		m.Role,
		m.Description,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update account "+m.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + m.Code + " not found")
	}
	return nil
}

// SetParentCodes applies parent assignments in a single transaction.
func (r *PgxAccountRepository) SetParentCodes(ctx context.Context, changes []domain.ParentChange, userID string) error {
	if len(changes) == 0 {
		return nil
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	for _, c := range changes {
		batch.Queue(`UPDATE accounts SET parent_code = $2, last_updated_at = NOW(), last_updated_by = $3 WHERE code = $1;`,
			c.Code, mapping.NullString(c.ParentCode), userID)
	}
	br := tx.SendBatch(ctx, batch)
	for _, c := range changes {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return apperrors.NewAppError(500, "failed to set parent of "+c.Code, err)
		}
		if tag.RowsAffected() == 0 {
			br.Close()
			return apperrors.NewNotFoundError("account " + c.Code + " not found")
		}
	}
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to apply parent changes", err)
	}
	return r.Commit(ctx, tx)
}
