package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/rental_ledger/internal/models"
	"github.com/SscSPs/rental_ledger/internal/utils/mapping"
	"github.com/SscSPs/rental_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Status is derived from the existence of a reversing entry; rows are never updated.
const entryColumns = `e.entry_id, e.transaction_id, e.entry_date, e.description, e.reference,
	e.total_debit, e.total_credit, e.source, e.source_model, e.source_id,
	e.counterparty_model, e.counterparty_id, e.metadata, e.residence_id,
	e.counts_toward_cash, e.idempotency_key, e.reversal_of_entry_id,
	(SELECT r.entry_id FROM transaction_entries r WHERE r.reversal_of_entry_id = e.entry_id LIMIT 1) AS reversed_by_entry_id,
	e.created_at, e.created_by`

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger entries.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// SaveEntry writes the transaction header, the entry, its lines and the
// counterparty balance move in one database transaction.
func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, txn domain.Transaction, entry domain.TransactionEntry, adj *domain.CounterpartyAdjustment) error {
	modelEntry, err := mapping.ToModelEntry(entry)
	if err != nil {
		return apperrors.NewAppError(500, "failed to map entry "+entry.EntryID, err)
	}
	modelTxn := mapping.ToModelTransaction(txn)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// 1. Transaction header; several entries may share one.
	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_transactions (
			transaction_id, transaction_date, description, transaction_type,
			reference, residence_id, amount, created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (transaction_id) DO NOTHING;`,
		modelTxn.TransactionID,
		modelTxn.TransactionDate,
		modelTxn.Description,
		modelTxn.TransactionType,
		modelTxn.Reference,
		modelTxn.ResidenceID,
		modelTxn.Amount,
		modelTxn.CreatedAt,
		modelTxn.CreatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction "+modelTxn.TransactionID, err)
	}

	// 2. Entry header, guarded by the idempotency key.
	var insertedID string
	err = tx.QueryRow(ctx, `
		INSERT INTO transaction_entries (
			entry_id, transaction_id, entry_date, description, reference,
			total_debit, total_credit, source, source_model, source_id,
			counterparty_model, counterparty_id, metadata, residence_id,
			counts_toward_cash, idempotency_key, reversal_of_entry_id,
			created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING entry_id;`,
		modelEntry.EntryID,
		modelEntry.TransactionID,
		modelEntry.EntryDate,
		modelEntry.Description,
		modelEntry.Reference,
		modelEntry.TotalDebit,
		modelEntry.TotalCredit,
		modelEntry.Source,
		modelEntry.SourceModel,
		modelEntry.SourceID,
		modelEntry.CounterpartyModel,
		modelEntry.CounterpartyID,
		modelEntry.Metadata,
		modelEntry.ResidenceID,
		modelEntry.CountsTowardCash,
		modelEntry.IdempotencyKey,
		modelEntry.ReversalOfEntryID,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
	).Scan(&insertedID)
	if errors.Is(err, pgx.ErrNoRows) {
		var existingID string
		if lookupErr := tx.QueryRow(ctx, `SELECT entry_id FROM transaction_entries WHERE idempotency_key = $1;`,
			modelEntry.IdempotencyKey).Scan(&existingID); lookupErr != nil {
			return apperrors.NewAppError(500, "failed to resolve duplicate posting "+entry.IdempotencyKey, lookupErr)
		}
		srcModel, srcID := domain.SplitSourceRef(entry.SourceRef)
		return &apperrors.DuplicatePostingError{Source: string(srcModel), SourceID: srcID, ExistingEntryID: existingID}
	}
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert entry "+modelEntry.EntryID, err)
	}

	// 3. Lines
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO transaction_entry_lines (
			entry_id, line_no, account_code, account_name, account_type, debit, credit, description
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	for _, l := range mapping.ToModelEntryLines(entry.EntryID, entry.Lines) {
		batch.Queue(lineQuery,
			l.EntryID,
			l.LineNo,
			l.AccountCode,
			l.AccountName,
			l.AccountType,
			l.Debit,
			l.Credit,
			l.Description,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines for entry "+modelEntry.EntryID, err)
	}

	// 4. Denormalized counterparty balance
	if adj != nil && !adj.Delta.IsZero() {
		if err := applyCounterpartyAdjustment(ctx, tx, adj); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

func applyCounterpartyAdjustment(ctx context.Context, tx pgx.Tx, adj *domain.CounterpartyAdjustment) error {
	var query, id string
	switch ref := adj.Ref.(type) {
	case domain.DebtorRef:
		query, id = `UPDATE debtors SET balance = balance + $2, updated_at = NOW() WHERE debtor_id = $1;`, ref.DebtorID
	case domain.VendorRef:
		query, id = `UPDATE vendors SET balance = balance + $2, updated_at = NOW() WHERE vendor_id = $1;`, ref.VendorID
	default:
		return fmt.Errorf("%w: counterparty %T carries no balance", apperrors.ErrValidation, adj.Ref)
	}
	tag, err := tx.Exec(ctx, query, id, adj.Delta)
	if err != nil {
		return apperrors.NewAppError(500, "failed to adjust "+string(adj.Ref.Model())+" balance", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(string(adj.Ref.Model()) + " " + id + " not found")
	}
	return nil
}

func scanEntryRow(row pgx.Row) (models.TransactionEntry, error) {
	var m models.TransactionEntry
	err := row.Scan(
		&m.EntryID,
		&m.TransactionID,
		&m.EntryDate,
		&m.Description,
		&m.Reference,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.Source,
		&m.SourceModel,
		&m.SourceID,
		&m.CounterpartyModel,
		&m.CounterpartyID,
		&m.Metadata,
		&m.ResidenceID,
		&m.CountsTowardCash,
		&m.IdempotencyKey,
		&m.ReversalOfEntryID,
		&m.ReversedByEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	return m, err
}

// findLines loads the lines of entryIDs grouped by entry.
func (r *PgxLedgerRepository) findLines(ctx context.Context, entryIDs []string) (map[string][]models.EntryLine, error) {
	out := make(map[string][]models.EntryLine, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}
	rows, err := r.Pool.Query(ctx, `
		SELECT entry_id, line_no, account_code, account_name, account_type, debit, credit, description
		FROM transaction_entry_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_no;`, entryIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entry lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l models.EntryLine
		if err := rows.Scan(&l.EntryID, &l.LineNo, &l.AccountCode, &l.AccountName, &l.AccountType, &l.Debit, &l.Credit, &l.Description); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry line", err)
		}
		out[l.EntryID] = append(out[l.EntryID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry lines", err)
	}
	return out, nil
}

func (r *PgxLedgerRepository) findOne(ctx context.Context, where string, arg any, what string) (*domain.TransactionEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM transaction_entries e WHERE ` + where + `;`
	m, err := scanEntryRow(r.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, notFoundOr(err, what)
	}
	lines, err := r.findLines(ctx, []string{m.EntryID})
	if err != nil {
		return nil, err
	}
	entry, err := mapping.ToDomainEntry(m, lines[m.EntryID])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to map entry "+m.EntryID, err)
	}
	return &entry, nil
}

// FindEntryByID retrieves an entry with its lines.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.TransactionEntry, error) {
	return r.findOne(ctx, "e.entry_id = $1", entryID, "entry "+entryID)
}

// FindEntryByIdempotencyKey retrieves the entry recorded under key.
func (r *PgxLedgerRepository) FindEntryByIdempotencyKey(ctx context.Context, key string) (*domain.TransactionEntry, error) {
	return r.findOne(ctx, "e.idempotency_key = $1", key, "entry with key "+key)
}

// ListEntries retrieves a page of entries, newest first, using token-based pagination.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.TransactionEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row tells us whether there is a next page.
	fetchLimit := limit + 1

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		conds = append(conds, "e.entry_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "e.entry_date <= "+arg(*filter.To))
	}
	if filter.Source != "" {
		conds = append(conds, "e.source = "+arg(string(filter.Source)))
	}
	if filter.ResidenceID != "" {
		conds = append(conds, "e.residence_id = "+arg(filter.ResidenceID))
	}
	if filter.AccountCode != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM transaction_entry_lines l WHERE l.entry_id = e.entry_id AND l.account_code = "+arg(filter.AccountCode)+")")
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		conds = append(conds, "(e.entry_date, e.created_at, e.entry_id) < ("+arg(cursor.Date)+", "+arg(cursor.CreatedAt)+", "+arg(cursor.ID)+")")
	}

	query := `SELECT ` + entryColumns + ` FROM transaction_entries e`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY e.entry_date DESC, e.created_at DESC, e.entry_id DESC LIMIT ` + arg(fetchLimit) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries", err)
	}
	var rowsOut []models.TransactionEntry
	for rows.Next() {
		m, err := scanEntryRow(rows)
		if err != nil {
			rows.Close()
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row", err)
		}
		rowsOut = append(rowsOut, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows", err)
	}

	var next *string
	if len(rowsOut) > limit {
		rowsOut = rowsOut[:limit]
		last := rowsOut[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.EntryDate, CreatedAt: last.CreatedAt, ID: last.EntryID})
		next = &token
	}

	ids := make([]string, len(rowsOut))
	for i, m := range rowsOut {
		ids[i] = m.EntryID
	}
	lines, err := r.findLines(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]domain.TransactionEntry, 0, len(rowsOut))
	for _, m := range rowsOut {
		e, err := mapping.ToDomainEntry(m, lines[m.EntryID])
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to map entry "+m.EntryID, err)
		}
		entries = append(entries, e)
	}
	return entries, next, nil
}
