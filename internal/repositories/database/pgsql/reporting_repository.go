package pgsql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/rental_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// queryArgs accumulates positional parameters.
type queryArgs []any

func (a *queryArgs) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

// ledgerConditions renders filter as WHERE conditions over entries e and lines l.
func ledgerConditions(filter domain.LedgerFilter, args *queryArgs) []string {
	conds := []string{"e.entry_date <= " + args.add(filter.To)}
	if filter.From != nil {
		conds = append(conds, "e.entry_date >= "+args.add(*filter.From))
	}
	if filter.Basis == domain.BasisCash {
		conds = append(conds, "e.counts_toward_cash")
	}
	if filter.ResidenceID != "" {
		conds = append(conds, "e.residence_id = "+args.add(filter.ResidenceID))
	}
	if filter.AccountCodes != nil {
		conds = append(conds, "l.account_code = ANY("+args.add(filter.AccountCodes)+")")
	}
	return conds
}

// SumByAccount returns raw debit and credit totals per account.
func (r *reportingRepository) SumByAccount(ctx context.Context, filter domain.LedgerFilter) ([]domain.AccountTotals, error) {
	var args queryArgs
	query := `
		SELECT l.account_code, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM transaction_entry_lines l
		JOIN transaction_entries e ON e.entry_id = l.entry_id
		WHERE ` + strings.Join(ledgerConditions(filter, &args), " AND ") + `
		GROUP BY l.account_code
		ORDER BY l.account_code;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying account totals: %w", err)
	}
	defer rows.Close()

	result := []domain.AccountTotals{}
	for rows.Next() {
		var t domain.AccountTotals
		if err := rows.Scan(&t.AccountCode, &t.Debit, &t.Credit); err != nil {
			return nil, fmt.Errorf("error scanning account totals row: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account totals rows: %w", err)
	}
	return result, nil
}

// CashCounterpartTotals aggregates the non-cash lines of cash-affecting entries.
func (r *reportingRepository) CashCounterpartTotals(ctx context.Context, from, to time.Time, residenceID string) ([]domain.CounterpartTotals, error) {
	var args queryArgs
	filter := domain.LedgerFilter{From: &from, To: to, Basis: domain.BasisCash, ResidenceID: residenceID}
	conds := ledgerConditions(filter, &args)
	conds = append(conds, "COALESCE(a.role, '') <> 'CASH'")
	query := `
		SELECT l.account_code, COALESCE(SUM(l.credit), 0) AS inflow, COALESCE(SUM(l.debit), 0) AS outflow
		FROM transaction_entry_lines l
		JOIN transaction_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.code = l.account_code
		WHERE ` + strings.Join(conds, " AND ") + `
		GROUP BY l.account_code
		ORDER BY l.account_code;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying cash counterpart totals: %w", err)
	}
	defer rows.Close()

	result := []domain.CounterpartTotals{}
	for rows.Next() {
		var t domain.CounterpartTotals
		if err := rows.Scan(&t.AccountCode, &t.Inflow, &t.Outflow); err != nil {
			return nil, fmt.Errorf("error scanning cash counterpart row: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash counterpart rows: %w", err)
	}
	return result, nil
}

// ListLines returns the lines posted to codes in posting order.
func (r *reportingRepository) ListLines(ctx context.Context, codes []string, filter domain.LedgerFilter, sources []domain.EntrySource) ([]domain.LedgerLine, error) {
	if len(codes) == 0 {
		return []domain.LedgerLine{}, nil
	}
	filter.AccountCodes = codes

	var args queryArgs
	conds := ledgerConditions(filter, &args)
	if len(sources) > 0 {
		names := make([]string, len(sources))
		for i, s := range sources {
			names[i] = string(s)
		}
		conds = append(conds, "e.source = ANY("+args.add(names)+")")
	}
	query := `
		SELECT e.entry_id, e.transaction_id, e.entry_date, e.created_at, l.line_no, l.account_code,
		       l.debit, l.credit, l.description, e.description, e.reference, e.source,
		       e.source_model, e.source_id, e.counterparty_model, e.counterparty_id,
		       e.metadata, e.residence_id
		FROM transaction_entry_lines l
		JOIN transaction_entries e ON e.entry_id = l.entry_id
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY e.entry_date, e.created_at, e.entry_id, l.line_no;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying ledger lines: %w", err)
	}
	defer rows.Close()

	result := []domain.LedgerLine{}
	for rows.Next() {
		var (
			line                           domain.LedgerLine
			source                         string
			reference, residenceID         sql.NullString
			srcModel, srcID, cpModel, cpID sql.NullString
			meta                           []byte
		)
		if err := rows.Scan(
			&line.EntryID,
			&line.TransactionID,
			&line.Date,
			&line.CreatedAt,
			&line.LineNo,
			&line.AccountCode,
			&line.Debit,
			&line.Credit,
			&line.LineMemo,
			&line.Description,
			&reference,
			&source,
			&srcModel,
			&srcID,
			&cpModel,
			&cpID,
			&meta,
			&residenceID,
		); err != nil {
			return nil, fmt.Errorf("error scanning ledger line: %w", err)
		}
		line.Source = domain.EntrySource(source)
		line.Reference = mapping.StringOrEmpty(reference)
		line.ResidenceID = mapping.StringOrEmpty(residenceID)
		if line.SourceRef, err = domain.NewSourceRef(domain.SourceModel(mapping.StringOrEmpty(srcModel)), mapping.StringOrEmpty(srcID)); err != nil {
			return nil, fmt.Errorf("entry %s: %w", line.EntryID, err)
		}
		if line.Counterparty, err = domain.NewSourceRef(domain.SourceModel(mapping.StringOrEmpty(cpModel)), mapping.StringOrEmpty(cpID)); err != nil {
			return nil, fmt.Errorf("entry %s: %w", line.EntryID, err)
		}
		if line.Metadata, err = mapping.ToDomainMetadata(meta); err != nil {
			return nil, fmt.Errorf("entry %s: %w", line.EntryID, err)
		}
		result = append(result, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger lines: %w", err)
	}
	return result, nil
}

// integrityRepository runs the read-only consistency checks.
type integrityRepository struct {
	BaseRepository
}

func newIntegrityRepository(db *pgxpool.Pool) portsrepo.IntegrityRepository {
	return &integrityRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.IntegrityRepository = (*integrityRepository)(nil)

// FindEntryTotalMismatches returns entries whose stored totals or line sums
// disagree by more than tolerance.
func (r *integrityRepository) FindEntryTotalMismatches(ctx context.Context, tolerance decimal.Decimal) ([]domain.EntryTotalsCheck, error) {
	query := `
		SELECT e.entry_id, e.total_debit, e.total_credit,
		       COALESCE(SUM(l.debit), 0) AS line_debit, COALESCE(SUM(l.credit), 0) AS line_credit
		FROM transaction_entries e
		LEFT JOIN transaction_entry_lines l ON l.entry_id = e.entry_id
		GROUP BY e.entry_id, e.total_debit, e.total_credit, e.entry_date
		HAVING ABS(COALESCE(SUM(l.debit), 0) - COALESCE(SUM(l.credit), 0)) > $1
		    OR ABS(e.total_debit - COALESCE(SUM(l.debit), 0)) > $1
		    OR ABS(e.total_credit - COALESCE(SUM(l.credit), 0)) > $1
		ORDER BY e.entry_date, e.entry_id;`

	rows, err := r.Pool.Query(ctx, query, tolerance)
	if err != nil {
		return nil, fmt.Errorf("error querying entry totals: %w", err)
	}
	defer rows.Close()

	var result []domain.EntryTotalsCheck
	for rows.Next() {
		var c domain.EntryTotalsCheck
		if err := rows.Scan(&c.EntryID, &c.StoredDebit, &c.StoredCredit, &c.LineDebit, &c.LineCredit); err != nil {
			return nil, fmt.Errorf("error scanning entry totals row: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry totals rows: %w", err)
	}
	return result, nil
}

// LedgerTotals returns the entry count and grand line totals.
func (r *integrityRepository) LedgerTotals(ctx context.Context) (int, domain.AccountTotals, error) {
	var (
		count  int
		totals domain.AccountTotals
	)
	err := r.Pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM transaction_entries),
		       COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM transaction_entry_lines;`).Scan(&count, &totals.Debit, &totals.Credit)
	if err != nil {
		return 0, domain.AccountTotals{}, fmt.Errorf("error querying ledger totals: %w", err)
	}
	return count, totals, nil
}
