package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// integrityService reports ledger inconsistencies. It never modifies entries.
type integrityService struct {
	BaseService
	repo    portsrepo.IntegrityRepository
	epsilon decimal.Decimal
}

// NewIntegrityService creates a new integrity scanner
func NewIntegrityService(repo portsrepo.IntegrityRepository, epsilon decimal.Decimal) portssvc.IntegritySvc {
	if epsilon.IsZero() {
		epsilon = accounting.DefaultEpsilon
	}
	return &integrityService{repo: repo, epsilon: epsilon}
}

var _ portssvc.IntegritySvc = (*integrityService)(nil)

func (s *integrityService) Scan(ctx context.Context) (*domain.IntegrityReport, error) {
	mismatches, err := s.repo.FindEntryTotalMismatches(ctx, s.epsilon)
	if err != nil {
		s.LogError(ctx, err, "Failed to scan entry totals")
		return nil, err
	}
	count, totals, err := s.repo.LedgerTotals(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute ledger totals")
		return nil, err
	}

	report := &domain.IntegrityReport{
		CheckedEntries: count,
		LedgerDebit:    totals.Debit,
		LedgerCredit:   totals.Credit,
		Balanced:       accounting.WithinEpsilon(totals.Debit, totals.Credit, s.epsilon),
		Warnings:       []domain.IntegrityWarning{},
	}

	for _, m := range mismatches {
		if !accounting.WithinEpsilon(m.LineDebit, m.LineCredit, s.epsilon) {
			report.Warnings = append(report.Warnings, domain.IntegrityWarning{
				Kind:    domain.IntegrityUnbalancedEntry,
				EntryID: m.EntryID,
				Message: fmt.Sprintf("line debits %s do not equal line credits %s", m.LineDebit.StringFixed(2), m.LineCredit.StringFixed(2)),
				Debit:   m.LineDebit,
				Credit:  m.LineCredit,
			})
		}
		if !accounting.WithinEpsilon(m.StoredDebit, m.LineDebit, s.epsilon) || !accounting.WithinEpsilon(m.StoredCredit, m.LineCredit, s.epsilon) {
			report.Warnings = append(report.Warnings, domain.IntegrityWarning{
				Kind:    domain.IntegrityTotalsMismatch,
				EntryID: m.EntryID,
				Message: fmt.Sprintf("stored totals %s/%s differ from line sums %s/%s",
					m.StoredDebit.StringFixed(2), m.StoredCredit.StringFixed(2), m.LineDebit.StringFixed(2), m.LineCredit.StringFixed(2)),
				Debit:  m.StoredDebit,
				Credit: m.StoredCredit,
			})
		}
	}
	if !report.Balanced {
		report.Warnings = append(report.Warnings, domain.IntegrityWarning{
			Kind:    domain.IntegrityLedgerImbalance,
			Message: fmt.Sprintf("ledger debits %s do not equal ledger credits %s", totals.Debit.StringFixed(2), totals.Credit.StringFixed(2)),
			Debit:   totals.Debit,
			Credit:  totals.Credit,
		})
	}

	for _, w := range report.Warnings {
		s.LogWarn(ctx, "Ledger integrity warning",
			slog.String("kind", string(w.Kind)),
			slog.String("entry_id", w.EntryID),
			slog.String("message", w.Message))
	}
	s.LogInfo(ctx, "Integrity scan finished",
		slog.Int("checked_entries", count),
		slog.Int("warnings", len(report.Warnings)),
		slog.Bool("balanced", report.Balanced))
	return report, nil
}
