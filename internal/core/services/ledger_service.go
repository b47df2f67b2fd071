package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/dto"
	"github.com/SscSPs/rental_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

const defaultEntryPageSize = 50

// balanceInvalidator is told about every new posting date.
type balanceInvalidator interface {
	InvalidateFrom(date time.Time)
}

// ledgerService is the single writer of the ledger.
type ledgerService struct {
	BaseService
	ledgerRepo    portsrepo.LedgerRepositoryFacade
	accountRepo   portsrepo.AccountReader
	directoryRepo portsrepo.DirectoryReader
	invalidator   balanceInvalidator
	ids           IDGenerator
	epsilon       decimal.Decimal
	now           func() time.Time
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithDirectory enables counterparty existence checks.
func WithDirectory(repo portsrepo.DirectoryReader) LedgerServiceOption {
	return func(s *ledgerService) {
		s.directoryRepo = repo
	}
}

// WithBalanceInvalidator registers the cache flushed after each posting.
func WithBalanceInvalidator(inv balanceInvalidator) LedgerServiceOption {
	return func(s *ledgerService) {
		s.invalidator = inv
	}
}

// WithIDGenerator overrides how transaction and entry ids are issued.
func WithIDGenerator(ids IDGenerator) LedgerServiceOption {
	return func(s *ledgerService) {
		s.ids = ids
	}
}

// WithPostingEpsilon sets the largest debit/credit gap accepted on a posting.
func WithPostingEpsilon(eps decimal.Decimal) LedgerServiceOption {
	return func(s *ledgerService) {
		s.epsilon = eps
	}
}

// WithLedgerClock overrides the time source used for createdAt and reversal dates.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates a new ledger service
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountReader, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		ids:         UUIDGenerator{},
		epsilon:     accounting.DefaultEpsilon,
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// postOptions carries what only the reversal path may set.
type postOptions struct {
	reversalOf    string
	allowInactive bool
}

func (s *ledgerService) Post(ctx context.Context, req domain.PostingRequest, userID string) (*domain.PostResult, error) {
	return s.post(ctx, req, userID, postOptions{})
}

func (s *ledgerService) post(ctx context.Context, req domain.PostingRequest, userID string, opts postOptions) (*domain.PostResult, error) {
	logger := s.GetLogger(ctx).With(slog.String("source", string(req.Source)))

	if !req.Source.IsValid() {
		return nil, fmt.Errorf("%w: invalid entry source %q", apperrors.ErrValidation, req.Source)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
	}
	if req.TransactionType == "" {
		req.TransactionType = domain.TxnOther
	}
	if !req.TransactionType.IsValid() {
		return nil, fmt.Errorf("%w: invalid transaction type %q", apperrors.ErrValidation, req.TransactionType)
	}
	if err := accounting.ValidateLines(req.Lines); err != nil {
		return nil, err
	}
	totalDebit, totalCredit, err := accounting.ValidateEntryBalance(req.Lines, s.epsilon)
	if err != nil {
		logger.Warn("Rejected unbalanced posting", slog.String("error", err.Error()))
		return nil, err
	}

	key := domain.IdempotencyKeyFor(req.Source, req.SourceRef, req.Reference)
	if key != "" {
		existing, err := s.ledgerRepo.FindEntryByIdempotencyKey(ctx, key)
		if err == nil {
			logger.Info("Posting already recorded", slog.String("entry_id", existing.EntryID))
			return &domain.PostResult{Entry: *existing, Duplicate: true}, nil
		}
		if !isNotFound(err) {
			s.LogError(ctx, err, "Failed to look up idempotency key", slog.String("key", key))
			return nil, err
		}
	}

	accounts, err := s.resolveAccounts(ctx, req.Lines, opts.allowInactive)
	if err != nil {
		return nil, err
	}

	adj, err := s.counterpartyAdjustment(ctx, req.Counterparty, req.Lines, accounts)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	date := domain.DateOnly(req.Date)
	txnID := req.TransactionID
	if txnID == "" {
		txnID = s.ids.NewID()
	}
	entryID := s.ids.NewID()

	lines := make([]domain.EntryLine, len(req.Lines))
	countsTowardCash := false
	for i, l := range req.Lines {
		acct := accounts[l.AccountCode]
		if acct.Role == domain.RoleCash {
			countsTowardCash = true
		}
		lines[i] = domain.EntryLine{
			LineNo:      i + 1,
			AccountCode: acct.Code,
			AccountName: acct.Name,
			AccountType: acct.Type,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}

	metadata := make(domain.Metadata, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	if req.ResidenceID != "" {
		metadata[domain.MetaResidenceID] = req.ResidenceID
	}

	txn := domain.Transaction{
		TransactionID: txnID,
		Date:          date,
		Description:   req.Description,
		Type:          req.TransactionType,
		Reference:     req.Reference,
		ResidenceID:   req.ResidenceID,
		Amount:        totalDebit,
		CreatedBy:     userID,
		CreatedAt:     now,
	}
	entry := domain.TransactionEntry{
		EntryID:           entryID,
		TransactionID:     txnID,
		Date:              date,
		Description:       req.Description,
		Reference:         req.Reference,
		Lines:             lines,
		TotalDebit:        totalDebit,
		TotalCredit:       totalCredit,
		Source:            req.Source,
		SourceRef:         req.SourceRef,
		Counterparty:      req.Counterparty,
		Status:            domain.StatusPosted,
		Metadata:          metadata,
		ResidenceID:       req.ResidenceID,
		CountsTowardCash:  countsTowardCash,
		IdempotencyKey:    key,
		ReversalOfEntryID: opts.reversalOf,
		CreatedBy:         userID,
		CreatedAt:         now,
	}

	if err := s.ledgerRepo.SaveEntry(ctx, txn, entry, adj); err != nil {
		var dup *apperrors.DuplicatePostingError
		if errors.As(err, &dup) {
			existing, findErr := s.ledgerRepo.FindEntryByID(ctx, dup.ExistingEntryID)
			if findErr != nil {
				s.LogError(ctx, findErr, "Failed to load existing entry after duplicate posting", slog.String("entry_id", dup.ExistingEntryID))
				return nil, findErr
			}
			logger.Info("Concurrent duplicate posting resolved to existing entry", slog.String("entry_id", existing.EntryID))
			return &domain.PostResult{Entry: *existing, Duplicate: true}, nil
		}
		s.LogError(ctx, err, "Failed to save entry", slog.String("entry_id", entryID))
		return nil, err
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateFrom(date)
	}

	logger.Info("Entry posted",
		slog.String("entry_id", entryID),
		slog.String("transaction_id", txnID),
		slog.String("total", totalDebit.StringFixed(2)),
		slog.Bool("counts_toward_cash", countsTowardCash))
	return &domain.PostResult{Entry: entry}, nil
}

// resolveAccounts loads every account referenced by lines. Missing accounts are
// always rejected; inactive ones unless allowInactive.
func (s *ledgerService) resolveAccounts(ctx context.Context, lines []domain.PostingLine, allowInactive bool) (map[string]domain.Account, error) {
	seen := make(map[string]bool, len(lines))
	codes := make([]string, 0, len(lines))
	for _, l := range lines {
		if !seen[l.AccountCode] {
			seen[l.AccountCode] = true
			codes = append(codes, l.AccountCode)
		}
	}
	sort.Strings(codes)

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve accounts for posting")
		return nil, err
	}
	for _, code := range codes {
		acct, ok := accounts[code]
		if !ok {
			return nil, &apperrors.UnknownAccountError{Code: code}
		}
		if !acct.IsActive && !allowInactive {
			return nil, &apperrors.UnknownAccountError{Code: code, Inactive: true}
		}
	}
	return accounts, nil
}

// counterpartyAdjustment computes how far the debtor or vendor balance moves:
// the receivable lines' debits less credits for a debtor, the payable lines'
// credits less debits for a vendor.
func (s *ledgerService) counterpartyAdjustment(ctx context.Context, ref domain.SourceRef, lines []domain.PostingLine, accounts map[string]domain.Account) (*domain.CounterpartyAdjustment, error) {
	if ref == nil {
		return nil, nil
	}

	var role domain.AccountRole
	switch r := ref.(type) {
	case domain.DebtorRef:
		role = domain.RoleReceivable
		if s.directoryRepo != nil {
			if _, err := s.directoryRepo.FindDebtor(ctx, r.DebtorID); err != nil {
				return nil, counterpartyLookupError(ref, err)
			}
		}
	case domain.VendorRef:
		role = domain.RolePayable
		if s.directoryRepo != nil {
			if _, err := s.directoryRepo.FindVendor(ctx, r.VendorID); err != nil {
				return nil, counterpartyLookupError(ref, err)
			}
		}
	default:
		return nil, fmt.Errorf("%w: counterparty must be a Debtor or Vendor, got %s", apperrors.ErrValidation, ref.Model())
	}

	delta := decimal.Zero
	for _, l := range lines {
		if accounts[l.AccountCode].Role != role {
			continue
		}
		if role == domain.RoleReceivable {
			delta = delta.Add(l.Debit).Sub(l.Credit)
		} else {
			delta = delta.Add(l.Credit).Sub(l.Debit)
		}
	}
	if delta.IsZero() {
		return nil, nil
	}
	return &domain.CounterpartyAdjustment{Ref: ref, Delta: delta}, nil
}

func counterpartyLookupError(ref domain.SourceRef, err error) error {
	if isNotFound(err) {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", ref.Model(), ref.ID()))
	}
	return fmt.Errorf("failed to look up %s %s: %w", ref.Model(), ref.ID(), err)
}

func (s *ledgerService) Reverse(ctx context.Context, entryID string, reason string, userID string) (*domain.PostResult, error) {
	original, err := s.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.ReversalOfEntryID != "" {
		return nil, fmt.Errorf("%w: entry %s is itself a reversal", apperrors.ErrConflict, entryID)
	}
	if original.ReversedByEntryID != "" {
		existing, err := s.GetEntry(ctx, original.ReversedByEntryID)
		if err != nil {
			return nil, err
		}
		return &domain.PostResult{Entry: *existing, Duplicate: true}, nil
	}

	date := domain.DateOnly(s.now())
	if original.Date.After(date) {
		date = original.Date
	}

	lines := make([]domain.PostingLine, len(original.Lines))
	for i, l := range original.Lines {
		lines[i] = domain.PostingLine{
			AccountCode: l.AccountCode,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Description: l.Description,
		}
	}
	metadata := make(domain.Metadata, len(original.Metadata)+1)
	for k, v := range original.Metadata {
		metadata[k] = v
	}
	if reason != "" {
		metadata[domain.MetaReason] = reason
	}

	req := domain.PostingRequest{
		Source:          domain.SourceAdjustment,
		SourceRef:       domain.EntryRef{EntryID: original.EntryID},
		Counterparty:    original.Counterparty,
		Reference:       original.Reference,
		Date:            date,
		Description:     "Reversal of: " + original.Description,
		TransactionType: domain.TxnAdjustment,
		ResidenceID:     original.ResidenceID,
		Lines:           lines,
		Metadata:        metadata,
	}
	result, err := s.post(ctx, req, userID, postOptions{reversalOf: original.EntryID, allowInactive: true})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Entry reversed", slog.String("entry_id", entryID), slog.String("reversal_entry_id", result.Entry.EntryID))
	return result, nil
}

func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.TransactionEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !isNotFound(err) {
			s.LogError(ctx, err, "Failed to find entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) GetEntryBySource(ctx context.Context, source domain.EntrySource, ref domain.SourceRef, reference string) (*domain.TransactionEntry, error) {
	key := domain.IdempotencyKeyFor(source, ref, reference)
	if key == "" {
		return nil, fmt.Errorf("%w: a source reference or reference is required", apperrors.ErrValidation)
	}
	entry, err := s.ledgerRepo.FindEntryByIdempotencyKey(ctx, key)
	if err != nil {
		if !isNotFound(err) {
			s.LogError(ctx, err, "Failed to find entry by source", slog.String("key", key))
		}
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	filter, err := params.ToEntryFilter()
	if err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultEntryPageSize
	}
	var token *string
	if params.NextToken != "" {
		token = &params.NextToken
	}

	entries, next, err := s.ledgerRepo.ListEntries(ctx, filter, limit, token)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries")
		return nil, err
	}
	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: next,
	}, nil
}
