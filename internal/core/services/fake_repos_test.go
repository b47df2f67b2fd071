package services_test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory stand-in for every repository port.
type fakeStore struct {
	mu         sync.Mutex
	accounts   map[string]domain.Account
	entries    []domain.TransactionEntry
	byKey      map[string]string
	txns       map[string]domain.Transaction
	debtors    map[string]*domain.Debtor
	vendors    map[string]*domain.Vendor
	payments   map[string]domain.Payment
	expenses   map[string]domain.ExpenseRecord
	residences map[string]domain.Residence
	// sumCalls counts SumByAccount invocations so cache behaviour is observable.
	sumCalls int
}

var (
	_ portsrepo.AccountRepositoryFacade = (*fakeStore)(nil)
	_ portsrepo.LedgerRepositoryFacade  = (*fakeStore)(nil)
	_ portsrepo.ReportingRepository     = (*fakeStore)(nil)
	_ portsrepo.IntegrityRepository     = (*fakeStore)(nil)
	_ portsrepo.DirectoryReader         = (*fakeStore)(nil)
)

func newFakeStore(accounts ...domain.Account) *fakeStore {
	s := &fakeStore{
		accounts:   make(map[string]domain.Account),
		byKey:      make(map[string]string),
		txns:       make(map[string]domain.Transaction),
		debtors:    make(map[string]*domain.Debtor),
		vendors:    make(map[string]*domain.Vendor),
		payments:   make(map[string]domain.Payment),
		expenses:   make(map[string]domain.ExpenseRecord),
		residences: make(map[string]domain.Residence),
	}
	for _, a := range accounts {
		s.accounts[a.Code] = a
	}
	return s
}

func (s *fakeStore) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   s,
		LedgerRepo:    s,
		ReportingRepo: s,
		IntegrityRepo: s,
		DirectoryRepo: s,
	}
}

// --- accounts ---

func (s *fakeStore) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (s *fakeStore) FindAccountsByCodes(_ context.Context, codes []string) (map[string]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Account)
	for _, c := range codes {
		if a, ok := s.accounts[c]; ok {
			out[c] = a
		}
	}
	return out, nil
}

func (s *fakeStore) ListAccounts(_ context.Context, includeInactive bool) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if a.IsActive || includeInactive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *fakeStore) CountLinesForAccount(_ context.Context, code string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.entries {
		for _, l := range e.Lines {
			if l.AccountCode == code {
				n++
			}
		}
	}
	return n, nil
}

func (s *fakeStore) SaveAccount(_ context.Context, a domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Code]; ok {
		return apperrors.ErrDuplicate
	}
	s.accounts[a.Code] = a
	return nil
}

func (s *fakeStore) UpdateAccount(_ context.Context, a domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Code]; !ok {
		return apperrors.ErrNotFound
	}
	s.accounts[a.Code] = a
	return nil
}

func (s *fakeStore) SetParentCodes(_ context.Context, changes []domain.ParentChange, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range changes {
		a := s.accounts[c.Code]
		a.ParentCode = c.ParentCode
		a.LastUpdatedBy = userID
		s.accounts[c.Code] = a
	}
	return nil
}

// --- ledger ---

// withDerivedStatus fills ReversedByEntryID and Status the way the database join does.
func (s *fakeStore) withDerivedStatus(e domain.TransactionEntry) domain.TransactionEntry {
	for _, other := range s.entries {
		if other.ReversalOfEntryID == e.EntryID {
			e.ReversedByEntryID = other.EntryID
			e.Status = domain.StatusReversed
		}
	}
	return e
}

func (s *fakeStore) FindEntryByID(_ context.Context, entryID string) (*domain.TransactionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.EntryID == entryID {
			out := s.withDerivedStatus(e)
			return &out, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *fakeStore) FindEntryByIdempotencyKey(ctx context.Context, key string) (*domain.TransactionEntry, error) {
	s.mu.Lock()
	id, ok := s.byKey[key]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return s.FindEntryByID(ctx, id)
}

func (s *fakeStore) ListEntries(_ context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.TransactionEntry, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []domain.TransactionEntry
	for _, e := range s.entries {
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		if filter.Source != "" && e.Source != filter.Source {
			continue
		}
		if filter.ResidenceID != "" && e.ResidenceID != filter.ResidenceID {
			continue
		}
		matched = append(matched, s.withDerivedStatus(e))
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	offset := 0
	if nextToken != nil {
		offset, _ = strconv.Atoi(*nextToken)
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	var next *string
	if end < len(matched) {
		t := strconv.Itoa(end)
		next = &t
	} else {
		end = len(matched)
	}
	return matched[offset:end], next, nil
}

func (s *fakeStore) SaveEntry(_ context.Context, txn domain.Transaction, entry domain.TransactionEntry, adj *domain.CounterpartyAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.IdempotencyKey != "" {
		if existing, ok := s.byKey[entry.IdempotencyKey]; ok {
			model, id := domain.SplitSourceRef(entry.SourceRef)
			return &apperrors.DuplicatePostingError{Source: string(model), SourceID: id, ExistingEntryID: existing}
		}
	}
	if adj != nil {
		switch ref := adj.Ref.(type) {
		case domain.DebtorRef:
			d, ok := s.debtors[ref.DebtorID]
			if !ok {
				return apperrors.NewNotFoundError("debtor not found")
			}
			d.Balance = d.Balance.Add(adj.Delta)
		case domain.VendorRef:
			v, ok := s.vendors[ref.VendorID]
			if !ok {
				return apperrors.NewNotFoundError("vendor not found")
			}
			v.Balance = v.Balance.Add(adj.Delta)
		}
	}
	if _, ok := s.txns[txn.TransactionID]; !ok {
		s.txns[txn.TransactionID] = txn
	}
	s.entries = append(s.entries, entry)
	if entry.IdempotencyKey != "" {
		s.byKey[entry.IdempotencyKey] = entry.EntryID
	}
	return nil
}

// --- reporting ---

func (s *fakeStore) entryMatches(e domain.TransactionEntry, filter domain.LedgerFilter) bool {
	if filter.From != nil && e.Date.Before(*filter.From) {
		return false
	}
	if e.Date.After(filter.To) {
		return false
	}
	if filter.Basis == domain.BasisCash && !e.CountsTowardCash {
		return false
	}
	if filter.ResidenceID != "" && e.ResidenceID != filter.ResidenceID {
		return false
	}
	return true
}

func codeSet(codes []string) map[string]bool {
	if codes == nil {
		return nil
	}
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

func (s *fakeStore) SumByAccount(_ context.Context, filter domain.LedgerFilter) ([]domain.AccountTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sumCalls++
	set := codeSet(filter.AccountCodes)
	idx := make(map[string]*domain.AccountTotals)
	var order []string
	for _, e := range s.entries {
		if !s.entryMatches(e, filter) {
			continue
		}
		for _, l := range e.Lines {
			if set != nil && !set[l.AccountCode] {
				continue
			}
			t, ok := idx[l.AccountCode]
			if !ok {
				t = &domain.AccountTotals{AccountCode: l.AccountCode}
				idx[l.AccountCode] = t
				order = append(order, l.AccountCode)
			}
			t.Debit = t.Debit.Add(l.Debit)
			t.Credit = t.Credit.Add(l.Credit)
		}
	}
	out := make([]domain.AccountTotals, 0, len(order))
	for _, code := range order {
		out = append(out, *idx[code])
	}
	return out, nil
}

func (s *fakeStore) CashCounterpartTotals(_ context.Context, from, to time.Time, residenceID string) ([]domain.CounterpartTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filter := domain.LedgerFilter{From: &from, To: to, Basis: domain.BasisCash, ResidenceID: residenceID}
	idx := make(map[string]*domain.CounterpartTotals)
	for _, e := range s.entries {
		if !s.entryMatches(e, filter) {
			continue
		}
		for _, l := range e.Lines {
			if s.accounts[l.AccountCode].Role == domain.RoleCash {
				continue
			}
			t, ok := idx[l.AccountCode]
			if !ok {
				t = &domain.CounterpartTotals{AccountCode: l.AccountCode}
				idx[l.AccountCode] = t
			}
			t.Inflow = t.Inflow.Add(l.Credit)
			t.Outflow = t.Outflow.Add(l.Debit)
		}
	}
	out := make([]domain.CounterpartTotals, 0, len(idx))
	for _, t := range idx {
		out = append(out, *t)
	}
	return out, nil
}

func (s *fakeStore) ListLines(_ context.Context, codes []string, filter domain.LedgerFilter, sources []domain.EntrySource) ([]domain.LedgerLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := codeSet(codes)
	var out []domain.LedgerLine
	for _, e := range s.entries {
		if !s.entryMatches(e, filter) {
			continue
		}
		if len(sources) > 0 {
			found := false
			for _, src := range sources {
				found = found || src == e.Source
			}
			if !found {
				continue
			}
		}
		for _, l := range e.Lines {
			if !set[l.AccountCode] {
				continue
			}
			out = append(out, domain.LedgerLine{
				EntryID:       e.EntryID,
				TransactionID: e.TransactionID,
				Date:          e.Date,
				CreatedAt:     e.CreatedAt,
				LineNo:        l.LineNo,
				AccountCode:   l.AccountCode,
				Debit:         l.Debit,
				Credit:        l.Credit,
				LineMemo:      l.Description,
				Description:   e.Description,
				Reference:     e.Reference,
				Source:        e.Source,
				SourceRef:     e.SourceRef,
				Counterparty:  e.Counterparty,
				Metadata:      e.Metadata,
				ResidenceID:   e.ResidenceID,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].LineNo < out[j].LineNo
	})
	return out, nil
}

// --- integrity ---

func (s *fakeStore) FindEntryTotalMismatches(_ context.Context, tolerance decimal.Decimal) ([]domain.EntryTotalsCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.EntryTotalsCheck
	for _, e := range s.entries {
		c := domain.EntryTotalsCheck{EntryID: e.EntryID, StoredDebit: e.TotalDebit, StoredCredit: e.TotalCredit}
		for _, l := range e.Lines {
			c.LineDebit = c.LineDebit.Add(l.Debit)
			c.LineCredit = c.LineCredit.Add(l.Credit)
		}
		if c.LineDebit.Sub(c.LineCredit).Abs().GreaterThan(tolerance) ||
			c.StoredDebit.Sub(c.LineDebit).Abs().GreaterThan(tolerance) ||
			c.StoredCredit.Sub(c.LineCredit).Abs().GreaterThan(tolerance) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) LedgerTotals(_ context.Context) (int, domain.AccountTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t domain.AccountTotals
	for _, e := range s.entries {
		for _, l := range e.Lines {
			t.Debit = t.Debit.Add(l.Debit)
			t.Credit = t.Credit.Add(l.Credit)
		}
	}
	return len(s.entries), t, nil
}

// --- directory ---

func (s *fakeStore) FindPayment(_ context.Context, id string) (*domain.Payment, error) {
	if p, ok := s.payments[id]; ok {
		return &p, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *fakeStore) FindExpense(_ context.Context, id string) (*domain.ExpenseRecord, error) {
	if e, ok := s.expenses[id]; ok {
		return &e, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *fakeStore) FindDebtor(_ context.Context, id string) (*domain.Debtor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.debtors[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *fakeStore) FindVendor(_ context.Context, id string) (*domain.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.vendors[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *fakeStore) FindResidence(_ context.Context, id string) (*domain.Residence, error) {
	if r, ok := s.residences[id]; ok {
		return &r, nil
	}
	return nil, apperrors.ErrNotFound
}

// --- fixtures ---

// seqIDs issues predictable ids.
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}

func acct(code, name string, t domain.AccountType, role domain.AccountRole, parent string) domain.Account {
	return domain.Account{Code: code, Name: name, Type: t, Role: role, ParentCode: parent, IsActive: true}
}

// rentalChart is a small residence chart. 1000-01 rolls into 1000 by prefix only.
func rentalChart() []domain.Account {
	retired := acct("9999", "Retired Float", domain.Asset, domain.RoleNone, "")
	retired.IsActive = false
	return []domain.Account{
		acct("1000", "Cash and Bank", domain.Asset, domain.RoleNone, ""),
		acct("1000-01", "Operating Bank", domain.Asset, domain.RoleCash, ""),
		acct("1100", "Accounts Receivable", domain.Asset, domain.RoleReceivable, ""),
		acct("2000", "Accounts Payable", domain.Liability, domain.RolePayable, ""),
		acct("3000", "Owner Equity", domain.Equity, domain.RoleNone, ""),
		acct("4000", "Rental Income", domain.Income, domain.RoleNone, ""),
		acct("5000", "Maintenance", domain.Expense, domain.RoleNone, ""),
		acct("5000-01", "Plumbing", domain.Expense, domain.RoleNone, "5000"),
		retired,
	}
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debit(code, amount string) domain.PostingLine {
	return domain.PostingLine{AccountCode: code, Debit: dec(amount), Credit: decimal.Zero}
}

func credit(code, amount string) domain.PostingLine {
	return domain.PostingLine{AccountCode: code, Debit: decimal.Zero, Credit: dec(amount)}
}
