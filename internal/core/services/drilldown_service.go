package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/middleware"
	"github.com/shopspring/decimal"
)

// descriptionPatterns are tried in order against free-text descriptions such as
// "Rent payment from Jane Doe - March" or "Paid to ACME Plumbing (invoice 42)".
var descriptionPatterns = []struct {
	re   *regexp.Regexp
	kind domain.CounterpartyKind
}{
	{regexp.MustCompile(`(?i)\b(?:received\s+)?from\s+([\p{L}][\p{L}0-9.'&\s]*?)\s*(?:[-–(,]|\bfor\b|$)`), domain.KindPayer},
	{regexp.MustCompile(`(?i)\b(?:paid\s+)?to\s+([\p{L}][\p{L}0-9.'&\s]*?)\s*(?:[-–(,]|\bfor\b|$)`), domain.KindVendor},
	{regexp.MustCompile(`(?i)\b(?:student|tenant|debtor):\s*([\p{L}][\p{L}0-9.'\s]*?)\s*(?:[-–(,]|$)`), domain.KindDebtor},
}

// metadataNameKeys are consulted in order when no source record names the counterparty.
var metadataNameKeys = []struct {
	key  string
	kind domain.CounterpartyKind
}{
	{domain.MetaStudentName, domain.KindDebtor},
	{domain.MetaDebtorName, domain.KindDebtor},
	{domain.MetaVendorName, domain.KindVendor},
	{domain.MetaPayerName, domain.KindPayer},
}

// drillDownService explains report figures line by line.
type drillDownService struct {
	BaseService
	accountRepo    portsrepo.AccountReader
	reportingRepo  portsrepo.ReportingRepository
	entryRepo      portsrepo.EntryReader
	directoryRepo  portsrepo.DirectoryReader
	prefixFallback bool
}

// DrillDownServiceOption is a functional option for configuring the drill-down service
type DrillDownServiceOption func(*drillDownService)

// WithDrillDownPrefixFallback enables the legacy code-prefix parent convention.
func WithDrillDownPrefixFallback(enabled bool) DrillDownServiceOption {
	return func(s *drillDownService) {
		s.prefixFallback = enabled
	}
}

// NewDrillDownService creates a new drill-down service
func NewDrillDownService(accountRepo portsrepo.AccountReader, reportingRepo portsrepo.ReportingRepository, entryRepo portsrepo.EntryReader, directoryRepo portsrepo.DirectoryReader, options ...DrillDownServiceOption) portssvc.DrillDownSvc {
	svc := &drillDownService{
		accountRepo:   accountRepo,
		reportingRepo: reportingRepo,
		entryRepo:     entryRepo,
		directoryRepo: directoryRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.DrillDownSvc = (*drillDownService)(nil)

func (s *drillDownService) DrillDown(ctx context.Context, q domain.DrillDownQuery) (*domain.DrillDownResult, error) {
	basis, err := normalizeBasis(q.Basis)
	if err != nil {
		return nil, err
	}
	chart, err := loadChart(ctx, s.accountRepo, s.prefixFallback)
	if err != nil {
		s.LogError(ctx, err, "Failed to load chart for drill-down")
		return nil, err
	}
	target, ok := chart.Lookup(q.AccountCode)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", q.AccountCode))
	}

	to := domain.DateOnly(q.To)
	mode := domain.ModeBalanceSheet
	filter := domain.LedgerFilter{To: to, Basis: basis, ResidenceID: q.ResidenceID}
	if !target.Type.IsBalanceSheet() {
		mode = domain.ModeIncomeStatement
		if q.From == nil {
			return nil, &apperrors.InvalidPeriodError{Reason: "from is required for income and expense accounts"}
		}
		from := domain.DateOnly(*q.From)
		filter.From = &from
	}
	if err := validateRange(filter.From, filter.To); err != nil {
		return nil, err
	}

	subtree := chart.Subtree(target.Code)
	filter.AccountCodes = subtree
	lines, err := s.reportingRepo.ListLines(ctx, subtree, filter, q.Sources)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger lines", slog.String("account_code", target.Code))
		return nil, err
	}

	// owner maps every code in the subtree to the direct child it rolls into.
	owner := make(map[string]string, len(subtree))
	var subtotals []domain.ChildSubtotal
	subtotalIdx := make(map[string]int)
	children := chart.Children(target.Code, true)
	inactive := make(map[string]bool)
	if len(children) > 0 {
		addBucket := func(code, name string) {
			subtotalIdx[code] = len(subtotals)
			subtotals = append(subtotals, domain.ChildSubtotal{AccountCode: code, AccountName: name, Debit: decimal.Zero, Credit: decimal.Zero, Net: decimal.Zero})
		}
		addBucket(target.Code, target.Name)
		owner[target.Code] = target.Code
		for _, child := range children {
			if !child.IsActive {
				inactive[child.Code] = true
			}
			addBucket(child.Code, child.Name)
			for _, code := range chart.Subtree(child.Code) {
				owner[code] = child.Code
			}
		}
	}

	result := &domain.DrillDownResult{
		Account:        target,
		Mode:           mode,
		From:           filter.From,
		To:             to,
		Basis:          basis,
		Lines:          make([]domain.DrillDownLine, 0, len(lines)),
		ChildSubtotals: []domain.ChildSubtotal{},
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
	}

	res := newCounterpartyResolver(s.directoryRepo, s.entryRepo)
	running := decimal.Zero
	degraded := 0
	for _, l := range lines {
		acct, _ := chart.Lookup(l.AccountCode)
		running = running.Add(target.Type.Signed(l.Debit, l.Credit))
		name, kind := res.resolve(ctx, l.SourceRef, l.Counterparty, l.Metadata, l.Description, 0)
		model, sourceID := domain.SplitSourceRef(l.SourceRef)

		dl := domain.DrillDownLine{
			EntryID:          l.EntryID,
			TransactionID:    l.TransactionID,
			Date:             l.Date,
			AccountCode:      l.AccountCode,
			AccountName:      acct.Name,
			Debit:            l.Debit,
			Credit:           l.Credit,
			Description:      l.Description,
			Reference:        l.Reference,
			Source:           l.Source,
			SourceModel:      model,
			SourceID:         sourceID,
			Counterparty:     name,
			CounterpartyKind: kind,
			ResidenceID:      l.ResidenceID,
			ResidenceName:    res.residenceName(ctx, l.ResidenceID),
			RunningBalance:   running,
		}
		if l.LineMemo != "" {
			dl.Description = l.LineMemo
		}
		if kind == domain.KindUnknown {
			dl.Warning = domain.WarningResolutionDegraded
			degraded++
		}
		result.Lines = append(result.Lines, dl)
		result.TotalDebit = result.TotalDebit.Add(l.Debit)
		result.TotalCredit = result.TotalCredit.Add(l.Credit)

		if i, ok := subtotalIdx[owner[l.AccountCode]]; ok {
			st := &subtotals[i]
			st.Debit = st.Debit.Add(l.Debit)
			st.Credit = st.Credit.Add(l.Credit)
			st.LineCount++
		}
	}
	for _, st := range subtotals {
		if inactive[st.AccountCode] && st.LineCount == 0 {
			continue
		}
		st.Net = target.Type.Signed(st.Debit, st.Credit)
		result.ChildSubtotals = append(result.ChildSubtotals, st)
	}
	result.Net = target.Type.Signed(result.TotalDebit, result.TotalCredit)

	if degraded > 0 {
		result.Warnings = append(result.Warnings, domain.WarningResolutionDegraded)
		s.LogWarn(ctx, "Drill-down could not attribute some lines",
			slog.String("account_code", target.Code),
			slog.Int("unresolved_lines", degraded))
	}
	return result, nil
}

// counterpartyResolver memoizes directory lookups for a single drill-down.
// Lookup failures are remembered as misses and never abort the request.
type counterpartyResolver struct {
	dir        portsrepo.DirectoryReader
	entries    portsrepo.EntryReader
	names      map[string]resolvedName
	residences map[string]string
}

type resolvedName struct {
	name string
	kind domain.CounterpartyKind
}

func newCounterpartyResolver(dir portsrepo.DirectoryReader, entries portsrepo.EntryReader) *counterpartyResolver {
	return &counterpartyResolver{
		dir:        dir,
		entries:    entries,
		names:      make(map[string]resolvedName),
		residences: make(map[string]string),
	}
}

func (r *counterpartyResolver) resolve(ctx context.Context, ref, counterparty domain.SourceRef, meta domain.Metadata, description string, depth int) (string, domain.CounterpartyKind) {
	if name, kind := r.fromRef(ctx, ref, depth); name != "" {
		return name, kind
	}
	if name, kind := r.fromRef(ctx, counterparty, depth); name != "" {
		return name, kind
	}
	for _, mk := range metadataNameKeys {
		if name := strings.TrimSpace(meta[mk.key]); name != "" {
			return name, mk.kind
		}
	}
	for _, p := range descriptionPatterns {
		if m := p.re.FindStringSubmatch(description); len(m) > 1 {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name, p.kind
			}
		}
	}
	return domain.CounterpartyUnknown, domain.KindUnknown
}

// fromRef follows a structured reference to the record naming the counterparty.
// EntryRef is followed once so a reversal resolves like its original.
func (r *counterpartyResolver) fromRef(ctx context.Context, ref domain.SourceRef, depth int) (string, domain.CounterpartyKind) {
	if ref == nil || r.dir == nil {
		return "", ""
	}
	logger := middleware.GetLoggerFromCtx(ctx)
	switch v := ref.(type) {
	case domain.PaymentRef:
		return r.cached("payment:"+v.PaymentID, func() (string, domain.CounterpartyKind) {
			p, err := r.dir.FindPayment(ctx, v.PaymentID)
			if err != nil {
				logger.Debug("Payment lookup failed", slog.String("payment_id", v.PaymentID), slog.String("error", err.Error()))
				return "", ""
			}
			if p.PayerName != "" {
				return p.PayerName, domain.KindPayer
			}
			if p.DebtorID != "" {
				return r.fromRef(ctx, domain.DebtorRef{DebtorID: p.DebtorID}, depth)
			}
			return "", ""
		})
	case domain.ExpenseRef:
		return r.cached("expense:"+v.ExpenseID, func() (string, domain.CounterpartyKind) {
			e, err := r.dir.FindExpense(ctx, v.ExpenseID)
			if err != nil {
				logger.Debug("Expense lookup failed", slog.String("expense_id", v.ExpenseID), slog.String("error", err.Error()))
				return "", ""
			}
			if e.VendorName != "" {
				return e.VendorName, domain.KindVendor
			}
			if e.VendorID != "" {
				return r.fromRef(ctx, domain.VendorRef{VendorID: e.VendorID}, depth)
			}
			return "", ""
		})
	case domain.DebtorRef:
		return r.cached("debtor:"+v.DebtorID, func() (string, domain.CounterpartyKind) {
			d, err := r.dir.FindDebtor(ctx, v.DebtorID)
			if err != nil {
				logger.Debug("Debtor lookup failed", slog.String("debtor_id", v.DebtorID), slog.String("error", err.Error()))
				return "", ""
			}
			return d.Name, domain.KindDebtor
		})
	case domain.VendorRef:
		return r.cached("vendor:"+v.VendorID, func() (string, domain.CounterpartyKind) {
			vd, err := r.dir.FindVendor(ctx, v.VendorID)
			if err != nil {
				logger.Debug("Vendor lookup failed", slog.String("vendor_id", v.VendorID), slog.String("error", err.Error()))
				return "", ""
			}
			return vd.Name, domain.KindVendor
		})
	case domain.EntryRef:
		if depth > 0 || r.entries == nil {
			return "", ""
		}
		entry, err := r.entries.FindEntryByID(ctx, v.EntryID)
		if err != nil {
			logger.Debug("Original entry lookup failed", slog.String("entry_id", v.EntryID), slog.String("error", err.Error()))
			return "", ""
		}
		name, kind := r.resolve(ctx, entry.SourceRef, entry.Counterparty, entry.Metadata, entry.Description, depth+1)
		if kind == domain.KindUnknown {
			return "", ""
		}
		return name, kind
	}
	return "", ""
}

func (r *counterpartyResolver) cached(key string, lookup func() (string, domain.CounterpartyKind)) (string, domain.CounterpartyKind) {
	if hit, ok := r.names[key]; ok {
		return hit.name, hit.kind
	}
	name, kind := lookup()
	r.names[key] = resolvedName{name: name, kind: kind}
	return name, kind
}

func (r *counterpartyResolver) residenceName(ctx context.Context, residenceID string) string {
	if residenceID == "" || r.dir == nil {
		return ""
	}
	if name, ok := r.residences[residenceID]; ok {
		return name
	}
	name := ""
	if res, err := r.dir.FindResidence(ctx, residenceID); err == nil {
		name = res.Name
	}
	r.residences[residenceID] = name
	return name
}
