package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostLineRequest is one line of a posting request.
type PostLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// PostEntryRequest defines the data needed to post a ledger entry.
type PostEntryRequest struct {
	Source            string            `json:"source" binding:"required,entrysource"`
	SourceModel       string            `json:"sourceModel" binding:"omitempty,oneof=Payment Expense Debtor Vendor TransactionEntry"`
	SourceID          string            `json:"sourceID" binding:"required_with=SourceModel"`
	CounterpartyModel string            `json:"counterpartyModel" binding:"omitempty,oneof=Debtor Vendor"`
	CounterpartyID    string            `json:"counterpartyID" binding:"required_with=CounterpartyModel"`
	Reference         string            `json:"reference" binding:"max=255"`
	Date              string            `json:"date" binding:"required"`
	Description       string            `json:"description" binding:"required"`
	TransactionType   string            `json:"transactionType" binding:"omitempty,oneof=approval payment adjustment accrual other"`
	TransactionID     string            `json:"transactionID"`
	ResidenceID       string            `json:"residenceID"`
	Lines             []PostLineRequest `json:"lines" binding:"required,min=2,dive"`
	Metadata          map[string]string `json:"metadata"`
}

// ToPostingRequest converts the wire request to the domain type.
func (r PostEntryRequest) ToPostingRequest() (domain.PostingRequest, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return domain.PostingRequest{}, err
	}
	src, err := domain.NewSourceRef(domain.SourceModel(r.SourceModel), r.SourceID)
	if err != nil {
		return domain.PostingRequest{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	cp, err := domain.NewSourceRef(domain.SourceModel(r.CounterpartyModel), r.CounterpartyID)
	if err != nil {
		return domain.PostingRequest{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	txnType := domain.TransactionType(r.TransactionType)
	if txnType == "" {
		txnType = domain.TxnOther
	}

	lines := make([]domain.PostingLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.PostingLine{
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return domain.PostingRequest{
		Source:          domain.EntrySource(r.Source),
		SourceRef:       src,
		Counterparty:    cp,
		Reference:       r.Reference,
		Date:            date,
		Description:     r.Description,
		TransactionType: txnType,
		TransactionID:   r.TransactionID,
		ResidenceID:     r.ResidenceID,
		Lines:           lines,
		Metadata:        domain.Metadata(r.Metadata),
	}, nil
}

// ReverseEntryRequest carries the reason recorded on a reversal.
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// EntryLineResponse defines the data returned for an entry line.
type EntryLineResponse struct {
	LineNo      int             `json:"lineNo"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// EntryResponse defines the data returned for a ledger entry.
type EntryResponse struct {
	EntryID           string              `json:"entryID"`
	TransactionID     string              `json:"transactionID"`
	Date              string              `json:"date"`
	Description       string              `json:"description"`
	Reference         string              `json:"reference,omitempty"`
	Source            string              `json:"source"`
	SourceModel       string              `json:"sourceModel,omitempty"`
	SourceID          string              `json:"sourceID,omitempty"`
	CounterpartyModel string              `json:"counterpartyModel,omitempty"`
	CounterpartyID    string              `json:"counterpartyID,omitempty"`
	Status            string              `json:"status"`
	TotalDebit        decimal.Decimal     `json:"totalDebit"`
	TotalCredit       decimal.Decimal     `json:"totalCredit"`
	ResidenceID       string              `json:"residenceID,omitempty"`
	CountsTowardCash  bool                `json:"countsTowardCash"`
	ReversalOfEntryID string              `json:"reversalOfEntryID,omitempty"`
	ReversedByEntryID string              `json:"reversedByEntryID,omitempty"`
	Metadata          map[string]string   `json:"metadata,omitempty"`
	Lines             []EntryLineResponse `json:"lines"`
	CreatedAt         time.Time           `json:"createdAt"`
	CreatedBy         string              `json:"createdBy"`
}

// PostEntryResponse is returned by the posting endpoint.
type PostEntryResponse struct {
	Entry     EntryResponse `json:"entry"`
	Duplicate bool          `json:"duplicate"`
}

// ListEntriesParams defines the query parameters for listing entries.
type ListEntriesParams struct {
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken   string `form:"nextToken"`
	From        string `form:"from"`
	To          string `form:"to"`
	Source      string `form:"source" binding:"omitempty,entrysource"`
	AccountCode string `form:"accountCode"`
	ResidenceID string `form:"residenceId"`
}

// ToEntryFilter converts query parameters to a domain filter.
func (p ListEntriesParams) ToEntryFilter() (domain.EntryFilter, error) {
	from, err := ParseOptionalDate("from", p.From)
	if err != nil {
		return domain.EntryFilter{}, err
	}
	to, err := ParseOptionalDate("to", p.To)
	if err != nil {
		return domain.EntryFilter{}, err
	}
	if from != nil && to != nil && from.After(*to) {
		return domain.EntryFilter{}, &apperrors.InvalidPeriodError{Reason: "from is after to"}
	}
	return domain.EntryFilter{
		From:        from,
		To:          to,
		Source:      domain.EntrySource(p.Source),
		AccountCode: p.AccountCode,
		ResidenceID: p.ResidenceID,
	}, nil
}

// ListEntriesResponse is a page of entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToEntryResponse converts a domain entry to its DTO.
func ToEntryResponse(e *domain.TransactionEntry) EntryResponse {
	srcModel, srcID := domain.SplitSourceRef(e.SourceRef)
	cpModel, cpID := domain.SplitSourceRef(e.Counterparty)
	lines := make([]EntryLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = EntryLineResponse{
			LineNo:      l.LineNo,
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			AccountType: string(l.AccountType),
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return EntryResponse{
		EntryID:           e.EntryID,
		TransactionID:     e.TransactionID,
		Date:              e.Date.Format(DateFormat),
		Description:       e.Description,
		Reference:         e.Reference,
		Source:            string(e.Source),
		SourceModel:       string(srcModel),
		SourceID:          srcID,
		CounterpartyModel: string(cpModel),
		CounterpartyID:    cpID,
		Status:            string(e.Status),
		TotalDebit:        e.TotalDebit,
		TotalCredit:       e.TotalCredit,
		ResidenceID:       e.ResidenceID,
		CountsTowardCash:  e.CountsTowardCash,
		ReversalOfEntryID: e.ReversalOfEntryID,
		ReversedByEntryID: e.ReversedByEntryID,
		Metadata:          e.Metadata,
		Lines:             lines,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
	}
}

// ToEntryResponses converts a slice of entries.
func ToEntryResponses(entries []domain.TransactionEntry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToEntryResponse(&entries[i])
	}
	return out
}

// ToPostEntryResponse converts a posting result.
func ToPostEntryResponse(r *domain.PostResult) PostEntryResponse {
	return PostEntryResponse{Entry: ToEntryResponse(&r.Entry), Duplicate: r.Duplicate}
}
