package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/SscSPs/rental_ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to its row.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		TransactionDate: d.Date,
		Description:     d.Description,
		TransactionType: string(d.Type),
		Reference:       NullString(d.Reference),
		ResidenceID:     NullString(d.ResidenceID),
		Amount:          d.Amount,
		CreatedAt:       d.CreatedAt,
		CreatedBy:       d.CreatedBy,
	}
}

// ToModelEntry converts a domain entry header to its row. Lines are mapped
// separately with ToModelEntryLines.
func ToModelEntry(d domain.TransactionEntry) (models.TransactionEntry, error) {
	meta, err := domain.MarshalMetadata(d.Metadata)
	if err != nil {
		return models.TransactionEntry{}, fmt.Errorf("encoding metadata: %w", err)
	}
	srcModel, srcID := domain.SplitSourceRef(d.SourceRef)
	cpModel, cpID := domain.SplitSourceRef(d.Counterparty)
	return models.TransactionEntry{
		EntryID:           d.EntryID,
		TransactionID:     d.TransactionID,
		EntryDate:         d.Date,
		Description:       d.Description,
		Reference:         NullString(d.Reference),
		TotalDebit:        d.TotalDebit,
		TotalCredit:       d.TotalCredit,
		Source:            string(d.Source),
		SourceModel:       NullString(string(srcModel)),
		SourceID:          NullString(srcID),
		CounterpartyModel: NullString(string(cpModel)),
		CounterpartyID:    NullString(cpID),
		Metadata:          meta,
		ResidenceID:       NullString(d.ResidenceID),
		CountsTowardCash:  d.CountsTowardCash,
		IdempotencyKey:    NullString(d.IdempotencyKey),
		ReversalOfEntryID: NullString(d.ReversalOfEntryID),
		CreatedAt:         d.CreatedAt,
		CreatedBy:         d.CreatedBy,
	}, nil
}

// ToDomainEntry converts an entry row and its lines to the domain type.
func ToDomainEntry(m models.TransactionEntry, lines []models.EntryLine) (domain.TransactionEntry, error) {
	src, err := domain.NewSourceRef(domain.SourceModel(StringOrEmpty(m.SourceModel)), StringOrEmpty(m.SourceID))
	if err != nil {
		return domain.TransactionEntry{}, fmt.Errorf("entry %s: %w", m.EntryID, err)
	}
	cp, err := domain.NewSourceRef(domain.SourceModel(StringOrEmpty(m.CounterpartyModel)), StringOrEmpty(m.CounterpartyID))
	if err != nil {
		return domain.TransactionEntry{}, fmt.Errorf("entry %s: %w", m.EntryID, err)
	}
	meta, err := ToDomainMetadata(m.Metadata)
	if err != nil {
		return domain.TransactionEntry{}, fmt.Errorf("entry %s: %w", m.EntryID, err)
	}

	status := domain.StatusPosted
	if m.ReversedByEntryID.Valid {
		status = domain.StatusReversed
	}

	return domain.TransactionEntry{
		EntryID:           m.EntryID,
		TransactionID:     m.TransactionID,
		Date:              m.EntryDate,
		Description:       m.Description,
		Reference:         StringOrEmpty(m.Reference),
		Lines:             ToDomainEntryLines(lines),
		TotalDebit:        m.TotalDebit,
		TotalCredit:       m.TotalCredit,
		Source:            domain.EntrySource(m.Source),
		SourceRef:         src,
		Counterparty:      cp,
		Status:            status,
		Metadata:          meta,
		ResidenceID:       StringOrEmpty(m.ResidenceID),
		CountsTowardCash:  m.CountsTowardCash,
		IdempotencyKey:    StringOrEmpty(m.IdempotencyKey),
		ReversalOfEntryID: StringOrEmpty(m.ReversalOfEntryID),
		ReversedByEntryID: StringOrEmpty(m.ReversedByEntryID),
		CreatedBy:         m.CreatedBy,
		CreatedAt:         m.CreatedAt,
	}, nil
}

// ToDomainMetadata decodes a jsonb metadata column.
func ToDomainMetadata(raw []byte) (domain.Metadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var meta domain.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	if len(meta) == 0 {
		return nil, nil
	}
	return meta, nil
}

// ToModelEntryLines converts domain lines to rows for entryID.
func ToModelEntryLines(entryID string, lines []domain.EntryLine) []models.EntryLine {
	out := make([]models.EntryLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, models.EntryLine{
			EntryID:     entryID,
			LineNo:      l.LineNo,
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			AccountType: string(l.AccountType),
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}
	return out
}

// ToDomainEntryLines converts line rows to the domain type.
func ToDomainEntryLines(lines []models.EntryLine) []domain.EntryLine {
	out := make([]domain.EntryLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.EntryLine{
			LineNo:      l.LineNo,
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			AccountType: domain.AccountType(l.AccountType),
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}
	return out
}
