package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/dto"
	"github.com/SscSPs/rental_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler exposes the posting engine and entry lookups.
type ledgerHandler struct {
	ledgerService    portssvc.LedgerSvcFacade
	integrityService portssvc.IntegritySvc
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade, is portssvc.IntegritySvc) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls, integrityService: is}
}

// RegisterLedgerRoutes registers routes related to ledger entries.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, integrityService portssvc.IntegritySvc) {
	registerValidators()
	h := newLedgerHandler(ledgerService, integrityService)

	ledger := rg.Group("/ledger")
	{
		ledger.POST("/entries", h.postEntry)
		ledger.GET("/entries", h.listEntries)
		ledger.GET("/entries/by-source", h.getEntryBySource)
		ledger.GET("/entries/:entryID", h.getEntry)
		ledger.POST("/entries/:entryID/reverse", h.reverseEntry)
		ledger.GET("/integrity", h.scanIntegrity)
	}
}

// postEntry godoc
// @Summary Post a ledger entry
// @Description Validates and records a balanced entry. Re-posting the same source record returns the existing entry with duplicate=true.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   entry body dto.PostEntryRequest true "Entry"
// @Success 201 {object} dto.PostEntryResponse "Entry recorded"
// @Success 200 {object} dto.PostEntryResponse "Entry already existed"
// @Failure 400 {object} map[string]string "Unbalanced entry, unknown account or validation error"
// @Failure 404 {object} map[string]string "Counterparty not found"
// @Failure 500 {object} map[string]string "Failed to post entry"
// @Security BearerAuth
// @Router /ledger/entries [post]
func (h *ledgerHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	posting, err := req.ToPostingRequest()
	if err != nil {
		respondWithError(c, logger, err, "Failed to post entry")
		return
	}

	logger = logger.With(slog.String("source", req.Source), slog.String("source_id", req.SourceID))
	result, err := h.ledgerService.Post(c.Request.Context(), posting, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to post entry")
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	logger.Info("Entry posted", slog.String("entry_id", result.Entry.EntryID), slog.Bool("duplicate", result.Duplicate))
	c.JSON(status, dto.ToPostEntryResponse(result))
}

// listEntries godoc
// @Summary List ledger entries
// @Description Newest first, token paginated.
// @Tags ledger
// @Produce  json
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Param   source query string false "Entry source"
// @Param   accountCode query string false "Only entries touching this account"
// @Param   residenceId query string false "Residence"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Security BearerAuth
// @Router /ledger/entries [get]
func (h *ledgerHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get a ledger entry
// @Tags ledger
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entry"
// @Security BearerAuth
// @Router /ledger/entries/{entryID} [get]
func (h *ledgerHandler) getEntry(c *gin.Context) {
	entryID := c.Param("entryID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", entryID))

	entry, err := h.ledgerService.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// getEntryBySource godoc
// @Summary Find the entry recorded for a source record
// @Tags ledger
// @Produce  json
// @Param   source query string true "Entry source"
// @Param   sourceModel query string false "Source model (Payment, Expense, Debtor, Vendor, TransactionEntry)"
// @Param   sourceID query string false "Source record id"
// @Param   reference query string false "Caller reference when there is no source record"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid source"
// @Failure 404 {object} map[string]string "No entry for this source"
// @Security BearerAuth
// @Router /ledger/entries/by-source [get]
func (h *ledgerHandler) getEntryBySource(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	source := domain.EntrySource(c.Query("source"))
	if !source.IsValid() {
		respondWithError(c, logger, fmt.Errorf("%w: invalid entry source %q", apperrors.ErrValidation, source), "Failed to retrieve entry")
		return
	}
	ref, err := domain.NewSourceRef(domain.SourceModel(c.Query("sourceModel")), c.Query("sourceID"))
	if err != nil {
		respondWithError(c, logger, fmt.Errorf("%w: %v", apperrors.ErrValidation, err), "Failed to retrieve entry")
		return
	}

	entry, err := h.ledgerService.GetEntryBySource(c.Request.Context(), source, ref, c.Query("reference"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a ledger entry
// @Description Records an offsetting adjustment entry. The original is never modified; its status becomes reversed.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   body body dto.ReverseEntryRequest true "Reason"
// @Success 201 {object} dto.PostEntryResponse
// @Success 200 {object} dto.PostEntryResponse "Entry was already reversed"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is itself a reversal"
// @Failure 500 {object} map[string]string "Failed to reverse entry"
// @Security BearerAuth
// @Router /ledger/entries/{entryID}/reverse [post]
func (h *ledgerHandler) reverseEntry(c *gin.Context) {
	entryID := c.Param("entryID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", entryID))
	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	result, err := h.ledgerService.Reverse(c.Request.Context(), entryID, req.Reason, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reverse entry")
		return
	}
	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	logger.Info("Entry reversed", slog.String("reversal_entry_id", result.Entry.EntryID))
	c.JSON(status, dto.ToPostEntryResponse(result))
}

// scanIntegrity godoc
// @Summary Scan the ledger for historical inconsistencies
// @Description Reports unbalanced entries, stored totals that differ from their lines, and a global imbalance. Nothing is corrected.
// @Tags ledger
// @Produce  json
// @Success 200 {object} domain.IntegrityReport
// @Failure 500 {object} map[string]string "Failed to scan ledger"
// @Security BearerAuth
// @Router /ledger/integrity [get]
func (h *ledgerHandler) scanIntegrity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	report, err := h.integrityService.Scan(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to scan ledger")
		return
	}
	c.JSON(http.StatusOK, report)
}
