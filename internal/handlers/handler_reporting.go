package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/dto"
	"github.com/SscSPs/rental_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
	balanceService   portssvc.BalanceSvc
	drillDownService portssvc.DrillDownSvc
	currency         string
	now              func() time.Time
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService, bs portssvc.BalanceSvc, ds portssvc.DrillDownSvc, currency string) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		balanceService:   bs,
		drillDownService: ds,
		currency:         currency,
		now:              time.Now,
	}
}

// RegisterReportingRoutes registers routes related to financial reports
func RegisterReportingRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, currency string) {
	registerValidators()
	h := newReportingHandler(services.Reporting, services.Balance, services.DrillDown, currency)

	reports := rg.Group("/reports")
	{
		reports.GET("/balance-sheet", h.getBalanceSheet)
		reports.GET("/balance-sheet/monthly", h.getMonthlyBalanceSheets)
		reports.GET("/income-statement", h.getIncomeStatement)
		reports.GET("/income-statement/monthly", h.getMonthlyIncomeStatements)
		reports.GET("/cash-flow", h.getCashFlow)
		reports.GET("/cash-flow/monthly", h.getMonthlyCashFlows)
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/reconciliation", h.getReconciliation)
		reports.GET("/drilldown/:code", h.getDrillDown)
	}
}

// bindReportQuery binds the shared query parameters and the basis.
func (h *reportingHandler) bindReportQuery(c *gin.Context, logger *slog.Logger) (dto.ReportQuery, domain.Basis, bool) {
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger.Warn("Failed to bind report query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return q, "", false
	}
	basis, err := domain.ParseBasis(q.Basis)
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate report")
		return q, "", false
	}
	return q, basis, true
}

// requireYear checks the year parameter of the monthly reports.
func requireYear(c *gin.Context, logger *slog.Logger, q dto.ReportQuery) bool {
	if q.Year == 0 {
		respondWithError(c, logger, &apperrors.InvalidPeriodError{Reason: "year is required"}, "Failed to generate report")
		return false
	}
	return true
}

// getBalanceSheet godoc
// @Summary Generate balance sheet
// @Description Assets, liabilities and equity as of a date. Equity carries a CURRENT_EARNINGS line for cumulative income minus expenses.
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD), defaults to today"
// @Param basis query string false "cash or accrual" default(accrual)
// @Param residenceId query string false "Residence"
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	q, basis, ok := h.bindReportQuery(c, logger)
	if !ok {
		return
	}
	asOf, err := q.AsOfDate(h.now())
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate balance sheet")
		return
	}

	bs, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf, basis, q.ResidenceID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(bs, h.currency))
}

// getMonthlyBalanceSheets godoc
// @Summary Generate month-end balance sheets for a year
// @Tags reports
// @Produce json
// @Param year query int true "Calendar year"
// @Param basis query string false "cash or accrual" default(accrual)
// @Param residenceId query string false "Residence"
// @Success 200 {object} dto.MonthlyBalanceSheetsResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/balance-sheet/monthly [get]
func (h *reportingHandler) getMonthlyBalanceSheets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	q, basis, ok := h.bindReportQuery(c, logger)
	if !ok || !requireYear(c, logger, q) {
		return
	}

	sheets, err := h.reportingService.MonthlyBalanceSheets(c.Request.Context(), q.Year, basis, q.ResidenceID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate monthly balance sheets")
		return
	}
	resp := dto.MonthlyBalanceSheetsResponse{Year: q.Year, Months: make([]dto.BalanceSheetResponse, len(sheets))}
	for i := range sheets {
		resp.Months[i] = dto.ToBalanceSheetResponse(&sheets[i], h.currency)
	}
	c.JSON(http.StatusOK, resp)
}

// getIncomeStatement godoc
// @Summary Generate income statement
// @Tags reports
// @Produce json
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD), inclusive"
// @Param basis query string false "cash or accrual" default(accrual)
// @Param residenceId query string false "Residence"
// @Success 200 {object} dto.IncomeStatementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/income-statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	q, basis, ok := h.bindReportQuery(c, logger)
	if !ok {
		return
	}
	from, to, err := q.Period()
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate income statement")
		return
	}

	is, err := h.reportingService.IncomeStatement(c.Request.Context(), from, to, basis, q.ResidenceID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate income statement")
		return
	}
	c.JSON(http.StatusOK, dto.ToIncomeStatementResponse(is, h.currency))
}

// getMonthlyIncomeStatements godoc
// @Summary Generate monthly income statements for a year
// @Tags reports
// @Produce json
// @Param year query int true "Calendar year"
// @Param basis query string false "cash or accrual" default(accrual)
// @Param residenceId query string false "Residence"
// @Success 200 {object} dto.MonthlyIncomeStatementsResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/income-statement/monthly [get]
func (h *reportingHandler) getMonthlyIncomeStatements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	q, basis, ok := h.bindReportQuery(c, logger)
	if !ok || !requireYear(c, logger, q) {
		return
	}

	statements, err := h.reportingService.MonthlyIncomeStatements(c.Request.Context(), q.Year, basis, q.ResidenceID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate monthly income statements")
		return
	}
	resp := dto.MonthlyIncomeStatementsResponse{Year: q.Year, Months: make([]dto.IncomeStatementResponse, len(statements))}
	for i := range statements {
		resp.Months[i] = dto.ToIncomeStatementResponse(&statements[i], h.currency)
	}
	c.JSON(http.StatusOK, resp)
}

// getCashFlow godoc
// @Summary Generate cash-flow statement
// @Description Built from cash-affecting entries only, grouped by counterpart account.
// @Tags reports
// @Produce json
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD), inclusive"
// @Param residenceId query string false "Residence"
// @Success 200 {object} dto.CashFlowResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/cash-flow [get]
func (h *reportingHandler) getCashFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	q, _, ok := h.bindReportQuery(c, logger)
	if !ok {
		return
	}
	from, to, err := q.Period()
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate cash flow")
		return
	}

	cf, err := h.reportingService.CashFlow(c.Request.Context(), from, to, q.ResidenceID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate cash flow")
		return
	}
	c.JSON(http.StatusOK, dto.ToCashFlowResponse(cf, h.currency))
}

// getMonthlyCashFlows godoc
// @Summary Generate monthly cash-flow statements for a year
// @Tags reports
// @Produce json
// @Param year query int true "Calendar year"
// @Param residenceId query string false "Residence"
// @Success 200 {object} dto.MonthlyCashFlowsResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/cash-flow/monthly [get]
func (h *reportingHandler) getMonthlyCashFlows(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	q, _, ok := h.bindReportQuery(c, logger)
	if !ok || !requireYear(c, logger, q) {
		return
	}

	flows, err := h.reportingService.MonthlyCashFlows(c.Request.Context(), q.Year, q.ResidenceID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate monthly cash flows")
		return
	}
	resp := dto.MonthlyCashFlowsResponse{Year: q.Year, Months: make([]dto.CashFlowResponse, len(flows))}
	for i := range flows {
		resp.Months[i] = dto.ToCashFlowResponse(&flows[i], h.currency)
	}
	c.JSON(http.StatusOK, resp)
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Generates a trial balance report as of a specific date
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD), defaults to today"
// @Param basis query string false "cash or accrual" default(accrual)
// @Param residenceId query string false "Residence"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	q, basis, ok := h.bindReportQuery(c, logger)
	if !ok {
		return
	}
	asOf, err := q.AsOfDate(h.now())
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate trial balance")
		return
	}

	rows, err := h.reportingService.TrialBalance(c.Request.Context(), asOf, basis, q.ResidenceID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate trial balance")
		return
	}
	logger.Info("Trial balance generated", slog.Int("rows", len(rows)))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(rows, asOf, basis))
}

// getReconciliation godoc
// @Summary Reconcile accrual net income with cash movement
// @Description Difference between accrual net income and net cash flow, explained by changes in receivables and payables.
// @Tags reports
// @Produce json
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD), inclusive"
// @Param residenceId query string false "Residence"
// @Success 200 {object} domain.Reconciliation
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to reconcile"
// @Security BearerAuth
// @Router /reports/reconciliation [get]
func (h *reportingHandler) getReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	q, _, ok := h.bindReportQuery(c, logger)
	if !ok {
		return
	}
	from, to, err := q.Period()
	if err != nil {
		respondWithError(c, logger, err, "Failed to reconcile")
		return
	}

	rec, err := h.balanceService.Reconcile(c.Request.Context(), from, to, q.ResidenceID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reconcile")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// getDrillDown godoc
// @Summary Itemize the entries behind an account figure
// @Description Balance-sheet accounts include everything up to the end date; income and expense accounts require from.
// @Tags reports
// @Produce json
// @Param code path string true "Account code"
// @Param from query string false "Start date (YYYY-MM-DD), required for income and expense accounts"
// @Param to query string false "End date (YYYY-MM-DD), defaults to asOf or today"
// @Param asOf query string false "Alias of to"
// @Param basis query string false "cash or accrual" default(accrual)
// @Param residenceId query string false "Residence"
// @Param sources query string false "Comma-separated entry sources"
// @Success 200 {object} domain.DrillDownResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to drill down"
// @Security BearerAuth
// @Router /reports/drilldown/{code} [get]
func (h *reportingHandler) getDrillDown(c *gin.Context) {
	code := c.Param("code")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_code", code))
	q, basis, ok := h.bindReportQuery(c, logger)
	if !ok {
		return
	}
	from, err := dto.ParseOptionalDate("from", q.From)
	if err != nil {
		respondWithError(c, logger, err, "Failed to drill down")
		return
	}
	to := domain.DateOnly(h.now())
	switch {
	case q.To != "":
		to, err = dto.ParseDate("to", q.To)
	case q.AsOf != "":
		to, err = dto.ParseDate("asOf", q.AsOf)
	}
	if err != nil {
		respondWithError(c, logger, err, "Failed to drill down")
		return
	}

	var sources []domain.EntrySource
	for _, s := range strings.Split(q.Sources, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		src := domain.EntrySource(s)
		if !src.IsValid() {
			respondWithError(c, logger, fmt.Errorf("%w: invalid entry source %q", apperrors.ErrValidation, s), "Failed to drill down")
			return
		}
		sources = append(sources, src)
	}

	result, err := h.drillDownService.DrillDown(c.Request.Context(), domain.DrillDownQuery{
		AccountCode: code,
		From:        from,
		To:          to,
		Basis:       basis,
		ResidenceID: q.ResidenceID,
		Sources:     sources,
	})
	if err != nil {
		respondWithError(c, logger, err, "Failed to drill down")
		return
	}
	if len(result.Warnings) > 0 {
		logger.Warn("Drill-down resolved with degraded counterparts", slog.Int("warnings", len(result.Warnings)))
	}
	c.JSON(http.StatusOK, result)
}
