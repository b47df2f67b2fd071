package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/dto"
	"github.com/SscSPs/rental_ledger/internal/middleware"
	"github.com/SscSPs/rental_ledger/internal/utils/chartfile"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	balanceService portssvc.BalanceSvc
	currency       string
	now            func() time.Time
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, bs portssvc.BalanceSvc, currency string) *accountHandler {
	return &accountHandler{
		accountService: as,
		balanceService: bs,
		currency:       currency,
		now:            time.Now,
	}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, balanceService portssvc.BalanceSvc, currency string) {
	registerValidators()
	h := newAccountHandler(accountService, balanceService, currency)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.POST("/import", h.importAccounts)
		accounts.POST("/backfill-parents", h.backfillParents)
		accounts.GET("/:code", h.getAccount)
		accounts.PUT("/:code", h.updateAccount)
		accounts.DELETE("/:code", h.deactivateAccount)
		accounts.GET("/:code/balance", h.getAccountBalance)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an account to the chart. A parent must exist, be active and share the account type.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Account code already exists"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("account_code", req.Code))
	logger.Info("Received request to create account", slog.String("account_type", req.Type))

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully")
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List the chart of accounts
// @Tags accounts
// @Produce  json
// @Param   includeInactive query bool false "Include deactivated accounts"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("includeInactive", "false"))

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), includeInactive)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list accounts")
		return
	}

	logger.Info("Accounts listed successfully", slog.Int("count", len(accounts)))
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// getAccount godoc
// @Summary Get an account by code
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{code} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_code", c.Param("code")))

	account, err := h.accountService.GetAccount(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccount godoc
// @Summary Update an account
// @Description Changes mutable fields. The type can only change while no lines reference the account.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   code path string true "Account code"
// @Param   account body dto.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account type is locked by posted lines"
// @Failure 500 {object} map[string]string "Failed to update account"
// @Security BearerAuth
// @Router /accounts/{code} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	code := c.Param("code")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_code", code))
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), code, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update account")
		return
	}
	logger.Info("Account updated successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Accounts are never deleted. Deactivated accounts reject new postings and drop out of rollups.
// @Tags accounts
// @Param   code path string true "Account code"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to deactivate account"
// @Security BearerAuth
// @Router /accounts/{code} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	code := c.Param("code")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_code", code))
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.accountService.DeactivateAccount(c.Request.Context(), code, userID); err != nil {
		respondWithError(c, logger, err, "Failed to deactivate account")
		return
	}
	logger.Info("Account deactivated")
	c.Status(http.StatusNoContent)
}

// getAccountBalance godoc
// @Summary Get an account balance
// @Description Balance of the account and its active descendants. With from set only lines dated within [from, asOf] count.
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Param   asOf query string false "Balance date (YYYY-MM-DD), defaults to today"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   basis query string false "cash or accrual" default(accrual)
// @Param   residenceId query string false "Restrict to one residence"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 400 {object} map[string]string "Invalid basis or period"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to compute balance"
// @Security BearerAuth
// @Router /accounts/{code}/balance [get]
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	code := c.Param("code")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_code", code))
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger.Warn("Failed to bind query for GetAccountBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	asOf, err := q.AsOfDate(h.now())
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute balance")
		return
	}
	from, err := dto.ParseOptionalDate("from", q.From)
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute balance")
		return
	}
	basis, err := domain.ParseBasis(q.Basis)
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute balance")
		return
	}

	balance, err := h.balanceService.GetBalance(c.Request.Context(), domain.BalanceQuery{
		AccountCode: code,
		From:        from,
		AsOf:        asOf,
		Basis:       basis,
		ResidenceID: q.ResidenceID,
	})
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountBalanceResponse(balance, h.currency))
}

// importAccounts godoc
// @Summary Import a chart of accounts file
// @Description Accepts a CSV or YAML chart as multipart field "file". Existing codes are skipped.
// @Tags accounts
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "Chart file (.csv, .yaml or .yml)"
// @Success 200 {object} map[string]int "Number of accounts created"
// @Failure 400 {object} map[string]string "Unreadable file"
// @Failure 500 {object} map[string]string "Failed to import accounts"
// @Security BearerAuth
// @Router /accounts/import [post]
func (h *accountHandler) importAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondWithError(c, logger, err, "Failed to read uploaded file")
		return
	}
	defer f.Close()

	accounts, err := chartfile.ReadAccounts(fh.Filename, f)
	if err != nil {
		logger.Warn("Rejected chart file", slog.String("file", fh.Filename), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.accountService.ImportAccounts(c.Request.Context(), accounts, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to import accounts")
		return
	}
	logger.Info("Chart imported", slog.Int("created", created), slog.Int("read", len(accounts)))
	c.JSON(http.StatusOK, gin.H{"created": created})
}

// backfillParents godoc
// @Summary Derive parent links from code prefixes
// @Description Lists (and with apply=true writes) the parent assignments implied by the legacy "PARENT-xx" code convention.
// @Tags accounts
// @Produce  json
// @Param   apply query bool false "Write the changes"
// @Success 200 {object} dto.ParentChangesResponse
// @Failure 500 {object} map[string]string "Failed to backfill parents"
// @Security BearerAuth
// @Router /accounts/backfill-parents [post]
func (h *accountHandler) backfillParents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	apply, _ := strconv.ParseBool(c.DefaultQuery("apply", "false"))

	changes, err := h.accountService.BackfillParentsFromPrefix(c.Request.Context(), apply, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to backfill parents")
		return
	}
	c.JSON(http.StatusOK, dto.ParentChangesResponse{Applied: apply, Changes: changes})
}
