package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/dto"
	"github.com/SscSPs/rental_ledger/internal/utils/chartfile"
)

// chartInvalidator is notified whenever the shape of the chart changes.
type chartInvalidator interface {
	InvalidateAll()
}

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo    portsrepo.AccountRepositoryFacade
	prefixFallback bool
	invalidator    chartInvalidator
	now            func() time.Time
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithPrefixFallback enables the legacy code-prefix parent convention.
func WithPrefixFallback(enabled bool) AccountServiceOption {
	return func(s *accountService) {
		s.prefixFallback = enabled
	}
}

// WithChartInvalidator registers a cache to flush after chart changes.
func WithChartInvalidator(inv chartInvalidator) AccountServiceOption {
	return func(s *accountService) {
		s.invalidator = inv
	}
}

// WithAccountClock overrides the time source used for audit fields.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.now = now
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// loadChart builds a chart snapshot from every account, active or not.
func loadChart(ctx context.Context, repo portsrepo.AccountReader, prefixFallback bool) (*domain.Chart, error) {
	accounts, err := repo.ListAccounts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart of accounts: %w", err)
	}
	return domain.NewChart(accounts, prefixFallback), nil
}

func (s *accountService) chartChanged() {
	if s.invalidator != nil {
		s.invalidator.InvalidateAll()
	}
}

// validateParent checks that parentCode names an active account of type t.
func (s *accountService) validateParent(ctx context.Context, parentCode string, t domain.AccountType) error {
	parent, err := s.accountRepo.FindAccountByCode(ctx, parentCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, parentCode)
		}
		return err
	}
	if !parent.IsActive {
		return fmt.Errorf("%w: parent account %s is inactive", apperrors.ErrValidation, parentCode)
	}
	if parent.Type != t {
		return fmt.Errorf("%w: parent account %s is %s, child is %s", apperrors.ErrValidation, parentCode, parent.Type, t)
	}
	return nil
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	acctType := domain.AccountType(req.Type)
	role := domain.AccountRole(req.Role)
	if code == "" {
		return nil, fmt.Errorf("%w: account code is required", apperrors.ErrValidation)
	}
	if !acctType.IsValid() {
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, req.Type)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: invalid account role %q", apperrors.ErrValidation, req.Role)
	}
	if req.ParentCode != "" {
		if req.ParentCode == code {
			return nil, fmt.Errorf("%w: account cannot be its own parent", apperrors.ErrValidation)
		}
		if err := s.validateParent(ctx, req.ParentCode, acctType); err != nil {
			s.LogError(ctx, err, "Invalid parent account", slog.String("parent_code", req.ParentCode))
			return nil, err
		}
	}

	now := s.now().UTC()
	account := domain.Account{
		Code:        code,
		Name:        req.Name,
		Type:        acctType,
		Category:    req.Category,
		ParentCode:  req.ParentCode,
		Role:        role,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save account", slog.String("account_code", code))
		}
		return nil, err
	}
	s.chartChanged()

	s.LogInfo(ctx, "Account created", slog.String("account_code", code), slog.String("type", string(acctType)))
	return &account, nil
}

func (s *accountService) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) GetChart(ctx context.Context) (*domain.Chart, error) {
	return loadChart(ctx, s.accountRepo, s.prefixFallback)
}

func (s *accountService) UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccount(ctx, code)
	if err != nil {
		return nil, err
	}
	updated := *account

	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Category != nil {
		updated.Category = *req.Category
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Role != nil {
		role := domain.AccountRole(*req.Role)
		if *req.Role == "NONE" {
			role = domain.RoleNone
		}
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: invalid account role %q", apperrors.ErrValidation, *req.Role)
		}
		if role != account.Role && (role == domain.RoleCash || account.Role == domain.RoleCash) {
			// Cash classification is stored on entries when they are posted.
			lines, err := s.accountRepo.CountLinesForAccount(ctx, code)
			if err != nil {
				s.LogError(ctx, err, "Failed to count lines for account", slog.String("account_code", code))
				return nil, err
			}
			if lines > 0 {
				return nil, fmt.Errorf("%w: account %s is referenced by %d ledger lines; its cash role cannot change", apperrors.ErrConflict, code, lines)
			}
		}
		updated.Role = role
	}
	if req.Type != nil && domain.AccountType(*req.Type) != account.Type {
		newType := domain.AccountType(*req.Type)
		if !newType.IsValid() {
			return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, *req.Type)
		}
		lines, err := s.accountRepo.CountLinesForAccount(ctx, code)
		if err != nil {
			s.LogError(ctx, err, "Failed to count lines for account", slog.String("account_code", code))
			return nil, err
		}
		if lines > 0 {
			return nil, fmt.Errorf("%w: account %s is referenced by %d ledger lines; its type cannot change", apperrors.ErrConflict, code, lines)
		}
		chart, err := s.GetChart(ctx)
		if err != nil {
			return nil, err
		}
		if children := chart.Children(code, true); len(children) > 0 {
			return nil, fmt.Errorf("%w: account %s has %d child accounts of type %s; retype them first", apperrors.ErrConflict, code, len(children), account.Type)
		}
		if account.ParentCode == "" && req.ParentCode == nil {
			if p := chart.Parent(code); p != "" {
				return nil, fmt.Errorf("%w: account %s rolls up into %s by code prefix; its type must stay %s", apperrors.ErrValidation, code, p, account.Type)
			}
		}
		updated.Type = newType
	}
	if req.ParentCode != nil {
		updated.ParentCode = strings.TrimSpace(*req.ParentCode)
	}
	if updated.ParentCode != "" && (updated.ParentCode != account.ParentCode || updated.Type != account.Type) {
		if updated.ParentCode == code {
			return nil, fmt.Errorf("%w: account cannot be its own parent", apperrors.ErrValidation)
		}
		if err := s.validateParent(ctx, updated.ParentCode, updated.Type); err != nil {
			return nil, err
		}
		chart, err := s.GetChart(ctx)
		if err != nil {
			return nil, err
		}
		if chart.WouldCycle(code, updated.ParentCode) {
			return nil, fmt.Errorf("%w: setting parent %s on %s would create a cycle", apperrors.ErrValidation, updated.ParentCode, code)
		}
	}

	updated.LastUpdatedAt = s.now().UTC()
	updated.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, updated); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_code", code))
		return nil, err
	}
	s.chartChanged()

	s.LogInfo(ctx, "Account updated", slog.String("account_code", code))
	return &updated, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, code string, userID string) error {
	account, err := s.GetAccount(ctx, code)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return nil
	}
	account.IsActive = false
	account.LastUpdatedAt = s.now().UTC()
	account.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_code", code))
		return err
	}
	s.chartChanged()

	s.LogInfo(ctx, "Account deactivated", slog.String("account_code", code))
	return nil
}

func (s *accountService) ImportAccounts(ctx context.Context, accounts []domain.Account, userID string) (int, error) {
	created := 0
	var inactive []string
	for _, acct := range chartfile.SortParentsFirst(accounts) {
		_, err := s.accountRepo.FindAccountByCode(ctx, acct.Code)
		if err == nil {
			s.LogDebug(ctx, "Skipping existing account", slog.String("account_code", acct.Code))
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return created, err
		}

		_, err = s.CreateAccount(ctx, dto.CreateAccountRequest{
			Code:        acct.Code,
			Name:        acct.Name,
			Type:        string(acct.Type),
			Category:    acct.Category,
			ParentCode:  acct.ParentCode,
			Role:        string(acct.Role),
			Description: acct.Description,
		}, userID)
		if err != nil {
			return created, fmt.Errorf("failed to import account %s: %w", acct.Code, err)
		}
		if !acct.IsActive {
			inactive = append(inactive, acct.Code)
		}
		created++
	}
	// Deactivate last so inactive parents still accept their children.
	for _, code := range inactive {
		if err := s.DeactivateAccount(ctx, code, userID); err != nil {
			return created, err
		}
	}
	s.LogInfo(ctx, "Chart import finished", slog.Int("created", created), slog.Int("total", len(accounts)))
	return created, nil
}

func (s *accountService) BackfillParentsFromPrefix(ctx context.Context, apply bool, userID string) ([]domain.ParentChange, error) {
	chart, err := loadChart(ctx, s.accountRepo, true)
	if err != nil {
		return nil, err
	}
	changes := chart.PrefixBackfill()
	if !apply || len(changes) == 0 {
		return changes, nil
	}
	if err := s.accountRepo.SetParentCodes(ctx, changes, userID); err != nil {
		s.LogError(ctx, err, "Failed to apply parent backfill", slog.Int("changes", len(changes)))
		return nil, err
	}
	s.chartChanged()

	s.LogInfo(ctx, "Parent codes backfilled from prefix convention", slog.Int("changes", len(changes)))
	return changes, nil
}
