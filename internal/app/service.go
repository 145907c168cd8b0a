package app

import (
	"context"
	"io"

	"finboard/internal/core"
)

// UserSession is the authenticated identity handed to adapters after login.
type UserSession struct {
	UserID          string  `json:"user_id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	CompanyID       *string `json:"company_id,omitempty"`
	HasAllCompanies bool    `json:"has_all_companies_access"`
}

// ApplicationService is the single interface all adapters call. It decouples
// presentation from business logic; implementations contain no HTTP or
// display concerns.
type ApplicationService interface {
	// ── Companies ─────────────────────────────────────────────────────

	// ListCompaniesFor returns the active companies the user may select:
	// all of them for all-companies users, otherwise just the pinned one.
	ListCompaniesFor(ctx context.Context, userID string) ([]core.Company, error)
	GetCompany(ctx context.Context, id string) (*core.Company, error)
	CreateCompany(ctx context.Context, c core.Company) (*core.Company, error)
	UpdateCompany(ctx context.Context, c core.Company) (*core.Company, error)
	DeleteCompany(ctx context.Context, id string) error

	// ── Category catalog ──────────────────────────────────────────────

	ListCategories(ctx context.Context) ([]core.Category, error)
	ListCompanyCategories(ctx context.Context, companyID string) ([]core.Category, error)
	CreateCategory(ctx context.Context, cat core.Category) (*core.Category, error)
	UpdateCategory(ctx context.Context, cat core.Category) (*core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	SetCategoryActivation(ctx context.Context, companyID, categoryID string, active bool) error

	ListCategoryGroups(ctx context.Context) ([]core.CategoryGroup, error)
	CreateCategoryGroup(ctx context.Context, g core.CategoryGroup) (*core.CategoryGroup, error)
	UpdateCategoryGroup(ctx context.Context, g core.CategoryGroup) (*core.CategoryGroup, error)
	DeleteCategoryGroup(ctx context.Context, id string) error

	// ── Indicators ────────────────────────────────────────────────────

	ListIndicators(ctx context.Context) ([]core.Indicator, error)
	ListCompanyIndicators(ctx context.Context, companyID string) ([]core.Indicator, error)
	CreateIndicator(ctx context.Context, ind core.Indicator) (*core.Indicator, error)
	UpdateIndicator(ctx context.Context, ind core.Indicator) (*core.Indicator, error)
	DeleteIndicator(ctx context.Context, id string) error
	SetIndicatorActivation(ctx context.Context, companyID, indicatorID string, active bool) error

	// ── Raw data ──────────────────────────────────────────────────────

	ListRawData(ctx context.Context, companyID string, year int, month string) ([]core.RawDataPoint, error)
	CreateRawData(ctx context.Context, point core.RawDataPoint) (*core.RawDataPoint, error)
	UpdateRawData(ctx context.Context, id string, req UpdateRawDataRequest) (*core.RawDataPoint, error)
	DeleteRawData(ctx context.Context, id string) error

	// ProcessUpload ingests a spreadsheet of raw data rows. Row failures are
	// reported in the summary, never as a batch error.
	ProcessUpload(ctx context.Context, companyID string, year int, month, filename string, file io.Reader) (*core.UploadSummary, error)

	// ── Income statement template ─────────────────────────────────────

	ListPrincipalAccounts(ctx context.Context) ([]core.PrincipalAccount, error)
	CreatePrincipalAccount(ctx context.Context, a core.PrincipalAccount) (*core.PrincipalAccount, error)
	UpdatePrincipalAccount(ctx context.Context, a core.PrincipalAccount) (*core.PrincipalAccount, error)
	DeletePrincipalAccount(ctx context.Context, id string) error

	ListSecondaryAccounts(ctx context.Context, principalID string) ([]core.SecondaryAccount, error)
	CreateSecondaryAccount(ctx context.Context, a core.SecondaryAccount) (*core.SecondaryAccount, error)
	UpdateSecondaryAccount(ctx context.Context, a core.SecondaryAccount) (*core.SecondaryAccount, error)
	DeleteSecondaryAccount(ctx context.Context, id string) error

	ListStatementComponents(ctx context.Context, principalID string) ([]core.StatementComponent, error)
	CreateStatementComponent(ctx context.Context, c core.StatementComponent) (*core.StatementComponent, error)
	UpdateStatementComponent(ctx context.Context, c core.StatementComponent) (*core.StatementComponent, error)
	DeleteStatementComponent(ctx context.Context, id string) error

	ListStatementSelections(ctx context.Context, companyID string) ([]core.CompanySelection, error)
	SetStatementSelection(ctx context.Context, companyID, componentID string, active bool) error

	// BuildStatement renders the trailing-twelve-month income statement
	// ending at the reference month and year.
	BuildStatement(ctx context.Context, companyID, month string, year int) (*core.Statement, error)

	// ── Dashboard ─────────────────────────────────────────────────────

	ListDashboardItems(ctx context.Context, companyID string) ([]core.DashboardItem, error)
	CreateDashboardItem(ctx context.Context, item core.DashboardItem) (*core.DashboardItem, error)
	UpdateDashboardItem(ctx context.Context, item core.DashboardItem) (*core.DashboardItem, error)
	DeleteDashboardItem(ctx context.Context, id string) error

	// BuildDashboard renders every active widget for the reference period.
	BuildDashboard(ctx context.Context, companyID, month string, year int) (*core.Dashboard, error)

	// ── Users and auth ────────────────────────────────────────────────

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, email, password string) (*UserSession, error)
	GetUser(ctx context.Context, id string) (*core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*core.User, error)
	UpdateUser(ctx context.Context, u core.User) (*core.User, error)
	SetUserPassword(ctx context.Context, id, password string) error
	DeleteUser(ctx context.Context, id string) error
	GetUserPermissions(ctx context.Context, userID string) ([]string, error)
	SetUserPermissions(ctx context.Context, userID string, permissions []string) error

	// CanAccessCompany reports whether the user may operate on the company.
	CanAccessCompany(ctx context.Context, userID, companyID string) (bool, error)
}
