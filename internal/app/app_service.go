package app

import (
	"context"
	"fmt"
	"io"

	"finboard/internal/core"
)

// appService implements ApplicationService by delegating to the core
// services. It owns no state beyond the service handles.
type appService struct {
	companies  core.CompanyService
	categories core.CategoryService
	indicators core.IndicatorService
	rawData    core.RawDataService
	uploads    core.UploadService
	dre        core.DREService
	dashboards core.DashboardService
	users      core.UserService
}

// Services bundles the core services the application facade is built from.
type Services struct {
	Companies  core.CompanyService
	Categories core.CategoryService
	Indicators core.IndicatorService
	RawData    core.RawDataService
	Uploads    core.UploadService
	DRE        core.DREService
	Dashboards core.DashboardService
	Users      core.UserService
}

// NewApplicationService wires the facade over the given core services.
func NewApplicationService(s Services) ApplicationService {
	return &appService{
		companies:  s.Companies,
		categories: s.Categories,
		indicators: s.Indicators,
		rawData:    s.RawData,
		uploads:    s.Uploads,
		dre:        s.DRE,
		dashboards: s.Dashboards,
		users:      s.Users,
	}
}

// ── Companies ─────────────────────────────────────────────────────────

func (a *appService) ListCompaniesFor(ctx context.Context, userID string) ([]core.Company, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasAllCompanies {
		return a.companies.ListActive(ctx)
	}
	if user.CompanyID == nil {
		return []core.Company{}, nil
	}
	company, err := a.companies.Get(ctx, *user.CompanyID)
	if err != nil {
		return nil, err
	}
	if !company.IsActive {
		return []core.Company{}, nil
	}
	return []core.Company{*company}, nil
}

func (a *appService) GetCompany(ctx context.Context, id string) (*core.Company, error) {
	return a.companies.Get(ctx, id)
}

func (a *appService) CreateCompany(ctx context.Context, c core.Company) (*core.Company, error) {
	return a.companies.Create(ctx, c)
}

func (a *appService) UpdateCompany(ctx context.Context, c core.Company) (*core.Company, error) {
	return a.companies.Update(ctx, c)
}

func (a *appService) DeleteCompany(ctx context.Context, id string) error {
	return a.companies.Delete(ctx, id)
}

// ── Category catalog ──────────────────────────────────────────────────

func (a *appService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return a.categories.List(ctx)
}

func (a *appService) ListCompanyCategories(ctx context.Context, companyID string) ([]core.Category, error) {
	return a.categories.ListForCompany(ctx, companyID)
}

func (a *appService) CreateCategory(ctx context.Context, cat core.Category) (*core.Category, error) {
	return a.categories.Create(ctx, cat)
}

func (a *appService) UpdateCategory(ctx context.Context, cat core.Category) (*core.Category, error) {
	return a.categories.Update(ctx, cat)
}

func (a *appService) DeleteCategory(ctx context.Context, id string) error {
	return a.categories.Delete(ctx, id)
}

func (a *appService) SetCategoryActivation(ctx context.Context, companyID, categoryID string, active bool) error {
	return a.categories.SetCompanyActivation(ctx, companyID, categoryID, active)
}

func (a *appService) ListCategoryGroups(ctx context.Context) ([]core.CategoryGroup, error) {
	return a.categories.ListGroups(ctx)
}

func (a *appService) CreateCategoryGroup(ctx context.Context, g core.CategoryGroup) (*core.CategoryGroup, error) {
	return a.categories.CreateGroup(ctx, g)
}

func (a *appService) UpdateCategoryGroup(ctx context.Context, g core.CategoryGroup) (*core.CategoryGroup, error) {
	return a.categories.UpdateGroup(ctx, g)
}

func (a *appService) DeleteCategoryGroup(ctx context.Context, id string) error {
	return a.categories.DeleteGroup(ctx, id)
}

// ── Indicators ────────────────────────────────────────────────────────

func (a *appService) ListIndicators(ctx context.Context) ([]core.Indicator, error) {
	return a.indicators.List(ctx)
}

func (a *appService) ListCompanyIndicators(ctx context.Context, companyID string) ([]core.Indicator, error) {
	return a.indicators.ListForCompany(ctx, companyID)
}

func (a *appService) CreateIndicator(ctx context.Context, ind core.Indicator) (*core.Indicator, error) {
	return a.indicators.Create(ctx, ind)
}

func (a *appService) UpdateIndicator(ctx context.Context, ind core.Indicator) (*core.Indicator, error) {
	return a.indicators.Update(ctx, ind)
}

func (a *appService) DeleteIndicator(ctx context.Context, id string) error {
	return a.indicators.Delete(ctx, id)
}

func (a *appService) SetIndicatorActivation(ctx context.Context, companyID, indicatorID string, active bool) error {
	return a.indicators.SetCompanyActivation(ctx, companyID, indicatorID, active)
}

// ── Raw data ──────────────────────────────────────────────────────────

func (a *appService) ListRawData(ctx context.Context, companyID string, year int, month string) ([]core.RawDataPoint, error) {
	return a.rawData.List(ctx, companyID, year, month)
}

func (a *appService) CreateRawData(ctx context.Context, point core.RawDataPoint) (*core.RawDataPoint, error) {
	return a.rawData.Create(ctx, point)
}

func (a *appService) UpdateRawData(ctx context.Context, id string, req UpdateRawDataRequest) (*core.RawDataPoint, error) {
	return a.rawData.Update(ctx, id, req.Amount)
}

func (a *appService) DeleteRawData(ctx context.Context, id string) error {
	return a.rawData.Delete(ctx, id)
}

func (a *appService) ProcessUpload(ctx context.Context, companyID string, year int, month, filename string, file io.Reader) (*core.UploadSummary, error) {
	if _, err := a.companies.Get(ctx, companyID); err != nil {
		return nil, fmt.Errorf("upload target: %w", err)
	}
	return a.uploads.Process(ctx, companyID, year, month, filename, file)
}

// ── Income statement template ─────────────────────────────────────────

func (a *appService) ListPrincipalAccounts(ctx context.Context) ([]core.PrincipalAccount, error) {
	return a.dre.ListPrincipals(ctx)
}

func (a *appService) CreatePrincipalAccount(ctx context.Context, acc core.PrincipalAccount) (*core.PrincipalAccount, error) {
	return a.dre.CreatePrincipal(ctx, acc)
}

func (a *appService) UpdatePrincipalAccount(ctx context.Context, acc core.PrincipalAccount) (*core.PrincipalAccount, error) {
	return a.dre.UpdatePrincipal(ctx, acc)
}

func (a *appService) DeletePrincipalAccount(ctx context.Context, id string) error {
	return a.dre.DeletePrincipal(ctx, id)
}

func (a *appService) ListSecondaryAccounts(ctx context.Context, principalID string) ([]core.SecondaryAccount, error) {
	return a.dre.ListSecondaries(ctx, principalID)
}

func (a *appService) CreateSecondaryAccount(ctx context.Context, acc core.SecondaryAccount) (*core.SecondaryAccount, error) {
	return a.dre.CreateSecondary(ctx, acc)
}

func (a *appService) UpdateSecondaryAccount(ctx context.Context, acc core.SecondaryAccount) (*core.SecondaryAccount, error) {
	return a.dre.UpdateSecondary(ctx, acc)
}

func (a *appService) DeleteSecondaryAccount(ctx context.Context, id string) error {
	return a.dre.DeleteSecondary(ctx, id)
}

func (a *appService) ListStatementComponents(ctx context.Context, principalID string) ([]core.StatementComponent, error) {
	return a.dre.ListComponents(ctx, principalID)
}

func (a *appService) CreateStatementComponent(ctx context.Context, c core.StatementComponent) (*core.StatementComponent, error) {
	return a.dre.CreateComponent(ctx, c)
}

func (a *appService) UpdateStatementComponent(ctx context.Context, c core.StatementComponent) (*core.StatementComponent, error) {
	return a.dre.UpdateComponent(ctx, c)
}

func (a *appService) DeleteStatementComponent(ctx context.Context, id string) error {
	return a.dre.DeleteComponent(ctx, id)
}

func (a *appService) ListStatementSelections(ctx context.Context, companyID string) ([]core.CompanySelection, error) {
	return a.dre.ListSelections(ctx, companyID)
}

func (a *appService) SetStatementSelection(ctx context.Context, companyID, componentID string, active bool) error {
	return a.dre.SetSelection(ctx, companyID, componentID, active)
}

func (a *appService) BuildStatement(ctx context.Context, companyID, month string, year int) (*core.Statement, error) {
	return a.dre.BuildStatement(ctx, companyID, month, year)
}

// ── Dashboard ─────────────────────────────────────────────────────────

func (a *appService) ListDashboardItems(ctx context.Context, companyID string) ([]core.DashboardItem, error) {
	return a.dashboards.ListItems(ctx, companyID)
}

func (a *appService) CreateDashboardItem(ctx context.Context, item core.DashboardItem) (*core.DashboardItem, error) {
	return a.dashboards.CreateItem(ctx, item)
}

func (a *appService) UpdateDashboardItem(ctx context.Context, item core.DashboardItem) (*core.DashboardItem, error) {
	return a.dashboards.UpdateItem(ctx, item)
}

func (a *appService) DeleteDashboardItem(ctx context.Context, id string) error {
	return a.dashboards.DeleteItem(ctx, id)
}

func (a *appService) BuildDashboard(ctx context.Context, companyID, month string, year int) (*core.Dashboard, error) {
	return a.dashboards.BuildDashboard(ctx, companyID, month, year)
}

// ── Users and auth ────────────────────────────────────────────────────

func (a *appService) AuthenticateUser(ctx context.Context, email, password string) (*UserSession, error) {
	user, err := a.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{
		UserID:          user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		CompanyID:       user.CompanyID,
		HasAllCompanies: user.HasAllCompanies,
	}, nil
}

func (a *appService) GetUser(ctx context.Context, id string) (*core.User, error) {
	return a.users.GetByID(ctx, id)
}

func (a *appService) ListUsers(ctx context.Context) ([]core.User, error) {
	return a.users.List(ctx)
}

func (a *appService) CreateUser(ctx context.Context, req CreateUserRequest) (*core.User, error) {
	return a.users.Create(ctx, core.User{
		Name:            req.Name,
		Email:           req.Email,
		Role:            req.Role,
		CompanyID:       req.CompanyID,
		HasAllCompanies: req.HasAllCompanies,
		IsActive:        req.IsActive,
	}, req.Password)
}

func (a *appService) UpdateUser(ctx context.Context, u core.User) (*core.User, error) {
	return a.users.Update(ctx, u)
}

func (a *appService) SetUserPassword(ctx context.Context, id, password string) error {
	return a.users.SetPassword(ctx, id, password)
}

func (a *appService) DeleteUser(ctx context.Context, id string) error {
	return a.users.Delete(ctx, id)
}

func (a *appService) GetUserPermissions(ctx context.Context, userID string) ([]string, error) {
	return a.users.Permissions(ctx, userID)
}

func (a *appService) SetUserPermissions(ctx context.Context, userID string, permissions []string) error {
	return a.users.SetPermissions(ctx, userID, permissions)
}

func (a *appService) CanAccessCompany(ctx context.Context, userID, companyID string) (bool, error) {
	return a.users.CanAccessCompany(ctx, userID, companyID)
}
