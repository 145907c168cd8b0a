package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type CategoryKind string

const (
	CategoryRevenue CategoryKind = "revenue"
	CategoryExpense CategoryKind = "expense"
)

type Company struct {
	ID          string    `json:"id"`
	LegalName   string    `json:"legal_name"`
	TradingName string    `json:"trading_name"`
	TaxID       string    `json:"tax_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoryGroup struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Kind CategoryKind `json:"kind"`
}

type Category struct {
	ID      string       `json:"id"`
	Code    string       `json:"code"`
	Name    string       `json:"name"`
	Kind    CategoryKind `json:"kind"`
	GroupID *string      `json:"group_id,omitempty"`
}

// CompanyCategory activates a shared category for one company.
type CompanyCategory struct {
	ID         string `json:"id"`
	CompanyID  string `json:"company_id"`
	CategoryID string `json:"category_id"`
	IsActive   bool   `json:"is_active"`
}

type IndicatorKind string

const (
	IndicatorManual     IndicatorKind = "manual"
	IndicatorCalculated IndicatorKind = "calculated"
)

type CalculationType string

const (
	CalcFromCategories CalculationType = "category"
	CalcFromIndicators CalculationType = "indicator"
)

type Operation string

const (
	OpSum      Operation = "sum"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
)

// Indicator is a named financial metric. Manual indicators hold their values
// as raw data rows; calculated indicators fold their ordered sources with a
// single binary operation, left to right.
type Indicator struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Kind      IndicatorKind   `json:"kind"`
	CalcType  CalculationType `json:"calc_type,omitempty"`
	Operation Operation       `json:"operation,omitempty"`
	SourceIDs []string        `json:"source_ids"`
	IsActive  bool            `json:"is_active"`
}

type CompanyIndicator struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	IndicatorID string `json:"indicator_id"`
	IsActive    bool   `json:"is_active"`
}

// RawDataPoint is one fact row in dados_brutos. Exactly one of
// CategoryID/IndicatorID is set. Amounts are stored as positive magnitudes;
// the expense sign convention is applied at read time.
type RawDataPoint struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	Year        int             `json:"year"`
	Month       string          `json:"month"`
	CategoryID  *string         `json:"category_id,omitempty"`
	IndicatorID *string         `json:"indicator_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

type AccountKind string

const (
	AccountSimple       AccountKind = "simple"
	AccountComposite    AccountKind = "composite"
	AccountFormula      AccountKind = "formula"
	AccountIndicator    AccountKind = "indicator"
	AccountIndicatorSum AccountKind = "indicator_sum"
)

// PrincipalAccount is a top-level line of the shared income statement template.
type PrincipalAccount struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Kind         AccountKind `json:"kind"`
	Symbol       *string     `json:"symbol,omitempty"` // "+", "-", "=" or null
	DefaultOrder int         `json:"default_order"`
	Visible      bool        `json:"visible"`
}

// SecondaryAccount is an optional sub-grouping under a principal account.
type SecondaryAccount struct {
	ID          string `json:"id"`
	PrincipalID string `json:"principal_id"`
	Name        string `json:"name"`
	Order       int    `json:"order"`
}

type ReferenceKind string

const (
	RefCategory  ReferenceKind = "category"
	RefIndicator ReferenceKind = "indicator"
	// RefDREAccount is only valid in dashboard linked data, where a chart or
	// top-list series may track a principal statement line.
	RefDREAccount ReferenceKind = "dre_account"
)

// StatementComponent maps a template line to a category or indicator,
// contributing its value times Weight. DisplayName, when set, overrides the
// referenced entity's name on the rendered statement.
type StatementComponent struct {
	ID          string          `json:"id"`
	PrincipalID string          `json:"principal_id"`
	SecondaryID *string         `json:"secondary_id,omitempty"`
	RefKind     ReferenceKind   `json:"reference_kind"`
	RefID       string          `json:"reference_id"`
	Weight      decimal.Decimal `json:"weight"`
	Order       int             `json:"order"`
	DisplayName *string         `json:"display_name,omitempty"`
}

// CompanySelection records that a company opted into one template component.
type CompanySelection struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	ComponentID string `json:"component_id"`
	IsActive    bool   `json:"is_active"`
}

type ItemKind string

const (
	ItemCategory   ItemKind = "category"
	ItemIndicator  ItemKind = "indicator"
	ItemDREAccount ItemKind = "dre_account"
	ItemCustomSum  ItemKind = "custom_sum"
	ItemChart      ItemKind = "chart"
	ItemTopList    ItemKind = "top_list"
)

type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
)

// LinkedRef names one series of a chart or top-list widget.
type LinkedRef struct {
	ID   string        `json:"id"`
	Kind ReferenceKind `json:"kind"`
	Name string        `json:"name"`
}

// DashboardItem configures one visual widget for a company.
type DashboardItem struct {
	ID           string      `json:"id"`
	CompanyID    string      `json:"company_id"`
	Order        int         `json:"order"`
	Title        string      `json:"title"`
	Kind         ItemKind    `json:"kind"`
	ReferenceIDs []string    `json:"reference_ids"`
	Color        string      `json:"color"`
	ChartKind    *ChartKind  `json:"chart_kind,omitempty"`
	LinkedData   []LinkedRef `json:"linked_data,omitempty"`
	TopLimit     *int        `json:"top_limit,omitempty"`
	IsActive     bool        `json:"is_active"`
}

// User is a system user. A user either sees every company
// (HasAllCompanies) or is pinned to exactly one CompanyID.
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            string    `json:"role"`
	CompanyID       *string   `json:"company_id,omitempty"`
	HasAllCompanies bool      `json:"has_all_companies_access"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

type UserPermission struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
}
