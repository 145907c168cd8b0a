package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DREService manages the shared income statement template, the per-company
// component selection, and builds the trailing-twelve-month statement.
type DREService interface {
	ListPrincipals(ctx context.Context) ([]PrincipalAccount, error)
	CreatePrincipal(ctx context.Context, a PrincipalAccount) (*PrincipalAccount, error)
	UpdatePrincipal(ctx context.Context, a PrincipalAccount) (*PrincipalAccount, error)
	DeletePrincipal(ctx context.Context, id string) error

	ListSecondaries(ctx context.Context, principalID string) ([]SecondaryAccount, error)
	CreateSecondary(ctx context.Context, a SecondaryAccount) (*SecondaryAccount, error)
	UpdateSecondary(ctx context.Context, a SecondaryAccount) (*SecondaryAccount, error)
	DeleteSecondary(ctx context.Context, id string) error

	ListComponents(ctx context.Context, principalID string) ([]StatementComponent, error)
	CreateComponent(ctx context.Context, c StatementComponent) (*StatementComponent, error)
	UpdateComponent(ctx context.Context, c StatementComponent) (*StatementComponent, error)
	DeleteComponent(ctx context.Context, id string) error

	ListSelections(ctx context.Context, companyID string) ([]CompanySelection, error)
	SetSelection(ctx context.Context, companyID, componentID string, active bool) error

	BuildStatement(ctx context.Context, companyID, month string, year int) (*Statement, error)
	PrincipalValue(ctx context.Context, companyID, principalID string, p Period) (decimal.Decimal, error)
}

type dreService struct {
	pool     *pgxpool.Pool
	rawData  RawDataService
	resolver *Resolver
	logger   *logrus.Logger
}

// NewDREService constructs a DREService. The resolver evaluates indicator
// components; rawData supplies the per-period category sums.
func NewDREService(pool *pgxpool.Pool, rawData RawDataService, resolver *Resolver, logger *logrus.Logger) DREService {
	return &dreService{pool: pool, rawData: rawData, resolver: resolver, logger: logger}
}

// ── Principal accounts ──────────────────────────────────────────────

func (s *dreService) ListPrincipals(ctx context.Context) ([]PrincipalAccount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, nome, tipo, simbolo, ordem_padrao, visivel
		FROM contas_dre_modelo
		ORDER BY ordem_padrao
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list principal accounts: %w", err)
	}
	defer rows.Close()

	var out []PrincipalAccount
	for rows.Next() {
		var a PrincipalAccount
		if err := rows.Scan(&a.ID, &a.Name, &a.Kind, &a.Symbol, &a.DefaultOrder, &a.Visible); err != nil {
			return nil, fmt.Errorf("failed to scan principal account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *dreService) CreatePrincipal(ctx context.Context, a PrincipalAccount) (*PrincipalAccount, error) {
	if err := validateAccountKind(a.Kind); err != nil {
		return nil, err
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO contas_dre_modelo (nome, tipo, simbolo, ordem_padrao, visivel)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, a.Name, a.Kind, a.Symbol, a.DefaultOrder, a.Visible).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert principal account: %w", err)
	}
	return &a, nil
}

func (s *dreService) UpdatePrincipal(ctx context.Context, a PrincipalAccount) (*PrincipalAccount, error) {
	if err := validateAccountKind(a.Kind); err != nil {
		return nil, err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE contas_dre_modelo
		SET nome = $2, tipo = $3, simbolo = $4, ordem_padrao = $5, visivel = $6
		WHERE id = $1
	`, a.ID, a.Name, a.Kind, a.Symbol, a.DefaultOrder, a.Visible)
	if err != nil {
		return nil, fmt.Errorf("failed to update principal account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("principal account %s: %w", a.ID, ErrNotFound)
	}
	return &a, nil
}

func (s *dreService) DeletePrincipal(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM contas_dre_modelo WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete principal account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("principal account %s: %w", id, ErrNotFound)
	}
	return nil
}

// ── Secondary accounts ──────────────────────────────────────────────

func (s *dreService) ListSecondaries(ctx context.Context, principalID string) ([]SecondaryAccount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, dre_conta_principal_id, nome, ordem
		FROM dre_contas_secundarias
		WHERE dre_conta_principal_id = $1
		ORDER BY ordem
	`, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list secondary accounts: %w", err)
	}
	defer rows.Close()

	var out []SecondaryAccount
	for rows.Next() {
		var a SecondaryAccount
		if err := rows.Scan(&a.ID, &a.PrincipalID, &a.Name, &a.Order); err != nil {
			return nil, fmt.Errorf("failed to scan secondary account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *dreService) CreateSecondary(ctx context.Context, a SecondaryAccount) (*SecondaryAccount, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO dre_contas_secundarias (dre_conta_principal_id, nome, ordem)
		VALUES ($1, $2, $3)
		RETURNING id
	`, a.PrincipalID, a.Name, a.Order).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert secondary account: %w", err)
	}
	return &a, nil
}

func (s *dreService) UpdateSecondary(ctx context.Context, a SecondaryAccount) (*SecondaryAccount, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE dre_contas_secundarias SET nome = $2, ordem = $3 WHERE id = $1
	`, a.ID, a.Name, a.Order)
	if err != nil {
		return nil, fmt.Errorf("failed to update secondary account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("secondary account %s: %w", a.ID, ErrNotFound)
	}
	return &a, nil
}

func (s *dreService) DeleteSecondary(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM dre_contas_secundarias WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete secondary account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("secondary account %s: %w", id, ErrNotFound)
	}
	return nil
}

// ── Components ──────────────────────────────────────────────────────

func (s *dreService) ListComponents(ctx context.Context, principalID string) ([]StatementComponent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, conta_dre_modelo_id, dre_conta_secundaria_id, referencia_tipo,
		       referencia_id, peso, ordem, nome_exibicao
		FROM contas_dre_componentes
		WHERE conta_dre_modelo_id = $1
		ORDER BY ordem
	`, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statement components: %w", err)
	}
	defer rows.Close()

	var out []StatementComponent
	for rows.Next() {
		var c StatementComponent
		if err := rows.Scan(&c.ID, &c.PrincipalID, &c.SecondaryID, &c.RefKind, &c.RefID, &c.Weight, &c.Order, &c.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan statement component: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *dreService) CreateComponent(ctx context.Context, c StatementComponent) (*StatementComponent, error) {
	if err := validateComponent(c); err != nil {
		return nil, err
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO contas_dre_componentes
			(conta_dre_modelo_id, dre_conta_secundaria_id, referencia_tipo, referencia_id, peso, ordem, nome_exibicao)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, c.PrincipalID, c.SecondaryID, c.RefKind, c.RefID, c.Weight, c.Order, c.DisplayName).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert statement component: %w", err)
	}
	return &c, nil
}

func (s *dreService) UpdateComponent(ctx context.Context, c StatementComponent) (*StatementComponent, error) {
	if err := validateComponent(c); err != nil {
		return nil, err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE contas_dre_componentes
		SET conta_dre_modelo_id = $2, dre_conta_secundaria_id = $3, referencia_tipo = $4,
		    referencia_id = $5, peso = $6, ordem = $7, nome_exibicao = $8
		WHERE id = $1
	`, c.ID, c.PrincipalID, c.SecondaryID, c.RefKind, c.RefID, c.Weight, c.Order, c.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("failed to update statement component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("statement component %s: %w", c.ID, ErrNotFound)
	}
	return &c, nil
}

func (s *dreService) DeleteComponent(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM contas_dre_componentes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete statement component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("statement component %s: %w", id, ErrNotFound)
	}
	return nil
}

// ── Per-company selection ───────────────────────────────────────────

func (s *dreService) ListSelections(ctx context.Context, companyID string) ([]CompanySelection, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, empresa_id, componente_id, is_active
		FROM dre_empresa_componentes
		WHERE empresa_id = $1
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company selections: %w", err)
	}
	defer rows.Close()

	var out []CompanySelection
	for rows.Next() {
		var sel CompanySelection
		if err := rows.Scan(&sel.ID, &sel.CompanyID, &sel.ComponentID, &sel.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan company selection: %w", err)
		}
		out = append(out, sel)
	}
	return out, rows.Err()
}

func (s *dreService) SetSelection(ctx context.Context, companyID, componentID string, active bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO dre_empresa_componentes (empresa_id, componente_id, is_active)
		VALUES ($1, $2, $3)
		ON CONFLICT (empresa_id, componente_id) DO UPDATE SET is_active = EXCLUDED.is_active
	`, companyID, componentID, active)
	if err != nil {
		return fmt.Errorf("failed to set component selection: %w", err)
	}
	return nil
}

func validateAccountKind(k AccountKind) error {
	switch k {
	case AccountSimple, AccountComposite, AccountFormula, AccountIndicator, AccountIndicatorSum:
		return nil
	}
	return fmt.Errorf("%w: unknown account kind %q", ErrInvalidArgument, k)
}

func validateComponent(c StatementComponent) error {
	if c.RefKind != RefCategory && c.RefKind != RefIndicator {
		return fmt.Errorf("%w: unknown reference kind %q", ErrInvalidArgument, c.RefKind)
	}
	if c.RefID == "" {
		return fmt.Errorf("%w: component requires a reference id", ErrInvalidArgument)
	}
	if c.Weight.IsZero() {
		return fmt.Errorf("%w: component weight must be non-zero", ErrInvalidArgument)
	}
	return nil
}

// statementRow is one active selection with everything needed to place and
// evaluate the component, as returned by the single selection join.
type statementRow struct {
	Component StatementComponent
	RefName   string
	Principal PrincipalAccount
	Secondary *SecondaryAccount
}

// activeComponents fetches the company's active, visible selections in one
// query. A failure here is a hard error; no partial statement is built.
func (s *dreService) activeComponents(ctx context.Context, companyID string) ([]statementRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT comp.id, comp.conta_dre_modelo_id, comp.dre_conta_secundaria_id,
		       comp.referencia_tipo, comp.referencia_id, comp.peso, comp.ordem,
		       comp.nome_exibicao,
		       COALESCE(cat.name, ind.name, ''),
		       p.id, p.nome, p.tipo, p.simbolo, p.ordem_padrao, p.visivel,
		       sec.id, sec.nome, sec.ordem
		FROM dre_empresa_componentes sel
		JOIN contas_dre_componentes comp ON comp.id = sel.componente_id
		JOIN contas_dre_modelo p ON p.id = comp.conta_dre_modelo_id
		LEFT JOIN dre_contas_secundarias sec ON sec.id = comp.dre_conta_secundaria_id
		LEFT JOIN categories cat ON comp.referencia_tipo = 'category' AND cat.id = comp.referencia_id
		LEFT JOIN indicators ind ON comp.referencia_tipo = 'indicator' AND ind.id = comp.referencia_id
		WHERE sel.empresa_id = $1 AND sel.is_active = true AND p.visivel = true
		ORDER BY p.ordem_padrao, sec.ordem NULLS FIRST, comp.ordem
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statement configuration: %w", err)
	}
	defer rows.Close()

	var out []statementRow
	for rows.Next() {
		var r statementRow
		var secID, secName *string
		var secOrder *int
		err := rows.Scan(
			&r.Component.ID, &r.Component.PrincipalID, &r.Component.SecondaryID,
			&r.Component.RefKind, &r.Component.RefID, &r.Component.Weight, &r.Component.Order,
			&r.Component.DisplayName,
			&r.RefName,
			&r.Principal.ID, &r.Principal.Name, &r.Principal.Kind, &r.Principal.Symbol,
			&r.Principal.DefaultOrder, &r.Principal.Visible,
			&secID, &secName, &secOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement configuration row: %w", err)
		}
		if secID != nil {
			r.Secondary = &SecondaryAccount{ID: *secID, PrincipalID: r.Principal.ID, Name: *secName, Order: *secOrder}
		}
		if r.Component.DisplayName != nil && *r.Component.DisplayName != "" {
			r.RefName = *r.Component.DisplayName
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("statement configuration iteration error: %w", err)
	}
	return out, nil
}
