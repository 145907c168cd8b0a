package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// StatementValue is one period cell of a statement line.
type StatementValue struct {
	Period    Period          `json:"period"`
	Amount    decimal.Decimal `json:"amount"`
	Favorable bool            `json:"favorable"`
}

// StatementTotal is a line's grand total across the twelve periods.
type StatementTotal struct {
	Amount    decimal.Decimal `json:"amount"`
	Favorable bool            `json:"favorable"`
}

// ComponentLine is one evaluated component on the statement.
type ComponentLine struct {
	ComponentID string           `json:"component_id"`
	Name        string           `json:"name"`
	RefKind     ReferenceKind    `json:"reference_kind"`
	RefID       string           `json:"reference_id"`
	Weight      decimal.Decimal  `json:"weight"`
	Order       int              `json:"order"`
	Values      []StatementValue `json:"values"`
	Total       StatementTotal   `json:"total"`
}

// SecondaryLine groups components under an optional sub-heading.
type SecondaryLine struct {
	SecondaryID string           `json:"secondary_id"`
	Name        string           `json:"name"`
	Order       int              `json:"order"`
	Components  []ComponentLine  `json:"components"`
	Values      []StatementValue `json:"values"`
	Total       StatementTotal   `json:"total"`
}

// PrincipalLine is one top-level statement line. Its period values are the
// sum of its direct components and its secondary groups.
type PrincipalLine struct {
	PrincipalID string           `json:"principal_id"`
	Name        string           `json:"name"`
	Kind        AccountKind      `json:"kind"`
	Symbol      *string          `json:"symbol,omitempty"`
	Order       int              `json:"order"`
	Components  []ComponentLine  `json:"components"`
	Secondaries []SecondaryLine  `json:"secondaries"`
	Values      []StatementValue `json:"values"`
	Total       StatementTotal   `json:"total"`
}

// Statement is the trailing-twelve-month income statement for one company.
type Statement struct {
	CompanyID string          `json:"company_id"`
	Periods   []Period        `json:"periods"`
	Lines     []PrincipalLine `json:"lines"`
}

// ComponentValues pairs one selected component with its resolved amount per
// period, weight already applied. The assembly step is pure over these.
type ComponentValues struct {
	Component StatementComponent
	RefName   string
	Principal PrincipalAccount
	Secondary *SecondaryAccount
	Values    []decimal.Decimal
}

// BuildStatement evaluates the company's active statement configuration over
// the twelve periods ending at (month, year). The configuration is fetched in
// one query and any failure there aborts the build. Period evaluation runs
// concurrently, one goroutine per period, each fetching the period's raw rows
// once and fanning them out over the category components in memory.
func (s *dreService) BuildStatement(ctx context.Context, companyID, month string, year int) (*Statement, error) {
	periods, err := LastTwelveMonths(month, year)
	if err != nil {
		return nil, err
	}
	rows, err := s.activeComponents(ctx, companyID)
	if err != nil {
		return nil, err
	}

	values := make([][]decimal.Decimal, len(rows))
	for i := range values {
		values[i] = make([]decimal.Decimal, len(periods))
	}

	g, gctx := errgroup.WithContext(ctx)
	for pi, p := range periods {
		g.Go(func() error {
			sums, err := s.categorySums(gctx, companyID, p)
			if err != nil {
				return err
			}
			for ci, row := range rows {
				v, err := s.componentValue(gctx, companyID, row, p, sums)
				if err != nil {
					return err
				}
				values[ci][pi] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to evaluate statement periods: %w", err)
	}

	comps := make([]ComponentValues, len(rows))
	for i, row := range rows {
		comps[i] = ComponentValues{
			Component: row.Component,
			RefName:   row.RefName,
			Principal: row.Principal,
			Secondary: row.Secondary,
			Values:    values[i],
		}
	}
	return &Statement{
		CompanyID: companyID,
		Periods:   periods,
		Lines:     AssembleStatement(periods, comps),
	}, nil
}

// PrincipalValue evaluates one principal account for a single period, summing
// the company's active components under it. The dashboard builder uses this
// for dre_account widgets.
func (s *dreService) PrincipalValue(ctx context.Context, companyID, principalID string, p Period) (decimal.Decimal, error) {
	rows, err := s.activeComponents(ctx, companyID)
	if err != nil {
		return decimal.Zero, err
	}
	sums, err := s.categorySums(ctx, companyID, p)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, row := range rows {
		if row.Principal.ID != principalID {
			continue
		}
		v, err := s.componentValue(ctx, companyID, row, p, sums)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v)
	}
	return total, nil
}

// categorySums fetches one period's raw rows and folds them into signed sums
// per category.
func (s *dreService) categorySums(ctx context.Context, companyID string, p Period) (map[string]decimal.Decimal, error) {
	raw, err := s.rawData.PeriodRows(ctx, companyID, p)
	if err != nil {
		return nil, err
	}
	sums := make(map[string]decimal.Decimal)
	for _, r := range raw {
		if r.CategoryID == nil {
			continue
		}
		sums[*r.CategoryID] = sums[*r.CategoryID].Add(r.SignedAmount())
	}
	return sums, nil
}

func (s *dreService) componentValue(ctx context.Context, companyID string, row statementRow, p Period, sums map[string]decimal.Decimal) (decimal.Decimal, error) {
	switch row.Component.RefKind {
	case RefCategory:
		return sums[row.Component.RefID].Mul(row.Component.Weight), nil
	case RefIndicator:
		v, err := s.resolver.Resolve(ctx, companyID, row.Component.RefID, p, nil)
		if err != nil {
			return decimal.Zero, err
		}
		return v.Mul(row.Component.Weight), nil
	}
	return decimal.Zero, fmt.Errorf("%w: unknown reference kind %q", ErrInvalidArgument, row.Component.RefKind)
}

// AssembleStatement groups evaluated components into the principal and
// secondary line hierarchy and computes per-period and grand totals. It is
// pure: order of output lines follows the accounts' configured orders, not
// the input order.
func AssembleStatement(periods []Period, comps []ComponentValues) []PrincipalLine {
	byPrincipal := make(map[string][]ComponentValues)
	principals := make(map[string]PrincipalAccount)
	for _, c := range comps {
		byPrincipal[c.Principal.ID] = append(byPrincipal[c.Principal.ID], c)
		principals[c.Principal.ID] = c.Principal
	}

	lines := make([]PrincipalLine, 0, len(byPrincipal))
	for id, group := range byPrincipal {
		p := principals[id]
		line := PrincipalLine{
			PrincipalID: p.ID,
			Name:        p.Name,
			Kind:        p.Kind,
			Symbol:      p.Symbol,
			Order:       p.DefaultOrder,
		}

		secondaries := make(map[string]*SecondaryLine)
		totals := make([]decimal.Decimal, len(periods))
		for _, c := range group {
			cl := componentLine(periods, c, p.Symbol)
			for i := range periods {
				totals[i] = totals[i].Add(c.Values[i])
			}
			if c.Secondary == nil {
				line.Components = append(line.Components, cl)
				continue
			}
			sec, ok := secondaries[c.Secondary.ID]
			if !ok {
				sec = &SecondaryLine{
					SecondaryID: c.Secondary.ID,
					Name:        c.Secondary.Name,
					Order:       c.Secondary.Order,
				}
				secondaries[c.Secondary.ID] = sec
			}
			sec.Components = append(sec.Components, cl)
		}

		for _, sec := range secondaries {
			secTotals := make([]decimal.Decimal, len(periods))
			for _, cl := range sec.Components {
				for i, v := range cl.Values {
					secTotals[i] = secTotals[i].Add(v.Amount)
				}
			}
			sec.Values = statementValues(periods, secTotals, p.Symbol)
			sec.Total = statementTotal(secTotals, p.Symbol)
			line.Secondaries = append(line.Secondaries, *sec)
		}
		sort.Slice(line.Secondaries, func(i, j int) bool {
			return line.Secondaries[i].Order < line.Secondaries[j].Order
		})
		sort.Slice(line.Components, func(i, j int) bool {
			return line.Components[i].Order < line.Components[j].Order
		})

		line.Values = statementValues(periods, totals, p.Symbol)
		line.Total = statementTotal(totals, p.Symbol)
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Order != lines[j].Order {
			return lines[i].Order < lines[j].Order
		}
		return lines[i].Name < lines[j].Name
	})
	return lines
}

func componentLine(periods []Period, c ComponentValues, symbol *string) ComponentLine {
	return ComponentLine{
		ComponentID: c.Component.ID,
		Name:        c.RefName,
		RefKind:     c.Component.RefKind,
		RefID:       c.Component.RefID,
		Weight:      c.Component.Weight,
		Order:       c.Component.Order,
		Values:      statementValues(periods, c.Values, symbol),
		Total:       statementTotal(c.Values, symbol),
	}
}

func statementValues(periods []Period, amounts []decimal.Decimal, symbol *string) []StatementValue {
	out := make([]StatementValue, len(periods))
	for i, p := range periods {
		out[i] = StatementValue{Period: p, Amount: amounts[i], Favorable: favorable(symbol, amounts[i])}
	}
	return out
}

func statementTotal(amounts []decimal.Decimal, symbol *string) StatementTotal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return StatementTotal{Amount: total, Favorable: favorable(symbol, total)}
}

// favorable tells whether an amount reads as good news for a line. Lines
// marked "-" carry costs, so non-positive is favorable; everything else
// wants non-negative.
func favorable(symbol *string, amount decimal.Decimal) bool {
	if symbol != nil && *symbol == "-" {
		return !amount.IsPositive()
	}
	return !amount.IsNegative()
}
