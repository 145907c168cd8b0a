package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DashboardCard is a single-value widget with its month-over-month variation.
type DashboardCard struct {
	ItemID    string          `json:"item_id"`
	Title     string          `json:"title"`
	Kind      ItemKind        `json:"kind"`
	Color     string          `json:"color"`
	Order     int             `json:"order"`
	Current   decimal.Decimal `json:"current"`
	Previous  decimal.Decimal `json:"previous"`
	Variation string          `json:"variation"`
	Positive  bool            `json:"positive"`
}

// ChartPoint is one period of a chart series.
type ChartPoint struct {
	Period Period          `json:"period"`
	Label  string          `json:"label"`
	Value  decimal.Decimal `json:"value"`
}

// ChartSeries is one linked entry plotted across the twelve periods.
type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
}

// DashboardChart is a chart widget with one series per linked entry.
type DashboardChart struct {
	ItemID    string        `json:"item_id"`
	Title     string        `json:"title"`
	ChartKind ChartKind     `json:"chart_kind"`
	Color     string        `json:"color"`
	Order     int           `json:"order"`
	Series    []ChartSeries `json:"series"`
}

// TopEntry is one ranked row of a top-list period.
type TopEntry struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// TopListPeriod ranks the linked entries for one period.
type TopListPeriod struct {
	Period  Period     `json:"period"`
	Label   string     `json:"label"`
	Entries []TopEntry `json:"entries"`
}

// DashboardTopList is a ranking widget across the twelve periods.
type DashboardTopList struct {
	ItemID  string          `json:"item_id"`
	Title   string          `json:"title"`
	Order   int             `json:"order"`
	Limit   int             `json:"limit"`
	Periods []TopListPeriod `json:"periods"`
}

// Dashboard is the rendered widget set for one company and reference period.
type Dashboard struct {
	CompanyID      string             `json:"company_id"`
	ReferenceMonth string             `json:"reference_month"`
	ReferenceYear  int                `json:"reference_year"`
	Cards          []DashboardCard    `json:"cards"`
	Charts         []DashboardChart   `json:"charts"`
	TopLists       []DashboardTopList `json:"top_lists"`
}

const defaultTopLimit = 5

// Variation formats the month-over-month change of a card to one decimal
// place. A zero previous value yields {"0", positive}; there is no baseline
// to compare against, and the widget renders it as flat-but-good.
func Variation(current, previous decimal.Decimal) (string, bool) {
	if previous.IsZero() {
		return "0", true
	}
	pct := current.Sub(previous).Abs().Div(previous).Mul(decimal.NewFromInt(100))
	return pct.StringFixed(1), current.GreaterThanOrEqual(previous)
}

// BuildDashboard renders every active widget for the company, ordered by the
// configured position. A failure loading the configuration aborts the build;
// a broken reference inside a widget degrades that value to zero with a
// warning so the rest of the dashboard still renders.
func (s *dashboardService) BuildDashboard(ctx context.Context, companyID, month string, year int) (*Dashboard, error) {
	periods, err := LastTwelveMonths(month, year)
	if err != nil {
		return nil, err
	}
	items, err := s.ListItems(ctx, companyID)
	if err != nil {
		return nil, err
	}

	current := periods[len(periods)-1]
	previous := periods[len(periods)-2]

	dash := &Dashboard{
		CompanyID:      companyID,
		ReferenceMonth: month,
		ReferenceYear:  year,
		Cards:          []DashboardCard{},
		Charts:         []DashboardChart{},
		TopLists:       []DashboardTopList{},
	}

	for _, item := range items {
		if !item.IsActive {
			continue
		}
		switch item.Kind {
		case ItemCategory, ItemIndicator, ItemDREAccount, ItemCustomSum:
			dash.Cards = append(dash.Cards, s.buildCard(ctx, companyID, item, current, previous))
		case ItemChart:
			chart, err := s.buildChart(ctx, companyID, item, periods)
			if err != nil {
				return nil, err
			}
			dash.Charts = append(dash.Charts, *chart)
		case ItemTopList:
			list, err := s.buildTopList(ctx, companyID, item, periods)
			if err != nil {
				return nil, err
			}
			dash.TopLists = append(dash.TopLists, *list)
		default:
			s.logger.WithFields(logrus.Fields{
				"item_id": item.ID,
				"kind":    item.Kind,
			}).Warn("skipping dashboard item of unknown kind")
		}
	}
	return dash, nil
}

func (s *dashboardService) buildCard(ctx context.Context, companyID string, item DashboardItem, current, previous Period) DashboardCard {
	cur := s.cardValue(ctx, companyID, item, current)
	prev := s.cardValue(ctx, companyID, item, previous)
	variation, positive := Variation(cur, prev)
	return DashboardCard{
		ItemID:    item.ID,
		Title:     item.Title,
		Kind:      item.Kind,
		Color:     item.Color,
		Order:     item.Order,
		Current:   cur,
		Previous:  prev,
		Variation: variation,
		Positive:  positive,
	}
}

// cardValue sums the widget's references for one period, degrading each
// broken reference to zero.
func (s *dashboardService) cardValue(ctx context.Context, companyID string, item DashboardItem, p Period) decimal.Decimal {
	total := decimal.Zero
	for _, refID := range item.ReferenceIDs {
		var kind ReferenceKind
		switch item.Kind {
		case ItemCategory:
			kind = RefCategory
		case ItemIndicator:
			kind = RefIndicator
		case ItemDREAccount:
			kind = RefDREAccount
		case ItemCustomSum:
			isCat, err := s.categoryExists(ctx, refID)
			if err != nil {
				s.warnDegraded(item.ID, refID, p, err)
				continue
			}
			kind = RefIndicator
			if isCat {
				kind = RefCategory
			}
		}
		v, err := s.referenceValue(ctx, companyID, kind, refID, p)
		if err != nil {
			s.warnDegraded(item.ID, refID, p, err)
			continue
		}
		total = total.Add(v)
	}
	return total
}

func (s *dashboardService) buildChart(ctx context.Context, companyID string, item DashboardItem, periods []Period) (*DashboardChart, error) {
	series, err := s.linkedSeries(ctx, companyID, item, periods)
	if err != nil {
		return nil, err
	}
	chart := &DashboardChart{
		ItemID: item.ID,
		Title:  item.Title,
		Color:  item.Color,
		Order:  item.Order,
		Series: series,
	}
	if item.ChartKind != nil {
		chart.ChartKind = *item.ChartKind
	}
	return chart, nil
}

func (s *dashboardService) buildTopList(ctx context.Context, companyID string, item DashboardItem, periods []Period) (*DashboardTopList, error) {
	series, err := s.linkedSeries(ctx, companyID, item, periods)
	if err != nil {
		return nil, err
	}
	limit := defaultTopLimit
	if item.TopLimit != nil && *item.TopLimit > 0 {
		limit = *item.TopLimit
	}

	list := &DashboardTopList{
		ItemID:  item.ID,
		Title:   item.Title,
		Order:   item.Order,
		Limit:   limit,
		Periods: make([]TopListPeriod, len(periods)),
	}
	for pi, p := range periods {
		entries := make([]TopEntry, 0, len(series))
		for _, sr := range series {
			entries = append(entries, TopEntry{Name: sr.Name, Value: sr.Points[pi].Value})
		}
		list.Periods[pi] = TopListPeriod{Period: p, Label: p.Label(), Entries: RankEntries(entries, limit)}
	}
	return list, nil
}

// RankEntries sorts entries by value descending and truncates to limit.
// Ties keep their input order.
func RankEntries(entries []TopEntry, limit int) []TopEntry {
	ranked := make([]TopEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value.GreaterThan(ranked[j].Value)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// linkedSeries evaluates each linked entry across the periods, one goroutine
// per period. Broken entries degrade to zero per point.
func (s *dashboardService) linkedSeries(ctx context.Context, companyID string, item DashboardItem, periods []Period) ([]ChartSeries, error) {
	series := make([]ChartSeries, len(item.LinkedData))
	for i, ref := range item.LinkedData {
		series[i] = ChartSeries{Name: ref.Name, Points: make([]ChartPoint, len(periods))}
	}

	g, gctx := errgroup.WithContext(ctx)
	for pi, p := range periods {
		g.Go(func() error {
			for ri, ref := range item.LinkedData {
				v, err := s.referenceValue(gctx, companyID, ref.Kind, ref.ID, p)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					s.warnDegraded(item.ID, ref.ID, p, err)
					v = decimal.Zero
				}
				series[ri].Points[pi] = ChartPoint{Period: p, Label: p.Label(), Value: v}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}

func (s *dashboardService) referenceValue(ctx context.Context, companyID string, kind ReferenceKind, refID string, p Period) (decimal.Decimal, error) {
	switch kind {
	case RefCategory:
		return s.rawData.CategoryPeriodValue(ctx, companyID, refID, p)
	case RefIndicator:
		return s.resolver.Resolve(ctx, companyID, refID, p, nil)
	case RefDREAccount:
		return s.dre.PrincipalValue(ctx, companyID, refID, p)
	}
	return decimal.Zero, fmt.Errorf("%w: unknown reference kind %q", ErrInvalidArgument, kind)
}

func (s *dashboardService) warnDegraded(itemID, refID string, p Period, err error) {
	s.logger.WithFields(logrus.Fields{
		"item_id":      itemID,
		"reference_id": refID,
		"period":       p.Key(),
	}).WithError(err).Warn("dashboard reference degraded to zero")
}
