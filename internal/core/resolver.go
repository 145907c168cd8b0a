package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// IndicatorGetter fetches one indicator definition by id.
type IndicatorGetter interface {
	Get(ctx context.Context, id string) (*Indicator, error)
}

// PeriodValuer supplies per-period sums for categories and manual indicators.
// RawDataService satisfies it.
type PeriodValuer interface {
	CategoryPeriodValue(ctx context.Context, companyID, categoryID string, p Period) (decimal.Decimal, error)
	IndicatorPeriodValue(ctx context.Context, companyID, indicatorID string, p Period) (decimal.Decimal, error)
}

// Resolver computes the value of an indicator for a company and period,
// following indicator-of-indicator definitions depth first.
//
// A broken reference (missing indicator, cycle, division by zero) degrades
// that contribution to zero with a warning so one bad definition cannot take
// down a whole report. Store failures propagate as errors.
type Resolver struct {
	indicators IndicatorGetter
	values     PeriodValuer
	logger     *logrus.Logger
}

func NewResolver(indicators IndicatorGetter, values PeriodValuer, logger *logrus.Logger) *Resolver {
	return &Resolver{indicators: indicators, values: values, logger: logger}
}

// Resolve evaluates indicatorID for the given company and period. visited
// carries the indicator ids along the current recursion path; pass nil at the
// top level.
func (r *Resolver) Resolve(ctx context.Context, companyID, indicatorID string, p Period, visited map[string]bool) (decimal.Decimal, error) {
	if visited == nil {
		visited = make(map[string]bool)
	}
	if visited[indicatorID] {
		r.logger.WithFields(logrus.Fields{
			"indicator_id": indicatorID,
			"company_id":   companyID,
			"period":       p.Key(),
		}).Warn("circular indicator reference, contributing zero")
		return decimal.Zero, nil
	}
	visited[indicatorID] = true
	defer delete(visited, indicatorID)

	ind, err := r.indicators.Get(ctx, indicatorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.WithFields(logrus.Fields{
				"indicator_id": indicatorID,
				"company_id":   companyID,
			}).Warn("indicator not found, contributing zero")
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to load indicator %s: %w", indicatorID, err)
	}

	if ind.Kind == IndicatorManual {
		return r.values.IndicatorPeriodValue(ctx, companyID, indicatorID, p)
	}

	result := decimal.Zero
	seeded := false
	for _, sourceID := range ind.SourceIDs {
		var sourceValue decimal.Decimal
		if ind.CalcType == CalcFromCategories {
			sourceValue, err = r.values.CategoryPeriodValue(ctx, companyID, sourceID, p)
		} else {
			sourceValue, err = r.Resolve(ctx, companyID, sourceID, p, visited)
		}
		if err != nil {
			return decimal.Zero, err
		}

		// The first source seeds the accumulator unconditionally; a legitimate
		// zero from an early source must not be mistaken for "unset".
		if !seeded {
			result = sourceValue
			seeded = true
			continue
		}
		result = applyOperation(ind.Operation, result, sourceValue)
	}
	return result, nil
}

// applyOperation combines the accumulator with the next source value.
// Division by zero yields zero, not an error.
func applyOperation(op Operation, acc, v decimal.Decimal) decimal.Decimal {
	switch op {
	case OpSum:
		return acc.Add(v)
	case OpSubtract:
		return acc.Sub(v)
	case OpMultiply:
		return acc.Mul(v)
	case OpDivide:
		if v.IsZero() {
			return decimal.Zero
		}
		return acc.Div(v)
	}
	return acc
}
