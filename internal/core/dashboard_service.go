package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DashboardService manages per-company widget configuration and renders the
// dashboard payload.
type DashboardService interface {
	ListItems(ctx context.Context, companyID string) ([]DashboardItem, error)
	CreateItem(ctx context.Context, item DashboardItem) (*DashboardItem, error)
	UpdateItem(ctx context.Context, item DashboardItem) (*DashboardItem, error)
	DeleteItem(ctx context.Context, id string) error

	BuildDashboard(ctx context.Context, companyID, month string, year int) (*Dashboard, error)
}

type dashboardService struct {
	pool     *pgxpool.Pool
	rawData  RawDataService
	resolver *Resolver
	dre      DREService
	logger   *logrus.Logger
}

// NewDashboardService constructs a DashboardService. The DRE service backs
// dre_account widgets and linked series.
func NewDashboardService(pool *pgxpool.Pool, rawData RawDataService, resolver *Resolver, dre DREService, logger *logrus.Logger) DashboardService {
	return &dashboardService{pool: pool, rawData: rawData, resolver: resolver, dre: dre, logger: logger}
}

const dashboardColumns = `id, empresa_id, ordem, COALESCE(titulo_personalizado, ''), tipo,
	COALESCE(referencias_ids, '{}'), COALESCE(cor_resultado, ''), tipo_grafico, dados_vinculados, top_limit, is_active`

func scanDashboardItem(row pgx.Row) (*DashboardItem, error) {
	var item DashboardItem
	if err := row.Scan(&item.ID, &item.CompanyID, &item.Order, &item.Title, &item.Kind,
		&item.ReferenceIDs, &item.Color, &item.ChartKind, &item.LinkedData, &item.TopLimit, &item.IsActive); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *dashboardService) ListItems(ctx context.Context, companyID string) ([]DashboardItem, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+dashboardColumns+" FROM dashboard_visual_config WHERE empresa_id = $1 ORDER BY ordem",
		companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboard items: %w", err)
	}
	defer rows.Close()

	var out []DashboardItem
	for rows.Next() {
		item, err := scanDashboardItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dashboard item: %w", err)
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (s *dashboardService) CreateItem(ctx context.Context, item DashboardItem) (*DashboardItem, error) {
	if err := validateDashboardItem(item); err != nil {
		return nil, err
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO dashboard_visual_config
			(empresa_id, ordem, titulo_personalizado, tipo, referencias_ids, cor_resultado,
			 tipo_grafico, dados_vinculados, top_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, item.CompanyID, item.Order, item.Title, item.Kind, item.ReferenceIDs, item.Color,
		item.ChartKind, item.LinkedData, item.TopLimit, item.IsActive).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert dashboard item: %w", err)
	}
	return &item, nil
}

func (s *dashboardService) UpdateItem(ctx context.Context, item DashboardItem) (*DashboardItem, error) {
	if err := validateDashboardItem(item); err != nil {
		return nil, err
	}
	updated, err := scanDashboardItem(s.pool.QueryRow(ctx, `
		UPDATE dashboard_visual_config
		SET ordem = $2, titulo_personalizado = $3, tipo = $4, referencias_ids = $5,
		    cor_resultado = $6, tipo_grafico = $7, dados_vinculados = $8, top_limit = $9, is_active = $10
		WHERE id = $1
		RETURNING `+dashboardColumns+`
	`, item.ID, item.Order, item.Title, item.Kind, item.ReferenceIDs, item.Color,
		item.ChartKind, item.LinkedData, item.TopLimit, item.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("dashboard item %s: %w", item.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update dashboard item: %w", err)
	}
	return updated, nil
}

func (s *dashboardService) DeleteItem(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM dashboard_visual_config WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete dashboard item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dashboard item %s: %w", id, ErrNotFound)
	}
	return nil
}

func validateDashboardItem(item DashboardItem) error {
	switch item.Kind {
	case ItemCategory, ItemIndicator, ItemDREAccount, ItemCustomSum:
		if len(item.ReferenceIDs) == 0 {
			return fmt.Errorf("%w: %s widget requires at least one reference", ErrInvalidArgument, item.Kind)
		}
	case ItemChart:
		if item.ChartKind == nil {
			return fmt.Errorf("%w: chart widget requires a chart kind", ErrInvalidArgument)
		}
		if len(item.LinkedData) == 0 {
			return fmt.Errorf("%w: chart widget requires linked data", ErrInvalidArgument)
		}
	case ItemTopList:
		if len(item.LinkedData) == 0 {
			return fmt.Errorf("%w: top list widget requires linked data", ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unknown widget kind %q", ErrInvalidArgument, item.Kind)
	}
	return nil
}

// categoryExists backs custom_sum resolution, where a reference id is tried
// as a category first and falls back to an indicator.
func (s *dashboardService) categoryExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category %s: %w", id, err)
	}
	return exists, nil
}
