package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryService manages the shared category catalog, its groups, and the
// per-company activation junction.
type CategoryService interface {
	Get(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	ListForCompany(ctx context.Context, companyID string) ([]Category, error)
	Create(ctx context.Context, cat Category) (*Category, error)
	Update(ctx context.Context, cat Category) (*Category, error)
	Delete(ctx context.Context, id string) error
	SetCompanyActivation(ctx context.Context, companyID, categoryID string, active bool) error

	ListGroups(ctx context.Context) ([]CategoryGroup, error)
	CreateGroup(ctx context.Context, g CategoryGroup) (*CategoryGroup, error)
	UpdateGroup(ctx context.Context, g CategoryGroup) (*CategoryGroup, error)
	DeleteGroup(ctx context.Context, id string) error
}

type categoryService struct {
	pool *pgxpool.Pool
}

// NewCategoryService constructs a CategoryService backed by PostgreSQL.
func NewCategoryService(pool *pgxpool.Pool) CategoryService {
	return &categoryService{pool: pool}
}

const categoryColumns = "id, code, name, type, group_id"

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Kind, &c.GroupID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *categoryService) Get(ctx context.Context, id string) (*Category, error) {
	c, err := scanCategory(s.pool.QueryRow(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch category %s: %w", id, err)
	}
	return c, nil
}

func (s *categoryService) List(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (s *categoryService) ListForCompany(ctx context.Context, companyID string) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.code, c.name, c.type, c.group_id
		FROM categories c
		JOIN company_categories cc ON cc.category_id = c.id
		WHERE cc.company_id = $1 AND cc.is_active = true
		ORDER BY c.code
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

func collectCategories(rows pgx.Rows) ([]Category, error) {
	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *categoryService) Create(ctx context.Context, cat Category) (*Category, error) {
	if err := validateCategoryKind(cat.Kind); err != nil {
		return nil, err
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO categories (code, name, type, group_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, cat.Code, cat.Name, cat.Kind, cat.GroupID).Scan(&cat.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	return &cat, nil
}

// Update rejects a kind change once raw data rows reference the category. The
// kind decides the sign of every historical row, so flipping it would silently
// rewrite past statements.
func (s *categoryService) Update(ctx context.Context, cat Category) (*Category, error) {
	if err := validateCategoryKind(cat.Kind); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	if current.Kind != cat.Kind {
		var refs int
		err := s.pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM dados_brutos WHERE categoria_id = $1", cat.ID).Scan(&refs)
		if err != nil {
			return nil, fmt.Errorf("failed to count category references: %w", err)
		}
		if refs > 0 {
			return nil, fmt.Errorf("%w: category kind cannot change while raw data references it", ErrInvalidArgument)
		}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE categories SET code = $2, name = $3, type = $4, group_id = $5 WHERE id = $1
	`, cat.ID, cat.Code, cat.Name, cat.Kind, cat.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("category %s: %w", cat.ID, ErrNotFound)
	}
	return &cat, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *categoryService) SetCompanyActivation(ctx context.Context, companyID, categoryID string, active bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO company_categories (company_id, category_id, is_active)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, category_id) DO UPDATE SET is_active = EXCLUDED.is_active
	`, companyID, categoryID, active)
	if err != nil {
		return fmt.Errorf("failed to set category activation: %w", err)
	}
	return nil
}

func (s *categoryService) ListGroups(ctx context.Context) ([]CategoryGroup, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name, type FROM category_groups ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list category groups: %w", err)
	}
	defer rows.Close()

	var out []CategoryGroup
	for rows.Next() {
		var g CategoryGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan category group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *categoryService) CreateGroup(ctx context.Context, g CategoryGroup) (*CategoryGroup, error) {
	if err := validateCategoryKind(g.Kind); err != nil {
		return nil, err
	}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO category_groups (name, type) VALUES ($1, $2) RETURNING id",
		g.Name, g.Kind).Scan(&g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category group: %w", err)
	}
	return &g, nil
}

func (s *categoryService) UpdateGroup(ctx context.Context, g CategoryGroup) (*CategoryGroup, error) {
	if err := validateCategoryKind(g.Kind); err != nil {
		return nil, err
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE category_groups SET name = $2, type = $3 WHERE id = $1",
		g.ID, g.Name, g.Kind)
	if err != nil {
		return nil, fmt.Errorf("failed to update category group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("category group %s: %w", g.ID, ErrNotFound)
	}
	return &g, nil
}

func (s *categoryService) DeleteGroup(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM category_groups WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete category group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category group %s: %w", id, ErrNotFound)
	}
	return nil
}

func validateCategoryKind(k CategoryKind) error {
	if k != CategoryRevenue && k != CategoryExpense {
		return fmt.Errorf("%w: unknown category kind %q", ErrInvalidArgument, k)
	}
	return nil
}
