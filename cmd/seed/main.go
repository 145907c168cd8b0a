// seed is a one-shot tool that loads a demo dataset: a demo company, a
// starter chart of categories and indicators, a default income statement
// model and a dashboard layout.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"
	"os"

	"finboard/internal/db"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding demo company...")
	_, err = tx.Exec(ctx, `
		INSERT INTO companies (id, legal_name, trading_name, tax_id)
		VALUES ('00000000-0000-0000-0000-000000000001',
		        'Demo Comercio Ltda', 'Demo Store', '00.000.000/0001-00')
		ON CONFLICT (id) DO UPDATE
		  SET legal_name = EXCLUDED.legal_name,
		      trading_name = EXCLUDED.trading_name;
	`)
	if err != nil {
		log.Fatalf("Failed to seed company: %v", err)
	}

	log.Println("Seeding admin user...")
	hash, err := bcrypt.GenerateFromPassword([]byte(envOr("SEED_ADMIN_PASSWORD", "changeme123")), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO system_users (name, email, password_hash, role, has_all_companies_access)
		VALUES ('Admin', 'admin@example.com', $1, 'admin', true)
		ON CONFLICT (email) DO NOTHING;
	`, string(hash))
	if err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	log.Println("Seeding categories...")
	_, err = tx.Exec(ctx, `
		INSERT INTO categories (code, name, type)
		VALUES
		  ('REV-001', 'Vendas de Produtos',      'revenue'),
		  ('REV-002', 'Prestacao de Servicos',   'revenue'),
		  ('REV-003', 'Receitas Financeiras',    'revenue'),
		  ('EXP-001', 'Custo das Mercadorias',   'expense'),
		  ('EXP-002', 'Folha de Pagamento',      'expense'),
		  ('EXP-003', 'Aluguel',                 'expense'),
		  ('EXP-004', 'Marketing',               'expense'),
		  ('EXP-005', 'Despesas Administrativas','expense')
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type;
	`)
	if err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}

	log.Println("Activating categories for demo company...")
	_, err = tx.Exec(ctx, `
		INSERT INTO company_categories (company_id, category_id, is_active)
		SELECT '00000000-0000-0000-0000-000000000001', id, true FROM categories
		ON CONFLICT (company_id, category_id) DO UPDATE SET is_active = true;
	`)
	if err != nil {
		log.Fatalf("Failed to activate categories: %v", err)
	}

	log.Println("Seeding indicators...")
	_, err = tx.Exec(ctx, `
		INSERT INTO indicators (code, name, type, calculation_type, operation, source_ids)
		VALUES
		  ('IND-001', 'Ticket Medio',    'manual',     NULL,       NULL,  '{}'),
		  ('IND-002', 'Receita Bruta',   'calculated', 'category', 'sum',
		   (SELECT COALESCE(array_agg(id), '{}') FROM categories WHERE type = 'revenue'))
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name;
	`)
	if err != nil {
		log.Fatalf("Failed to seed indicators: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO company_indicators (company_id, indicator_id, is_active)
		SELECT '00000000-0000-0000-0000-000000000001', id, true FROM indicators
		ON CONFLICT (company_id, indicator_id) DO UPDATE SET is_active = true;
	`)
	if err != nil {
		log.Fatalf("Failed to activate indicators: %v", err)
	}

	log.Println("Seeding income statement model...")
	_, err = tx.Exec(ctx, `
		INSERT INTO contas_dre_modelo (id, nome, tipo, simbolo, ordem_padrao, visivel)
		VALUES
		  ('10000000-0000-0000-0000-000000000001', 'Receita Bruta',        'composite', '+', 1, true),
		  ('10000000-0000-0000-0000-000000000002', 'Custos e Despesas',    'composite', '-', 2, true),
		  ('10000000-0000-0000-0000-000000000003', 'Resultado Operacional','formula',   '+', 3, true)
		ON CONFLICT (id) DO UPDATE SET nome = EXCLUDED.nome;
	`)
	if err != nil {
		log.Fatalf("Failed to seed principal accounts: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO contas_dre_componentes (conta_dre_modelo_id, referencia_tipo, referencia_id, peso, ordem)
		SELECT '10000000-0000-0000-0000-000000000001', 'category', id, 1, row_number() OVER (ORDER BY code)
		FROM categories WHERE type = 'revenue'
		UNION ALL
		SELECT '10000000-0000-0000-0000-000000000002', 'category', id, 1, row_number() OVER (ORDER BY code)
		FROM categories WHERE type = 'expense'
		ON CONFLICT DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to seed statement components: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO dre_empresa_componentes (empresa_id, componente_id, is_active)
		SELECT '00000000-0000-0000-0000-000000000001', id, true FROM contas_dre_componentes
		ON CONFLICT (empresa_id, componente_id) DO UPDATE SET is_active = true;
	`)
	if err != nil {
		log.Fatalf("Failed to activate statement components: %v", err)
	}

	log.Println("Seeding dashboard layout...")
	_, err = tx.Exec(ctx, `
		INSERT INTO dashboard_visual_config
			(empresa_id, ordem, titulo_personalizado, tipo, referencias_ids, tipo_grafico, dados_vinculados, top_limit)
		VALUES
		  ('00000000-0000-0000-0000-000000000001', 1, 'Receita do Mes', 'custom_sum',
		   (SELECT COALESCE(array_agg(id), '{}') FROM categories WHERE type = 'revenue'), NULL, '[]', NULL),
		  ('00000000-0000-0000-0000-000000000001', 2, 'Maiores Despesas', 'top_list',
		   (SELECT COALESCE(array_agg(id), '{}') FROM categories WHERE type = 'expense'), NULL, '[]', 5),
		  ('00000000-0000-0000-0000-000000000001', 3, 'Evolucao da Receita', 'chart',
		   '{}', 'line',
		   (SELECT COALESCE(jsonb_agg(jsonb_build_object('id', id, 'kind', 'category', 'name', name)), '[]')
		    FROM categories WHERE type = 'revenue'), NULL)
		ON CONFLICT DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to seed dashboard layout: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Demo dataset loaded.")
	os.Exit(0)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
