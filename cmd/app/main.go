// app is the operator command line. It talks to the same application
// service as the HTTP server, skipping authentication.
//
// Usage: go run ./cmd/app statement <company-id> <month> <year>
package main

import (
	"context"
	"io"
	"log"
	"os"

	"finboard/internal/adapters/cli"
	"finboard/internal/app"
	"finboard/internal/core"
	"finboard/internal/db"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	// Engine warnings would interleave with the rendered tables.
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	rawData := core.NewRawDataService(pool)
	indicators := core.NewIndicatorService(pool)
	resolver := core.NewResolver(indicators, rawData, logger)
	companies := core.NewCompanyService(pool)
	categories := core.NewCategoryService(pool)
	dre := core.NewDREService(pool, rawData, resolver, logger)
	dashboards := core.NewDashboardService(pool, rawData, resolver, dre, logger)
	uploads := core.NewUploadService(rawData, categories, indicators, logger)
	users := core.NewUserService(pool)

	svc := app.NewApplicationService(app.Services{
		Companies:  companies,
		Categories: categories,
		Indicators: indicators,
		RawData:    rawData,
		Uploads:    uploads,
		DRE:        dre,
		Dashboards: dashboards,
		Users:      users,
	})

	cli.Run(ctx, svc, os.Args[1:])
}
