package main

import (
	"context"
	"net/http"
	"os"

	webAdapter "finboard/internal/adapters/web"
	"finboard/internal/app"
	"finboard/internal/core"
	"finboard/internal/db"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		logger.Fatalf("database: %v", err)
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

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret, logger)

	logger.Infof("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
