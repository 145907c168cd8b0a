// Package cli is a one-shot command adapter for operators: it renders the
// income statement and dashboard to the terminal and ingests spreadsheets
// without going through the HTTP surface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"finboard/internal/app"
	"finboard/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:], the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	if len(args) == 0 {
		usage()
	}

	switch args[0] {
	case "statement", "dre", "s":
		companyID, month, year := periodArgs(args, "statement")
		stmt, err := svc.BuildStatement(ctx, companyID, month, year)
		if err != nil {
			log.Fatalf("Failed to build statement: %v", err)
		}
		printStatement(stmt)

	case "dashboard", "dash", "d":
		companyID, month, year := periodArgs(args, "dashboard")
		dashboard, err := svc.BuildDashboard(ctx, companyID, month, year)
		if err != nil {
			log.Fatalf("Failed to build dashboard: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(dashboard)

	case "upload", "up", "u":
		if len(args) < 5 {
			log.Fatal("Usage: app upload <company-id> <month> <year> <file.csv|file.xlsx>")
		}
		companyID, month, year := periodArgs(args, "upload")
		path := args[4]
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("Failed to open file: %v", err)
		}
		defer f.Close()

		summary, err := svc.ProcessUpload(ctx, companyID, year, month, filepath.Base(path), f)
		if err != nil {
			log.Fatalf("Upload failed: %v", err)
		}
		printUploadSummary(summary)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: statement, dashboard, upload", args[0])
	}
}

func usage() {
	log.Fatal("Usage: app <command> ...\n" +
		"  statement <company-id> <month> <year>\n" +
		"  dashboard <company-id> <month> <year>\n" +
		"  upload    <company-id> <month> <year> <file>")
}

func periodArgs(args []string, cmd string) (companyID, month string, year int) {
	if len(args) < 4 {
		log.Fatalf("Usage: app %s <company-id> <month> <year>", cmd)
	}
	year, err := strconv.Atoi(args[3])
	if err != nil {
		log.Fatalf("Invalid year %q: %v", args[3], err)
	}
	return args[1], args[2], year
}

func printStatement(stmt *core.Statement) {
	last := len(stmt.Periods) - 1

	fmt.Println()
	fmt.Println(strings.Repeat("=", 76))
	fmt.Printf("  INCOME STATEMENT  (twelve months ending %s)\n", stmt.Periods[last].Label())
	fmt.Println(strings.Repeat("=", 76))
	fmt.Printf("  %-40s %15s %15s\n", "LINE", stmt.Periods[last].Label(), "TOTAL")
	fmt.Println(strings.Repeat("-", 76))
	for _, line := range stmt.Lines {
		name := line.Name
		if line.Symbol != nil {
			name = fmt.Sprintf("(%s) %s", *line.Symbol, line.Name)
		}
		fmt.Printf("  %-40s %15s %15s\n", name,
			line.Values[last].Amount.StringFixed(2), line.Total.Amount.StringFixed(2))
		for _, sec := range line.Secondaries {
			fmt.Printf("    %-38s %15s %15s\n", sec.Name,
				sec.Values[last].Amount.StringFixed(2), sec.Total.Amount.StringFixed(2))
		}
	}
	fmt.Println(strings.Repeat("=", 76))
}

func printUploadSummary(summary *core.UploadSummary) {
	fmt.Printf("Inserted: %d  Failed: %d\n", summary.Inserted, summary.Failed)
	for _, row := range summary.Rows {
		if row.Status != core.UploadRowFailed {
			continue
		}
		fmt.Printf("  row %d: %s\n", row.Row, row.Error)
	}
}
