package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// UploadRowResult records the outcome of one spreadsheet row. Name carries
// the referenced entity's name when the reference resolved, otherwise the
// raw id from the file.
type UploadRowResult struct {
	Row    int    `json:"row"`
	Name   string `json:"name"`
	Value  string `json:"value"`
	Error  string `json:"error,omitempty"`
	Status string `json:"status"`
}

const (
	UploadRowInserted = "inserted"
	UploadRowFailed   = "failed"
)

// UploadSummary is the per-row outcome of one bulk upload. A batch never
// aborts on a row error; failed rows are reported individually.
type UploadSummary struct {
	Inserted int               `json:"inserted"`
	Failed   int               `json:"failed"`
	Rows     []UploadRowResult `json:"rows"`
}

// UploadService ingests a spreadsheet of raw data rows for one company and
// period. Supported formats are xlsx and csv, selected by file name.
type UploadService interface {
	Process(ctx context.Context, companyID string, year int, month, filename string, file io.Reader) (*UploadSummary, error)
}

// CategoryGetter fetches one category definition by id.
type CategoryGetter interface {
	Get(ctx context.Context, id string) (*Category, error)
}

// RawDataCreator inserts validated raw data points.
type RawDataCreator interface {
	Create(ctx context.Context, point RawDataPoint) (*RawDataPoint, error)
}

type uploadService struct {
	rawData    RawDataCreator
	categories CategoryGetter
	indicators IndicatorGetter
	logger     *logrus.Logger
}

// NewUploadService constructs an UploadService. Category and indicator
// lookups validate that each row's reference exists before insert.
func NewUploadService(rawData RawDataCreator, categories CategoryGetter, indicators IndicatorGetter, logger *logrus.Logger) UploadService {
	return &uploadService{rawData: rawData, categories: categories, indicators: indicators, logger: logger}
}

// uploadRow is one parsed spreadsheet row before validation.
type uploadRow struct {
	line        int
	categoryID  string
	indicatorID string
	value       string
}

func (s *uploadService) Process(ctx context.Context, companyID string, year int, month, filename string, file io.Reader) (*UploadSummary, error) {
	if _, err := MonthIndex(month); err != nil {
		return nil, err
	}

	var rows []uploadRow
	var err error
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		rows, err = parseCSV(file)
	} else {
		rows, err = parseXLSX(file)
	}
	if err != nil {
		return nil, err
	}

	summary := &UploadSummary{Rows: make([]UploadRowResult, 0, len(rows))}
	for _, row := range rows {
		result := s.processRow(ctx, companyID, year, month, row)
		if result.Status == UploadRowInserted {
			summary.Inserted++
		} else {
			summary.Failed++
		}
		summary.Rows = append(summary.Rows, result)
	}

	s.logger.WithFields(logrus.Fields{
		"company_id": companyID,
		"period":     fmt.Sprintf("%s-%d", month, year),
		"inserted":   summary.Inserted,
		"failed":     summary.Failed,
	}).Info("bulk upload processed")
	return summary, nil
}

// processRow validates and inserts one row. Any failure is confined to the
// row's own result.
func (s *uploadService) processRow(ctx context.Context, companyID string, year int, month string, row uploadRow) UploadRowResult {
	result := UploadRowResult{Row: row.line, Value: row.value, Status: UploadRowFailed}
	result.Name = row.categoryID
	if result.Name == "" {
		result.Name = row.indicatorID
	}

	hasCategory := row.categoryID != ""
	hasIndicator := row.indicatorID != ""
	if hasCategory == hasIndicator {
		result.Error = "exactly one of categoria_id or indicador_id is required"
		return result
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(row.value, ",", "."))
	if err != nil || !amount.IsPositive() {
		result.Error = "valor must be a positive number"
		return result
	}

	point := RawDataPoint{CompanyID: companyID, Year: year, Month: month, Amount: amount}
	if hasCategory {
		cat, err := s.categories.Get(ctx, row.categoryID)
		if err != nil {
			result.Error = "category not found"
			return result
		}
		result.Name = cat.Name
		point.CategoryID = &row.categoryID
	} else {
		ind, err := s.indicators.Get(ctx, row.indicatorID)
		if err != nil {
			result.Error = "indicator not found"
			return result
		}
		result.Name = ind.Name
		point.IndicatorID = &row.indicatorID
	}

	if _, err := s.rawData.Create(ctx, point); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"company_id": companyID,
			"row":        row.line,
		}).Warn("bulk upload row insert failed")
		result.Error = "insert failed"
		return result
	}
	result.Status = UploadRowInserted
	result.Error = ""
	return result
}

// columnIndexes maps a header row to the expected columns. Portuguese and
// English header names are both accepted.
func columnIndexes(header []string) (catCol, indCol, valCol int, err error) {
	catCol, indCol, valCol = -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "categoria_id", "category_id":
			catCol = i
		case "indicador_id", "indicator_id":
			indCol = i
		case "valor", "amount":
			valCol = i
		}
	}
	if valCol < 0 || (catCol < 0 && indCol < 0) {
		return 0, 0, 0, fmt.Errorf("%w: header must contain valor and categoria_id or indicador_id", ErrInvalidArgument)
	}
	return catCol, indCol, valCol, nil
}

func cell(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

func recordsToRows(records [][]string) ([]uploadRow, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidArgument)
	}
	catCol, indCol, valCol, err := columnIndexes(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]uploadRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row := uploadRow{
			line:        i + 2, // 1-based, after the header
			categoryID:  cell(record, catCol),
			indicatorID: cell(record, indCol),
			value:       cell(record, valCol),
		}
		if row.categoryID == "" && row.indicatorID == "" && row.value == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCSV(file io.Reader) ([]uploadRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed csv: %v", ErrInvalidArgument, err)
	}
	return recordsToRows(records)
}

func parseXLSX(file io.Reader) ([]uploadRow, error) {
	wb, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed spreadsheet: %v", ErrInvalidArgument, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet has no sheets", ErrInvalidArgument)
	}
	records, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet rows: %w", err)
	}
	return recordsToRows(records)
}
