// Package importer loads vocabulary from CSV and XLSX files into the
// catalog. Files exported from flashcard tools use varying column headers,
// so headers are matched through an alias table.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/example/greekbot/internal/database"
	"github.com/example/greekbot/internal/metrics"
	"github.com/example/greekbot/pkg/models"
)

// columnAliases maps the headers seen in the wild onto canonical fields.
var columnAliases = map[string]string{
	"greek":              "greek",
	"greek term":         "greek",
	"term":               "greek",
	"english":            "english",
	"english definition": "english",
	"definition":         "english",
	"part of speech":     "part_of_speech",
	"pos":                "part_of_speech",
	"example":            "example_el",
	"example greek":      "example_el",
	"example english":    "example_en",
	"tags":               "tags",
	"set name":           "tags",
}

var requiredColumns = []string{"greek", "english"}

// Result summarises an import run.
type Result struct {
	Added   int
	Skipped int
}

// Importer reads vocabulary files into the catalog.
type Importer struct {
	words *database.WordRepository
	log   *zap.Logger
}

// New creates an importer.
func New(logger *zap.Logger) *Importer {
	return &Importer{
		words: database.NewWordRepository(),
		log:   logger.Named("importer"),
	}
}

// ImportFile dispatches on the file extension.
func (i *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return i.ImportCSV(ctx, path)
	case ".xlsx":
		return i.ImportXLSX(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// ImportCSV loads words from a CSV file. The first row must be a header;
// rows missing the Greek or English field are skipped, as are words already
// in the catalog.
func (i *Importer) ImportCSV(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		i.importRow(ctx, record, columns, result)
	}

	i.logResult(path, result)
	return result, nil
}

// ImportXLSX loads words from the first sheet of an Excel workbook.
func (i *Importer) ImportXLSX(ctx context.Context, path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	columns, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, row := range rows[1:] {
		i.importRow(ctx, row, columns, result)
	}

	i.logResult(path, result)
	return result, nil
}

// mapHeader resolves header cells to canonical columns and checks that the
// required ones are present.
func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int)
	for idx, cell := range header {
		name := strings.ToLower(strings.TrimSpace(stripBOM(cell)))
		if canonical, ok := columnAliases[name]; ok {
			if _, dup := columns[canonical]; !dup {
				columns[canonical] = idx
			}
		}
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return columns, nil
}

func (i *Importer) importRow(ctx context.Context, record []string, columns map[string]int, result *Result) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	greek, english := cell("greek"), cell("english")
	if greek == "" || english == "" {
		if greek != "" || english != "" {
			result.Skipped++
		}
		return // fully blank rows don't count as skipped
	}

	if _, err := i.words.GetByGreek(ctx, greek); err == nil {
		result.Skipped++
		return
	}

	word := &models.Word{
		Greek:        greek,
		English:      english,
		PartOfSpeech: cell("part_of_speech"),
		ExampleEl:    cell("example_el"),
		ExampleEn:    cell("example_en"),
		Tags:         models.ParseTags(cell("tags")),
	}
	if err := i.words.Create(ctx, word); err != nil {
		i.log.Warn("failed to insert word", zap.String("greek", greek), zap.Error(err))
		result.Skipped++
		return
	}

	result.Added++
	metrics.WordsImported.Inc()
}

func (i *Importer) logResult(path string, result *Result) {
	i.log.Info("import finished",
		zap.String("file", filepath.Base(path)),
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped))
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
