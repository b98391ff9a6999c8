package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/example/greekbot/internal/database"
)

func setupImporter(t *testing.T) *Importer {
	t.Helper()
	require.NoError(t, database.Open("sqlite3", ":memory:"))
	t.Cleanup(func() { _ = database.Close() })
	return New(zaptest.NewLogger(t))
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportCSV(t *testing.T) {
	imp := setupImporter(t)
	ctx := context.Background()

	path := writeCSV(t, "Greek,English,Tags\n"+
		"το σπίτι,house,nouns\n"+
		"νερό,water,\n"+
		",missing greek,\n"+
		"\n")

	result, err := imp.ImportCSV(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.Skipped)

	word, err := database.NewWordRepository().GetByGreek(ctx, "το σπίτι")
	require.NoError(t, err)
	assert.Equal(t, "house", word.English)
	assert.True(t, word.Tags.Has("nouns"))
}

func TestImportCSVHeaderAliases(t *testing.T) {
	imp := setupImporter(t)
	ctx := context.Background()

	// Quizlet-style export headers, with a BOM on the first cell.
	path := writeCSV(t, "\uFEFFGreek Term,English Definition,Set Name\n"+
		"καλημέρα,good morning,greetings\n")

	result, err := imp.ImportCSV(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)

	word, err := database.NewWordRepository().GetByGreek(ctx, "καλημέρα")
	require.NoError(t, err)
	assert.Equal(t, "good morning", word.English)
	assert.True(t, word.Tags.Has("greetings"))
}

func TestImportCSVDuplicatesSkipped(t *testing.T) {
	imp := setupImporter(t)
	ctx := context.Background()
	path := writeCSV(t, "greek,english\nνερό,water\nψωμί,bread\n")

	first, err := imp.ImportCSV(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Added)

	second, err := imp.ImportCSV(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 2, second.Skipped)
}

func TestImportCSVMissingRequiredColumn(t *testing.T) {
	imp := setupImporter(t)
	path := writeCSV(t, "greek,part of speech\nνερό,noun\n")

	_, err := imp.ImportCSV(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "english")
}

func TestImportXLSX(t *testing.T) {
	imp := setupImporter(t)
	ctx := context.Background()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]string{
		{"Greek", "English", "Part of Speech"},
		{"το βιβλίο", "book", "noun"},
		{"διαβάζω", "I read", "verb"},
	}
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, ref, cell))
		}
	}
	path := filepath.Join(t.TempDir(), "words.xlsx")
	require.NoError(t, f.SaveAs(path))

	result, err := imp.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)

	word, err := database.NewWordRepository().GetByGreek(ctx, "διαβάζω")
	require.NoError(t, err)
	assert.Equal(t, "verb", word.PartOfSpeech)
}

func TestImportFileUnsupportedType(t *testing.T) {
	imp := setupImporter(t)
	_, err := imp.ImportFile(context.Background(), "words.pdf")
	assert.Error(t, err)
}
