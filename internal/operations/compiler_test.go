package operations

import (
	"bytes"
	"context"
	"log/slog"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tgcompile/internal/config"
	"tgcompile/internal/dataprocessing"
	apperrors "tgcompile/internal/errors"
	"tgcompile/internal/infrastructure"
	"tgcompile/internal/shared/testutil"
	"tgcompile/pkg/contracts/domain"
)

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Input.Dir = dir
	cfg.Keywords.Categories = []domain.KeywordCategory{
		{Name: "VPN_Terms", Keywords: []string{"فیلترشکن", "VPN"}},
		{Name: "Internet_Shutdown", Keywords: []string{"قطع اینترنت"}},
	}
	return cfg
}

func newTestCompiler(t *testing.T, cfg *config.Config) *Compiler {
	t.Helper()
	logger := infrastructure.NewLogger(&bytes.Buffer{}, nil)
	c, err := NewCompiler(cfg, nil, logger)
	require.NoError(t, err)
	return c
}

func TestNewCompiler_NilConfig(t *testing.T) {
	_, err := NewCompiler(nil, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestCompiler_Run_SkipsCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteExport(t, dir, "a.csv.csv", []byte("Message,Views\nفیلترشکن test,100\n"))
	testutil.WriteExport(t, dir, "b.csv.csv", testutil.CorruptBytes)
	testutil.WriteExport(t, dir, "notes.csv", []byte("Message,Views\nignored,5\n"))

	cfg := testConfig(t, dir)
	report, err := newTestCompiler(t, cfg).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.FilesFound)
	assert.Equal(t, int64(len("Message,Views\nفیلترشکن test,100\n")+len(testutil.CorruptBytes)), report.InputBytes)
	assert.Equal(t, 1, report.FilesLoaded)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "b.csv.csv", report.Skipped[0].File)
	assert.Equal(t, string(apperrors.ErrTypeDecode), report.Skipped[0].ErrorType)

	assert.Equal(t, 1, report.TotalMessages)
	assert.Equal(t, int64(100), report.TotalViews)
	assert.Equal(t, []domain.FileViews{{File: "a.csv.csv", Views: 100}}, report.FileViews)

	require.Len(t, report.CategoryTotals, 2)
	assert.Equal(t, domain.KeywordTotal{Keyword: "فیلترشکن", Total: 1}, report.CategoryTotals[0].Keywords[0])
	assert.Equal(t, int64(0), report.CategoryTotals[1].Keywords[0].Total)

	assert.Equal(t, cfg.OutputPath(), report.OutputPath)
	assert.Empty(t, report.XLSXPath)

	content, err := os.ReadFile(report.OutputPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
	lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Message,New Number,Views,Source File,فیلترشکن,VPN,قطع اینترنت", lines[0])
	assert.Equal(t, "فیلترشکن test,1,100,a.csv.csv,1,0,0", lines[1])
}

func TestCompiler_Run_StagesCompleted(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	testutil.WriteExport(t, dir, "a.csv.csv", []byte(testutil.ExportCSV(t,
		[]string{"Date", "Message", "Views"},
		[]string{"2024-01-01", "hello", "1"},
	)))

	logger, logs := testutil.NewTestLogger(t)
	c, err := NewCompiler(testConfig(t, dir), nil, logger)
	require.NoError(t, err)
	_, err = c.Run(context.Background())
	require.NoError(t, err)

	testutil.AssertNoErrors(t, logs)
	done := logs.Find(slog.LevelInfo, "Compile completed")
	require.Len(t, done, 1)
	assert.Equal(t, "compiler", done[0].Attrs["component"])
	assert.Equal(t, int64(1), done[0].Attrs["messages"])

	stages := c.Stages()
	require.Len(t, stages, len(StageOrder))
	for i, s := range stages {
		assert.Equal(t, StageOrder[i], s.ID)
		assert.Equal(t, StepStatusCompleted, s.GetStatus(), s.ID)
	}
}

func TestCompiler_Run_StageMetadata(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteExport(t, dir, "b.csv.csv", []byte("Message,Views\nVPN down,3\n"))
	testutil.WriteExport(t, dir, "a.csv.csv", []byte("Message,Views\nhello,1\n"))

	cfg := testConfig(t, dir)
	cfg.Keywords.Categories = append(cfg.Keywords.Categories,
		domain.KeywordCategory{Name: "Tools", Keywords: []string{"VPN"}})

	c := newTestCompiler(t, cfg)
	report, err := c.Run(context.Background())
	require.NoError(t, err)

	stages := c.Stages()
	discover, annotate := stages[0], stages[3]
	require.Equal(t, StageDiscover, discover.ID)
	require.Equal(t, StageAnnotate, annotate.ID)

	assert.Equal(t, []string{"a.csv.csv", "b.csv.csv"}, discover.Metadata["files"])
	assert.Equal(t, report.InputBytes, discover.Metadata["bytes"])
	assert.Equal(t, []string{"VPN"}, annotate.Metadata["shared_keywords"])
}

func TestCompiler_Run_NoValidFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteExport(t, dir, "empty.csv.csv", nil)

	cfg := testConfig(t, dir)
	c := newTestCompiler(t, cfg)
	report, err := c.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNoValidFiles))

	require.NotNil(t, report)
	assert.Equal(t, 1, report.FilesFound)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, string(apperrors.ErrTypeParsing), report.Skipped[0].ErrorType)

	_, statErr := os.Stat(cfg.OutputPath())
	assert.True(t, os.IsNotExist(statErr))

	statuses := map[string]StepStatus{}
	for _, s := range c.Stages() {
		statuses[s.ID] = s.GetStatus()
	}
	assert.Equal(t, StepStatusFailed, statuses[StageMerge])
	assert.Equal(t, StepStatusSkipped, statuses[StageAnnotate])
	assert.Equal(t, StepStatusSkipped, statuses[StageWrite])
}

func TestCompiler_Run_EmptyDirectory(t *testing.T) {
	report, err := newTestCompiler(t, testConfig(t, t.TempDir())).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNoValidFiles))
	assert.Zero(t, report.FilesFound)
}

func TestCompiler_Run_MissingDirectory(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing"))
	_, err := newTestCompiler(t, cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestCompiler_Run_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteExport(t, dir, "a.csv.csv", []byte("Message,Views\nhello,1\n"))

	cfg := testConfig(t, dir)
	cfg.Output.FileName = filepath.Join("blocked", "out.csv")
	testutil.WriteExport(t, dir, "blocked", []byte("not a directory"))

	c := newTestCompiler(t, cfg)
	report, err := c.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	assert.Equal(t, 1, report.TotalMessages)
	assert.Empty(t, report.OutputPath)
	assert.Equal(t, StepStatusFailed, c.Stages()[len(StageOrder)-1].GetStatus())
}

func TestCompiler_Run_XLSX(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteExport(t, dir, "a.csv.csv", []byte("Message,Views\nVPN vpn,3\n"))

	cfg := testConfig(t, dir)
	cfg.Output.XLSX = true
	report, err := newTestCompiler(t, cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cfg.XLSXPath(), report.XLSXPath)
	_, statErr := os.Stat(report.XLSXPath)
	assert.NoError(t, statErr)
	assert.Equal(t, int64(2), report.CategoryTotals[0].Keywords[1].Total)
}

func TestCompiler_Run_Cancelled(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteExport(t, dir, "a.csv.csv", []byte("Message,Views\nhello,1\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestCompiler(t, testConfig(t, dir)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompiler_Run_OutputReloadIsStable(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteExport(t, dir, "a.csv.csv", []byte("Date,Message,Views\n2024-01-01,VPN و فیلترشکن,10\n2024-01-02,قطع اینترنت در تهران,\n"))
	testutil.WriteExport(t, dir, "b.csv.csv", []byte("Message,Views,Channel\nفیلترشکن، فیلترشکن,7,news\n"))

	cfg := testConfig(t, dir)
	report, err := newTestCompiler(t, cfg).Run(context.Background())
	require.NoError(t, err)

	logger := infrastructure.NewLogger(&bytes.Buffer{}, nil)
	reloaded, err := dataprocessing.NewLoader(logger).LoadFile(report.OutputPath, filepath.Base(report.OutputPath))
	require.NoError(t, err)

	table, err := dataprocessing.Merge([]*domain.LoadedFile{reloaded})
	require.NoError(t, err)
	assert.False(t, table.SyntheticNewNumber)
	header := table.Columns

	annotator, err := dataprocessing.NewAnnotator(cfg.Keywords.Categories, logger)
	require.NoError(t, err)
	annotator.Annotate(table)

	assert.Equal(t, header, table.Columns)
	assert.Equal(t, report.CategoryTotals, dataprocessing.KeywordTotals(table, cfg.Keywords.Categories))
	assert.Equal(t, report.TotalViews, table.TotalViews())
}
