package analysis

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/reviewer/internal/cache"
	"github.com/panbanda/reviewer/pkg/analyzer/engine"
	"github.com/panbanda/reviewer/pkg/config"
	"github.com/panbanda/reviewer/pkg/models"
	"github.com/panbanda/reviewer/pkg/source"
)

func memorySource() *source.MemorySource {
	src := source.NewMemory(map[string]string{
		"web/app.js":     "const a = 1\neval(a)\n",
		"App/Todo.swift": "// TODO: finish\nlet x = 1\n",
		"tools/run.py":   "print(1)\n",
	})
	src.Put("App/blob.swift", []byte{'a', 0, 'b'})
	return src
}

func TestAnalyzeCode(t *testing.T) {
	svc := New()

	result, err := svc.AnalyzeCode(context.Background(), "eval(x)", "JavaScript", Options{})
	require.NoError(t, err)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "Use of eval() detected - security risk", result.Issues[0].Description)

	result, err = svc.AnalyzeCode(context.Background(), "let x = 1", "  ", Options{})
	require.NoError(t, err)
	assert.Equal(t, "Swift", result.Language)
}

func TestAnalyzeCodeOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.Modules = []string{"bugs"}
	svc := New(WithConfig(cfg))
	code := "// TODO\neval(x)"

	result, err := svc.AnalyzeCode(context.Background(), code, "js", Options{})
	require.NoError(t, err)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, models.CategoryBug, result.Issues[0].Category)

	result, err = svc.AnalyzeCode(context.Background(), code, "js", Options{Modules: []string{"security"}})
	require.NoError(t, err)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, models.CategorySecurity, result.Issues[0].Category)
}

func TestAnalyzeFiles(t *testing.T) {
	var ticks atomic.Int32
	svc := New(WithSource(memorySource()), WithWorkers(2))

	files := []string{"web/app.js", "App/Todo.swift", "tools/run.py", "App/blob.swift", "App/missing.swift"}
	batch, err := svc.AnalyzeFiles(context.Background(), files, Options{OnProgress: func() { ticks.Add(1) }})
	require.NoError(t, err)

	assert.Equal(t, int32(5), ticks.Load())

	got := make([]string, len(batch.Files))
	for i, f := range batch.Files {
		got[i] = f.File
	}
	assert.Equal(t, []string{"App/Todo.swift", "tools/run.py", "web/app.js"}, got)
	assert.Equal(t, "Swift", batch.Files[0].Language)
	assert.Equal(t, "Python", batch.Files[1].Language)
	assert.Equal(t, "JavaScript", batch.Files[2].Language)
	require.Len(t, batch.Files[2].Issues, 1)
	assert.Equal(t, models.SeverityHigh, batch.Files[2].Issues[0].Severity)

	require.Len(t, batch.Errors, 2)
	assert.Equal(t, "App/blob.swift", batch.Errors[0].File)
	assert.Contains(t, batch.Errors[0].Error, "binary content")
	assert.Equal(t, "App/missing.swift", batch.Errors[1].File)
}

func TestAnalyzeFilesResourceLimit(t *testing.T) {
	svc := New(
		WithSource(memorySource()),
		WithEngine(engine.New(engine.WithMaxBytes(12))),
	)

	batch, err := svc.AnalyzeFiles(context.Background(), []string{"tools/run.py", "web/app.js"}, Options{})
	require.NoError(t, err)
	require.Len(t, batch.Files, 1)
	assert.Equal(t, "tools/run.py", batch.Files[0].File)
	require.Len(t, batch.Errors, 1)
	assert.Contains(t, batch.Errors[0].Error, "bytes")
}

func TestAnalyzeFilesRejectsUnknownModule(t *testing.T) {
	svc := New(WithSource(memorySource()))
	_, err := svc.AnalyzeFiles(context.Background(), []string{"web/app.js"}, Options{Modules: []string{"lint"}})
	assert.ErrorIs(t, err, engine.ErrUnknownModule)
}

func TestAnalyzeFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithSource(memorySource())).AnalyzeFiles(ctx, []string{"web/app.js"}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeFilesUsesCache(t *testing.T) {
	c, err := cache.New(filepath.Join(t.TempDir(), "cache"), 24, true, "fp")
	require.NoError(t, err)
	src := memorySource()
	svc := New(WithSource(src), WithCache(c))

	first, err := svc.AnalyzeFiles(context.Background(), []string{"web/app.js"}, Options{})
	require.NoError(t, err)
	require.Len(t, first.Files[0].Issues, 1)

	// Plant a distinguishable entry under the same key; a hit must return it.
	text, err := source.Text(src, "web/app.js")
	require.NoError(t, err)
	planted := &models.AnalysisResult{Language: "JavaScript", Summary: models.Summarize(nil, 3)}
	require.NoError(t, c.Set("web/app.js", cacheKey(svc.request(text, "JavaScript", Options{})), planted))

	second, err := svc.AnalyzeFiles(context.Background(), []string{"web/app.js"}, Options{})
	require.NoError(t, err)
	assert.Empty(t, second.Files[0].Issues)

	// A different selection misses and recomputes.
	third, err := svc.AnalyzeFiles(context.Background(), []string{"web/app.js"}, Options{Depth: models.DepthDeep})
	require.NoError(t, err)
	assert.Len(t, third.Files[0].Issues, 1)
}

func TestCacheKeyVariesBySelection(t *testing.T) {
	base := engine.Request{Code: "x", Language: "Swift"}
	deep := base
	deep.Depth = models.DepthDeep
	mods := base
	mods.Modules = []string{"style"}
	lang := base
	lang.Language = "Python"

	keys := map[string]bool{
		cacheKey(base): true,
		cacheKey(deep): true,
		cacheKey(mods): true,
		cacheKey(lang): true,
	}
	assert.Len(t, keys, 4)
	assert.Equal(t, cacheKey(base), cacheKey(engine.Request{Code: "x", Language: "Swift"}))
}
