package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagegen/internal/foundation/errors"
)

// fixture lays out a dataset and two templates in separate directories.
type fixture struct {
	root   string
	json   string
	detail string
	list   string
	out    string
}

func newFixture(t *testing.T, data, detail, list string) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:   root,
		json:   filepath.Join(root, "data", "records.json"),
		detail: filepath.Join(root, "templates", "detail.html"),
		list:   filepath.Join(root, "layouts", "list.html"),
		out:    filepath.Join(root, "public"),
	}
	for path, content := range map[string]string{f.json: data, f.detail: detail, f.list: list} {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return f
}

func (f *fixture) cli() *CLI {
	return &CLI{JSONPath: f.json, DetailTemplate: f.detail, ListTemplate: f.list, OutputDir: f.out}
}

func quietLogs(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestRunEndToEnd(t *testing.T) {
	quietLogs(t)
	f := newFixture(t, `[{"name":{"eng":"Red Fox"}}]`, "{{ .item.name.eng }}", "{{ len .items }}")

	require.NoError(t, f.cli().Run())

	detail, err := os.ReadFile(filepath.Join(f.out, "red_fox.html"))
	require.NoError(t, err)
	assert.Contains(t, string(detail), "Red Fox")

	index, err := os.ReadFile(filepath.Join(f.out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "1")
}

func TestRunListingLinksToDetailPages(t *testing.T) {
	quietLogs(t)
	f := newFixture(t,
		`[{"data":{"name":{"eng":"Fireball","rus":"Огненный шар"},"tier":"S"}},{"name":{"rus":"Щит"}},"noise"]`,
		`<h1>{{ displayName .item }}</h1><p>{{ .item.tier | default "-" }}</p>`,
		`{{ range .items }}<a href="{{ .filename }}">{{ displayName . }}</a>{{ end }}`)

	require.NoError(t, f.cli().Run())

	index, err := os.ReadFile(filepath.Join(f.out, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, `<a href="fireball.html">Fireball</a><a href="unknown.html">Щит</a>`, string(index))

	detail, err := os.ReadFile(filepath.Join(f.out, "fireball.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Fireball</h1><p>S</p>", string(detail))
}

func TestRunMissingJSONLeavesNoOutput(t *testing.T) {
	quietLogs(t)
	f := newFixture(t, "[]", "d", "l")
	c := f.cli()
	c.JSONPath = filepath.Join(f.root, "absent.json")

	err := c.Run()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	assert.NotEqual(t, 0, c.Execute())
	assert.NoDirExists(t, f.out)
}

func TestRunTemplateErrorsBeforeWriting(t *testing.T) {
	quietLogs(t)
	f := newFixture(t, `[{"name":{"eng":"A"}}]`, "ok", "{{ range .items }}")

	err := f.cli().Run()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryRender))
	assert.NoDirExists(t, f.out)
}

func TestRunMissingTemplate(t *testing.T) {
	quietLogs(t)
	f := newFixture(t, `[]`, "ok", "ok")
	c := f.cli()
	c.ListTemplate = filepath.Join(f.root, "layouts", "absent.html")

	err := c.Run()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestRunNonArrayJSON(t *testing.T) {
	quietLogs(t)
	f := newFixture(t, `{"name":{"eng":"A"}}`, "ok", "ok")

	err := f.cli().Run()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Equal(t, 2, f.cli().Execute())
}

func TestRunWithConfigAndMetrics(t *testing.T) {
	quietLogs(t)
	f := newFixture(t, `[{"name":{"eng":"A"}},{"name":{"eng":"a"}}]`, "{{ .item.filename }}", "{{ len .items }}")
	cfgPath := filepath.Join(f.root, "pagegen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  index_file: all.html\n"), 0o600))

	c := f.cli()
	c.Config = cfgPath
	c.MetricsFile = filepath.Join(f.root, "pagegen.prom")
	require.NoError(t, c.Run())

	assert.FileExists(t, filepath.Join(f.out, "all.html"))
	assert.NoFileExists(t, filepath.Join(f.out, "index.html"))

	prom, err := os.ReadFile(c.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `pagegen_pages_total{kind="detail",result="success"} 2`)
	assert.Contains(t, string(prom), "pagegen_slug_collisions_total 1")
	assert.Contains(t, string(prom), `pagegen_run_outcomes_total{outcome="success"} 1`)
}

func TestRunMetricsOnFailure(t *testing.T) {
	quietLogs(t)
	f := newFixture(t, `not json`, "ok", "ok")
	c := f.cli()
	c.MetricsFile = filepath.Join(f.root, "pagegen.prom")

	require.Error(t, c.Run())
	prom, err := os.ReadFile(c.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `pagegen_run_outcomes_total{outcome="failed"} 1`)
}

func TestParsePositionals(t *testing.T) {
	quietLogs(t)
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)

	_, err = parser.Parse([]string{"-v", "data.json", "tpl/detail.html", "tpl/list.html", "out"})
	require.NoError(t, err)
	assert.True(t, cli.Verbose)
	assert.Equal(t, "data.json", cli.JSONPath)
	assert.Equal(t, "tpl/detail.html", cli.DetailTemplate)
	assert.Equal(t, "tpl/list.html", cli.ListTemplate)
	assert.Equal(t, "out", cli.OutputDir)

	var short CLI
	parser, err = kong.New(&short, kong.Vars{"version": "test"})
	require.NoError(t, err)
	_, err = parser.Parse([]string{"data.json", "detail.html"})
	require.Error(t, err)
}
