package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poyrazK/domainfolio/internal/adapters/kvstore"
	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/core/services"
	"github.com/poyrazK/domainfolio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// memoryOpener shares one in-memory store across every command run.
func memoryOpener(t *testing.T, records ...domain.DomainRecord) opener {
	t.Helper()
	store := kvstore.NewMemoryStore()
	src := &testutil.StaticSeed{Records: records}

	p, err := services.NewPortfolio(src, store, 0, nil)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	p.Clock = func() time.Time { return testNow }
	g := services.NewGateway(src, store, p, nil)
	g.Clock = p.Clock

	return func(context.Context) (*env, error) {
		return &env{portfolio: p, gateway: g, close: func() {}}, nil
	}
}

func execute(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd(open)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseImport(t *testing.T) {
	rows, err := parseImport(strings.NewReader("name,type,project\nwww.A.com, seo ,Retail\n\nb.net\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].line)
	assert.Equal(t, "www.A.com", *rows[0].patch.Name)
	assert.Equal(t, domain.TypeSEO, *rows[0].patch.Type)
	assert.Equal(t, "Retail", *rows[0].patch.Project)
	assert.Nil(t, rows[0].patch.Department)

	assert.Equal(t, "b.net", *rows[1].patch.Name)
	assert.Nil(t, rows[1].patch.Type)
}

func TestImportAndExport(t *testing.T) {
	open := memoryOpener(t, testutil.Seed("d1", "a.com", domain.StatusActual, ""))
	path := writeFile(t, "in.csv", "name,type\nhttps://new.io/,landing\nA.com\nbad name\n")

	out, err := execute(t, open, "import", path)
	assert.ErrorContains(t, err, "1 rows failed")
	assert.Contains(t, out, "1 created, 1 skipped, 1 failed")

	out, err = execute(t, open, "export")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], `"new.io","landing"`))

	target := filepath.Join(t.TempDir(), "out.csv")
	out, err = execute(t, open, "export", "--ids", "d1", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "domains-selected-2025-06-01.csv")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestImportDryRun(t *testing.T) {
	open := memoryOpener(t)
	path := writeFile(t, "in.csv", "ok.com\nnot a domain\nfine.org,garbage\n")

	out, err := execute(t, open, "import", "--dry-run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "3 rows, 2 invalid")

	out, err = execute(t, open, "export")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestValidateAndDuplicates(t *testing.T) {
	clean := memoryOpener(t, testutil.Seed("d1", "a.com", domain.StatusActual, ""))
	out, err := execute(t, clean, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "1 domains OK")

	out, err = execute(t, clean, "duplicates")
	require.NoError(t, err)
	assert.Contains(t, out, "No duplicates.")

	dirty := memoryOpener(t,
		testutil.Seed("d1", "a.com", domain.StatusActual, ""),
		testutil.Seed("d2", "WWW.A.com", domain.StatusActual, ""),
		testutil.Seed("d3", "nodot", domain.StatusActual, ""),
	)
	out, err = execute(t, dirty, "validate")
	assert.ErrorContains(t, err, "2 problems found")
	assert.Contains(t, out, "duplicate a.com: d1, d2")
	assert.Contains(t, out, "d3: domain name must contain a dot")

	out, err = execute(t, dirty, "duplicates")
	require.NoError(t, err)
	assert.Contains(t, out, "a.com")
	assert.Contains(t, out, "d1, d2")
}

func TestExpiring(t *testing.T) {
	open := memoryOpener(t,
		testutil.Seed("d1", "soon.com", domain.StatusActual, "2025-06-11"),
		testutil.Seed("d2", "later.com", domain.StatusActual, "2025-09-01"),
		testutil.Seed("d3", "gone.com", domain.StatusActual, "2025-05-01"),
	)

	out, err := execute(t, open, "expiring")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "gone.com")
	assert.Contains(t, lines[1], "expired")
	assert.Contains(t, lines[2], "soon.com")

	out, err = execute(t, open, "expiring", "--days", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "later.com")

	_, err = execute(t, open, "expiring", "--days", "-1")
	assert.Error(t, err)
}

func TestExportHidden(t *testing.T) {
	open := memoryOpener(t,
		testutil.Seed("d1", "a.com", domain.StatusActual, ""),
		testutil.Seed("d2", "b.com", domain.StatusSpare, ""),
	)
	e, err := open(context.Background())
	require.NoError(t, err)
	require.NoError(t, e.gateway.HideDomains(context.Background(), []string{"d2"}))

	out, err := execute(t, open, "export", "--hidden", "--ids", "d2,d1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `"b.com",`))

	out, err = execute(t, open, "export", "-q", "a.com")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}
