package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/tramita/pkg/store"
)

func quietEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv("TRAMITA_LOG_LEVEL", "error")
	t.Setenv("PUSHGATEWAY_URL", "")
	for _, key := range []string{"POSTGRES_USER", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB"} {
		t.Setenv(key, "")
	}
}

func writeInputs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	proposals := filepath.Join(dir, "projetos.csv")
	laws := filepath.Join(dir, "leis.csv")
	require.NoError(t, os.WriteFile(proposals, []byte(
		"lei;ementa;autor;data_publicacao\n"+
			"0123/2009;Dispõe sobre calçadas;Alice Silva;2009-03-01\n"+
			"0045/2010;Denomina praça;Bruno Araújo;2010-05-02\n"), 0644))
	require.NoError(t, os.WriteFile(laws, []byte(
		"lei;ano;status;inteiro_teor\n"+
			"15000;2010;Vigente;Lei 15.000 (Projeto de Lei nº 123/2009)\n"), 0644))
	return proposals, laws
}

func TestExtractCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"extract", "--type", "lei",
		"Lei 15.000 (Projeto de Lei nº 123/2009)",
		"Lei sem referência",
		"Proj. Lei 45, de 2010",
	}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "0123/2009\n\n0045/2010\n", stdout.String())
}

func TestExtractCommandAll(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"extract", "--all", "-t", "lei",
		"Projeto de Lei nº 1/2010 e Projeto de Lei nº 2/2011",
	}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	lines := bytes.Split(bytes.TrimSpace(stdout.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.True(t, bytes.HasPrefix(lines[0], []byte("0001/2010\t0\t")))
	assert.True(t, bytes.HasPrefix(lines[1], []byte("0002/2011\t")))
}

func TestGrammarsCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"grammars"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	output := stdout.String()
	for _, expected := range []string{
		"lei_comp",
		"eleitoral.projetos_lei_ordinaria",
		"eleitoral.projetos_emenda_lei_organica",
		"ProjetodeDecretoLegislativo | ProjDecretoLegislativo",
		"(optional)",
	} {
		assert.Contains(t, output, expected)
	}
}

func TestUsageErrors(t *testing.T) {
	quietEnvironment(t)
	proposals, laws := writeInputs(t)

	cases := []struct {
		name string
		args []string
	}{
		{name: "no_arguments", args: nil},
		{name: "missing_law_files", args: []string{"lei", proposals}},
		{name: "unknown_type", args: []string{"portaria", proposals, laws}},
		{name: "bad_dedup_order", args: []string{"lei", proposals, laws, "--dedup-order", "sideways"}},
		{name: "unknown_flag", args: []string{"lei", proposals, laws, "--bogus"}},
		{name: "sqlite_without_dsn", args: []string{"lei", proposals, laws, "--driver", "sqlite"}},
		{name: "missing_postgres_env", args: []string{"lei", proposals, laws}},
		{name: "extract_without_text", args: []string{"extract"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := execute(tc.args, &stdout, &stderr)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), "Error:")
			assert.Contains(t, stderr.String(), "Usage:")
		})
	}
}

func TestMissingInputFileIsNotUsageError(t *testing.T) {
	quietEnvironment(t)
	_, laws := writeInputs(t)

	var stdout, stderr bytes.Buffer
	code := execute([]string{"lei", filepath.Join(t.TempDir(), "absent.csv"), laws,
		"--dry-run", "--no-lookup"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "ingest error")
	assert.NotContains(t, stderr.String(), "Usage:")
}

func TestRunIntoSQLite(t *testing.T) {
	quietEnvironment(t)
	proposals, laws := writeInputs(t)
	dsn := filepath.Join(t.TempDir(), "tramita.db")

	args := []string{"lei", proposals, laws, "--driver", "sqlite", "--dsn", dsn, "--no-lookup"}
	for run := 0; run < 2; run++ {
		var stdout, stderr bytes.Buffer
		code := execute(args, &stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())
		assert.Contains(t, stdout.String(), "2 → eleitoral.projetos_lei_ordinaria")
	}

	ctx := context.Background()
	database, err := store.Open(ctx, store.DialectSQLite, dsn)
	require.NoError(t, err)
	defer database.Close()

	table := store.Table{Schema: "eleitoral", Name: "projetos_lei_ordinaria"}
	count, err := database.CountRows(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	rows, err := database.ReadMerged(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, "0045/2010", rows[0].Projeto)
	assert.Equal(t, "Não se aplica", rows[0].Status)
	assert.Equal(t, "15000", rows[1].Lei)
}

func TestDryRunJSONReport(t *testing.T) {
	quietEnvironment(t)
	proposals, laws := writeInputs(t)

	var stdout, stderr bytes.Buffer
	code := execute([]string{"lei", proposals + "," + proposals, laws,
		"--dry-run", "--no-lookup", "--json"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), `"dry_run": true`)
	assert.Contains(t, stdout.String(), `"proposals_loaded": 4`)
	assert.Contains(t, stdout.String(), `"duplicates": 2`)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a.csv", "b.csv"}, splitList(" a.csv, ,b.csv,"))
	assert.Nil(t, splitList(""))
}
