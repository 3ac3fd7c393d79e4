package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/solidkart/internal/domain/discount"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "vip", args: []string{"quote", "--category", "vip", "--amount", "100"}, want: "90.00\n"},
		{name: "student", args: []string{"quote", "-c", "student", "-a", "100.0"}, want: "95.00\n"},
		{name: "alias", args: []string{"quote", "-c", "Estudante", "-a", "100"}, want: "95.00\n"},
		{name: "regular by default", args: []string{"quote", "-a", "42.5"}, want: "42.50\n"},
		{
			name: "detailed",
			args: []string{"quote", "-c", "vip", "-a", "100", "--detailed"},
			want: "category:   vip\namount:     100.00\ndiscounted: 90.00\nsaved:      10.00\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestQuote_Errors(t *testing.T) {
	_, err := execute(t, "quote", "-c", "gold", "-a", "100")
	require.ErrorIs(t, err, discount.ErrUnknownCategory)

	_, err = execute(t, "quote", "-c", "vip", "-a", "-1")
	require.ErrorIs(t, err, discount.ErrNegativeAmount)

	_, err = execute(t, "quote", "-c", "vip", "-a", "1e100000")
	require.ErrorIs(t, err, discount.ErrAmountOutOfRange)

	_, err = execute(t, "quote", "-c", "vip", "-a", "abc")
	require.Error(t, err)

	_, err = execute(t, "quote", "-c", "vip")
	require.Error(t, err)
}

func TestCategories(t *testing.T) {
	out, err := execute(t, "categories")
	require.NoError(t, err)
	assert.Equal(t, "regular\nstudent\nvip\n", out)
}

func TestReport(t *testing.T) {
	t.Run("default pipeline", func(t *testing.T) {
		out, err := execute(t, "report")
		require.NoError(t, err)
		assert.Equal(t, "Relatório formatado: dados do relatório\n", out)
	})

	t.Run("saved to directory", func(t *testing.T) {
		dir := t.TempDir()
		out, err := execute(t, "report", "--data", "vendas", "--dir", dir, "--gzip")
		require.NoError(t, err)
		assert.Equal(t, "Relatório formatado: vendas\n", out)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, strings.HasSuffix(entries[0].Name(), ".txt.gz"))
		assert.FileExists(t, filepath.Join(dir, entries[0].Name()))
	})

	t.Run("gzip requires a directory", func(t *testing.T) {
		out, err := execute(t, "report", "--gzip")
		require.ErrorIs(t, err, errGzipWithoutDir)
		assert.Empty(t, out)
	})
}

func TestRules_RequireDatabase(t *testing.T) {
	_, err := execute(t, "rules", "list")
	require.ErrorIs(t, err, errNoDatabase)

	_, err = execute(t, "rules", "set", "-c", "employee", "-p", "20")
	require.ErrorIs(t, err, errNoDatabase)

	_, err = execute(t, "rules", "set", "-c", "employee", "-p", "120")
	require.ErrorIs(t, err, discount.ErrInvalidRule)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriteRules(t *testing.T) {
	rules := []discount.Rule{
		{Category: "employee", PercentOff: decimal.RequireFromString("20"), Description: "Staff"},
		{Category: "partner", PercentOff: decimal.RequireFromString("12.5")},
	}

	var out bytes.Buffer
	require.NoError(t, writeRules(&out, rules))
	assert.Equal(t, "CATEGORY  PERCENT OFF  DESCRIPTION\n"+
		"employee  20           Staff\n"+
		"partner   12.5         \n", out.String())

	require.Error(t, writeRules(brokenWriter{}, rules))
}
