package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/barista/pkg/adapters/csv"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/aretw0/barista/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvConfig(t *testing.T) (configPath, ordersPath string) {
	t.Helper()
	dir := t.TempDir()
	ordersPath = filepath.Join(dir, "out", "orders.csv")
	configPath = filepath.Join(dir, "barista.yaml")
	body := "log:\n  level: error\nsink:\n  type: csv\n  csv:\n    path: " + ordersPath + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0644))
	return configPath, ordersPath
}

func TestRunSession_TextToCSV(t *testing.T) {
	configPath, ordersPath := csvConfig(t)
	var out bytes.Buffer

	err := RunSession(context.Background(), RunOptions{
		ConfigPath: configPath,
		In:         strings.NewReader("1\nalice \n1\n2\n2\n3\n1\n"),
		Out:        &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "# Thank You, Alice!")
	assert.Contains(t, out.String(), ">>> Goodbye! (left at thank_you)")

	rows, err := csv.New(ordersPath).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Alice", "Cold Brew", "2", "400", "800", "800"}, rows[0][1:])
}

func TestRunSession_JSONIsQuiet(t *testing.T) {
	configPath, _ := csvConfig(t)
	var out bytes.Buffer

	err := RunSession(context.Background(), RunOptions{
		ConfigPath: configPath,
		JSON:       true,
		In:         strings.NewReader(`{"type":"begin"}` + "\n"),
		Out:        &out,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var frame runner.Frame
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &frame))
	require.NotNil(t, frame.View)
	assert.Equal(t, domain.StepNameEntry, frame.View.Step)
}

func TestRunSession_BadConfig(t *testing.T) {
	err := RunSession(context.Background(), RunOptions{
		ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"),
		In:         strings.NewReader(""),
		Out:        &bytes.Buffer{},
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
