package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
)

func TestTranscript_WritesHeaderBodyAndFooter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var console bytes.Buffer

	tr, err := logging.OpenTranscript(dir, "predict", []string{"ctapred", "predict", "--k", "3"})
	require.NoError(t, err)
	tr.WithConsole(&console)

	tr.Printf("Data set: QueryList1")
	require.NoError(t, tr.Close())

	data, err := os.ReadFile(filepath.Join(dir, "predict_log.txt"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "ctapred predict --k 3")
	assert.Contains(t, content, "Start time: ")
	assert.Contains(t, content, "Data set: QueryList1")
	assert.Contains(t, content, "Finish time: ")
	assert.Contains(t, console.String(), "Data set: QueryList1")
}

func TestTranscript_AppendsAcrossRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for run := 0; run < 2; run++ {
		tr, err := logging.OpenTranscript(dir, "generate", []string{"ctapred", "generate"})
		require.NoError(t, err)
		tr.WithConsole(nil)
		require.NoError(t, tr.Close())
	}

	data, err := os.ReadFile(filepath.Join(dir, "generate_log.txt"))
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(string(data), "Start time: "))
	assert.Equal(t, 2, strings.Count(string(data), "Finish time: "))
}

func TestTranscript_CreatesMissingDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "output", "nested")

	tr, err := logging.OpenTranscript(dir, "update", []string{"ctapred", "update"})
	require.NoError(t, err)
	tr.WithConsole(nil)
	require.NoError(t, tr.Close())

	_, err = os.Stat(filepath.Join(dir, "update_log.txt"))
	assert.NoError(t, err)
}

func TestTranscript_NilIsSafe(t *testing.T) {
	t.Parallel()

	var tr *logging.Transcript
	tr.Printf("ignored")
	assert.NoError(t, tr.Close())
}
