package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/tabula/engine"
	"github.com/spektr-org/tabula/schema"
	"github.com/spektr-org/tabula/table"
)

// syncBuffer is a bytes.Buffer safe for the watch goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// reloaded matches the summary of a reload that saw the appended rows.
var reloaded = regexp.MustCompile(`([2-9]) of ([2-9]) rows`)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.csv")
	require.NoError(t, os.WriteFile(path, []byte("n\n1\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	cmd := NewWatchCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{path})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "1 of 1 rows")
	}, 5*time.Second, 20*time.Millisecond)

	// Appending triggers a reload with the new row count.
	require.Eventually(t, func() bool {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return false
		}
		_, _ = f.WriteString("2\n")
		_ = f.Close()
		time.Sleep(2 * watchDebounce)
		return reloaded.MatchString(out.String())
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRejectsStdin(t *testing.T) {
	cmd := NewWatchCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-"})
	assert.Error(t, cmd.Execute())
}

func TestColumnDetails(t *testing.T) {
	lo, hi := 1200.0, 98000.5
	assert.Equal(t, "1,200 .. 98,000.5", columnDetails(schema.ColumnType{Kind: schema.KindNumber, Min: &lo, Max: &hi}))

	values := make([]table.Value, 7)
	for i := range values {
		values[i] = table.Text(string(rune('a' + i)))
	}
	assert.Equal(t, "a, b, c, d, e (+2 more)", columnDetails(schema.ColumnType{Kind: schema.KindString, UniqueValues: values}))
	assert.Empty(t, columnDetails(schema.ColumnType{Kind: schema.KindString}))
	assert.Empty(t, columnDetails(schema.ColumnType{Kind: schema.KindDate}))
}

func TestRecordHeaders(t *testing.T) {
	rows := []table.Row{
		table.NewRow(table.F("x", "1"), table.F("y", "2")),
		table.NewRow(table.F("y", "3"), table.F("z", "4")),
	}
	assert.Equal(t, []string{"x", "y", "z"}, recordHeaders(rows))
	assert.Nil(t, recordHeaders(nil))
}

func TestWriteRowsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRows(&buf, []string{"a"}, []table.Row{}, outputTable))
	assert.Equal(t, "(0 rows)\n", buf.String())

	buf.Reset()
	require.NoError(t, writeRows(&buf, []string{"a"}, []table.Row{}, outputJSON))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, writeRows(&buf, []string{"a", "b"}, []table.Row{}, outputCSV))
	assert.Equal(t, "a,b\n", buf.String())
}

func TestBreakdownGrid(t *testing.T) {
	slices := engine.Breakdown([]table.Row{
		table.NewRow(table.F("c", "x"), table.F("v", "3")),
		table.NewRow(table.F("c", "y"), table.F("v", "1")),
	}, "c", "v")

	var buf bytes.Buffer
	require.NoError(t, breakdownGrid("c", "v", slices).render(&buf, outputMarkdown))
	out := buf.String()
	assert.Contains(t, out, "| c | v | Rows | Share | Color |")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, engine.Color(1))
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseOutput(t *testing.T) {
	diskFull := errors.New("no space left on device")

	var err error
	closeOutput(failingCloser{err: diskFull}, "out.csv", &err)
	assert.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "out.csv")

	// A write error is kept over the close error.
	writeErr := errors.New("short write")
	err = writeErr
	closeOutput(failingCloser{err: diskFull}, "out.csv", &err)
	assert.Equal(t, writeErr, err)

	err = nil
	closeOutput(failingCloser{}, "out.csv", &err)
	assert.NoError(t, err)
}

func TestWriteOutput(t *testing.T) {
	write := func(w io.Writer) error {
		_, err := io.WriteString(w, "a,b\n")
		return err
	}

	var stdout bytes.Buffer
	require.NoError(t, writeOutput(&stdout, "", write))
	assert.Equal(t, "a,b\n", stdout.String())

	path := filepath.Join(t.TempDir(), "out.csv")
	stdout.Reset()
	require.NoError(t, writeOutput(&stdout, path, write))
	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	assert.ErrorIs(t, writeOutput(&stdout, filepath.Join(t.TempDir(), "missing", "out.csv"), write), os.ErrNotExist)

	failed := errors.New("render failed")
	assert.ErrorIs(t, writeOutput(&stdout, path, func(io.Writer) error { return failed }), failed)
}

func TestInferStopsWhenCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("n\n1\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	cmd := NewInferCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path, path})

	assert.ErrorIs(t, cmd.ExecuteContext(ctx), context.Canceled)
	assert.Empty(t, out.String())
}
