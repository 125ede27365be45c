package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-acre-fund/application-score-card/internal/domain"
	"github.com/one-acre-fund/application-score-card/internal/ports"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestDirectorySource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-payments.json", `{"entityRef":{"kind":"api","name":"payments"}}`)
	writeFile(t, dir, "a-billing.JSON", `{"entityRef":{"kind":"component","name":"billing"}}`)
	writeFile(t, dir, "notes.md", "# not a record")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	docs, err := NewDirectorySource(dir).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, filepath.Join(dir, "a-billing.JSON"), docs[0].Source)
	assert.Equal(t, filepath.Join(dir, "b-payments.json"), docs[1].Source)
	assert.Contains(t, string(docs[1].Data), "payments")
	assert.NoError(t, docs[0].Err)
}

func TestDirectorySource_Empty(t *testing.T) {
	docs, err := NewDirectorySource(t.TempDir()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDirectorySource_Missing(t *testing.T) {
	_, err := NewDirectorySource(filepath.Join(t.TempDir(), "missing")).Load(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrSourceNotFound)

	var inputErr *ports.InputError
	assert.True(t, errors.As(err, &inputErr))
}

func TestDirectorySource_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "record.json", "{}")

	_, err := NewDirectorySource(filepath.Join(dir, "record.json")).Load(context.Background())
	assert.ErrorIs(t, err, ports.ErrSourceNotFound)
}

func TestDirectorySource_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", "{}")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDirectorySource(dir).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "z.json", `{"a":1}`)
	writeFile(t, dir, "a.json", `{"b":2}`)
	missing := filepath.Join(dir, "missing.json")

	docs, err := NewFileSource(filepath.Join(dir, "z.json"), missing, filepath.Join(dir, "a.json")).
		Load(context.Background())
	require.NoError(t, err)

	require.Len(t, docs, 3)
	assert.Equal(t, filepath.Join(dir, "z.json"), docs[0].Source, "order of arguments is kept")
	assert.JSONEq(t, `{"a":1}`, string(docs[0].Data))
	assert.ErrorIs(t, docs[1].Err, ports.ErrSourceNotFound)
	assert.Nil(t, docs[1].Data)
	assert.NoError(t, docs[2].Err)
}

func TestJSONFileSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "scorecards.json")
	sink := NewJSONFileSink(path)

	records := []domain.NormalizedRecord{
		{
			EntityRef:            domain.EntityRef{Kind: "component", Name: "billing"},
			GeneratedDateTimeUTC: "2026-02-01T10:00:00Z",
			ScorePercent:         72,
			ScoreLabel:           domain.Green,
			ScoreSuccess:         domain.AlmostSuccess,
			AreaScores: []domain.AreaSummary{
				{ID: 1, Title: "Docs", ScorePercent: 72, ScoreLabel: domain.Green, ScoreSuccess: domain.AlmostSuccess},
			},
		},
	}
	require.NoError(t, sink.Write(context.Background(), records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []domain.NormalizedRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, records, got)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJSONFileSink_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scorecards.json")
	sink := NewJSONFileSink(path)

	require.NoError(t, sink.Write(context.Background(), []domain.NormalizedRecord{
		{EntityRef: domain.EntityRef{Kind: "api", Name: "old"}, AreaScores: []domain.AreaSummary{}},
	}))
	require.NoError(t, sink.Write(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestJSONFileSink_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	writeFile(t, dir, "file", "x")

	err := NewJSONFileSink(filepath.Join(blocker, "scorecards.json")).Write(context.Background(), nil)
	require.Error(t, err)

	var outputErr *ports.OutputError
	assert.True(t, errors.As(err, &outputErr))
}
