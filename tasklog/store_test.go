package tasklog

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlpaslanErdag/Orchestrator/core"
)

var (
	_ core.TaskLogStore = (*InMemoryStore)(nil)
	_ core.TaskLogStore = (*SQLiteStore)(nil)
)

func sampleLog(i int) core.TaskLog {
	return core.TaskLog{
		ID:             fmt.Sprintf("log-%d", i),
		AgentID:        "researcher",
		InputQuery:     fmt.Sprintf("query %d", i),
		ThoughtProcess: "system: ...\nuser: ...",
		FinalOutput:    fmt.Sprintf("answer %d", i),
		ArtifactPath:   "/tmp/report.pdf",
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, i, 0, time.UTC),
	}
}

func TestInMemoryStore_AppendListGet(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Append(sampleLog(1)))
	require.NoError(t, s.Append(sampleLog(2)))

	logs := s.List()
	require.Len(t, logs, 2)
	assert.Equal(t, "log-1", logs[0].ID)
	assert.Equal(t, "log-2", logs[1].ID)

	got, err := s.Get("log-2")
	require.NoError(t, err)
	assert.Equal(t, "answer 2", got.FinalOutput)

	_, err = s.Get("log-9")
	assert.Error(t, err)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Append(sampleLog(i)))
	}

	logs, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	// Newest first.
	assert.Equal(t, "log-3", logs[0].ID)
	assert.Equal(t, "log-1", logs[2].ID)

	limited, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	got, err := s.Get("log-2")
	require.NoError(t, err)
	assert.Equal(t, "researcher", got.AgentID)
	assert.Equal(t, "query 2", got.InputQuery)
	assert.Equal(t, "/tmp/report.pdf", got.ArtifactPath)
	assert.True(t, got.CreatedAt.Equal(sampleLog(2).CreatedAt))

	_, err = s.Get("log-9")
	assert.Error(t, err)
}

func TestSQLiteStore_DefaultsCreatedAt(t *testing.T) {
	s, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	log := sampleLog(1)
	log.CreatedAt = time.Time{}
	require.NoError(t, s.Append(log))

	got, err := s.Get("log-1")
	require.NoError(t, err)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLiteStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenSQLite(dir)
	require.NoError(t, err)
	require.NoError(t, s.Append(sampleLog(1)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	logs, err := s.List(0)
	require.NoError(t, err)
	assert.Len(t, logs, 1, "logs survive process restarts")
}

func TestOpenSQLite_RequiresDataDir(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}
