package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTrailRecord(t *testing.T) {
	dir := t.TempDir()
	trail := NewTrail(dir, zap.NewNop())
	trail.now = func() time.Time { return time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC) }

	trail.Record("consignment-incoming", map[string]string{"customer": "SO1"})

	entries, err := os.ReadDir(filepath.Join(dir, "consignment-incoming"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "consignment-incoming-20250610T083000.000-"))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".json"))

	raw, err := os.ReadFile(filepath.Join(dir, "consignment-incoming", entries[0].Name()))
	require.NoError(t, err)

	var got struct {
		Data    map[string]string `json:"data"`
		SavedAt time.Time         `json:"savedAt"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, map[string]string{"customer": "SO1"}, got.Data)
	assert.Equal(t, time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC), got.SavedAt)
}

func TestTrailRecordUniqueFilenames(t *testing.T) {
	dir := t.TempDir()
	trail := NewTrail(dir, zap.NewNop())

	for i := 0; i < 5; i++ {
		trail.Record("sweep-status", map[string]int{"run": i})
	}

	entries, err := os.ReadDir(filepath.Join(dir, "sweep-status"))
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestTrailRecordFailureIsSwallowed(t *testing.T) {
	// Pointing the trail at a file path makes MkdirAll fail; Record must not
	// panic or propagate anything.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	trail := NewTrail(blocker, zap.NewNop())
	trail.Record("anything", "payload")
}
