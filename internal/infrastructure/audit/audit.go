// Package audit persists a JSON file per pipeline event so operators can
// inspect exactly what each webhook or sweep saw and wrote.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Trail writes audit entries under a base directory, one subdirectory per
// event kind. Recording is strictly best effort: a failed write is logged and
// swallowed so the pipeline's own outcome is never affected.
type Trail struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewTrail creates a trail rooted at dir. The directory tree is created
// lazily on first record of each kind.
func NewTrail(dir string, logger *zap.Logger) *Trail {
	return &Trail{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}
}

// entry is the persisted envelope: the payload plus the time it was saved.
type entry struct {
	Data    any       `json:"data"`
	SavedAt time.Time `json:"savedAt"`
}

// Record persists data under the given event kind. Filenames embed the kind,
// a sortable timestamp, and a random suffix so concurrent records of the same
// kind never collide.
func (t *Trail) Record(kind string, data any) {
	dir := filepath.Join(t.dir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.logger.Warn("Failed to create audit directory",
			zap.String("kind", kind),
			zap.Error(err),
		)
		return
	}

	now := t.now().UTC()
	name := fmt.Sprintf("%s-%s-%s.json", kind, now.Format("20060102T150405.000"), uuid.NewString()[:8])

	encoded, err := json.MarshalIndent(entry{Data: data, SavedAt: now}, "", "  ")
	if err != nil {
		t.logger.Warn("Failed to encode audit entry",
			zap.String("kind", kind),
			zap.Error(err),
		)
		return
	}
	if err := os.WriteFile(filepath.Join(dir, name), encoded, 0o644); err != nil {
		t.logger.Warn("Failed to write audit entry",
			zap.String("kind", kind),
			zap.String("file", name),
			zap.Error(err),
		)
	}
}
