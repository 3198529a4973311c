package storage

import (
	"path"
	"strings"
	"time"
)

// BackupName derives a timestamped sibling name for p, e.g.
// "todos.json" -> "todos-backup-2025-01-02T03-04-05-678Z.json".
func BackupName(p string, now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)

	ext := path.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	return stem + "-backup-" + stamp + ext
}
