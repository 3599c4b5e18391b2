// snapshots/retention.go
package snapshots

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/logger"
)

// CleanupOld deletes snapshots older than retentionDays. A retention of 0
// disables cleanup. Returns the number of files removed.
func CleanupOld(dir string, retentionDays int, log logger.Logger) int {
	if retentionDays <= 0 {
		return 0
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	removed := 0

	paths, err := filepath.Glob(filepath.Join(dir, "*"+Suffix))
	if err != nil {
		return 0
	}

	for _, path := range paths {
		info, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}
		if info.ModTime().UTC().Before(cutoff) {
			if unlinkErr := os.Remove(path); unlinkErr != nil {
				log.Warn("Failed to delete old snapshot", zap.String("path", path), zap.Error(unlinkErr))
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		log.Info("Removed old snapshots",
			zap.Int("removed", removed),
			zap.Int("retention_days", retentionDays))
	}
	return removed
}

// LatestPerTenant builds a tenant-id to latest-snapshot-timestamp index from
// the filenames in dir. Timestamps are ISO 8601 UTC strings. When the
// filename prefix cannot be parsed, the file's mtime is used instead.
func LatestPerTenant(dir string) map[string]string {
	latest := map[string]time.Time{}

	paths, err := filepath.Glob(filepath.Join(dir, "*"+Suffix))
	if err != nil {
		return map[string]string{}
	}

	for _, path := range paths {
		tenantID := tenantIDFromPath(path)
		if tenantID == "" {
			continue
		}

		stamp, ok := timestampFromPath(path)
		if !ok {
			info, statErr := os.Stat(path)
			if statErr != nil {
				continue
			}
			stamp = info.ModTime().UTC()
		}

		if current, exists := latest[tenantID]; !exists || stamp.After(current) {
			latest[tenantID] = stamp
		}
	}

	out := make(map[string]string, len(latest))
	for tenantID, stamp := range latest {
		out[tenantID] = stamp.Truncate(time.Second).Format("2006-01-02T15:04:05") + "Z"
	}
	return out
}

// tenantIDFromPath extracts the tenant id from a snapshot filename of the
// form <stamp>_<slug>_<tenantID>.snapshot.json.
func tenantIDFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), Suffix)
	idx := strings.LastIndex(stem, "_")
	if idx < 0 || idx == len(stem)-1 {
		return ""
	}
	return stem[idx+1:]
}

// timestampFromPath parses the UTC timestamp prefix of a snapshot filename.
func timestampFromPath(path string) (time.Time, bool) {
	prefix, _, found := strings.Cut(filepath.Base(path), "_")
	if !found {
		return time.Time{}, false
	}
	stamp, err := time.Parse(timestampLayout, prefix)
	if err != nil {
		return time.Time{}, false
	}
	return stamp, true
}
