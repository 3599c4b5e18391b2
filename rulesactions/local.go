// rulesactions/local.go
// Catalog of locally exported rule/action files, as consumed by the web
// surface and the import commands.
package rulesactions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileEntry describes one exported item file.
type FileEntry struct {
	Filename    string `json:"filename"`
	DisplayName string `json:"display_name"`
}

// TenantExport groups the exported files of one tenant directory.
type TenantExport struct {
	TenantName string      `json:"tenant_name"`
	TenantDir  string      `json:"tenant_dir"`
	TenantID   string      `json:"tenant_id,omitempty"`
	Files      []FileEntry `json:"files"`
}

// ListLocalExports walks the export root of a kind and returns the per-
// tenant catalog. Tenant directories follow the <slug>_<tenantID> layout
// produced by ExportTenant; directories without matching files are omitted.
func ListLocalExports(base string, kind Kind) ([]TenantExport, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var results []TenantExport
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		tenantName, tenantID := tenantLabelFromDir(entry.Name())
		subdir := filepath.Join(base, entry.Name())

		paths, globErr := filepath.Glob(filepath.Join(subdir, "*"+kind.Suffix()))
		if globErr != nil || len(paths) == 0 {
			continue
		}
		sort.Strings(paths)

		var files []FileEntry
		for _, path := range paths {
			files = append(files, FileEntry{
				Filename:    filepath.Base(path),
				DisplayName: displayName(path, kind),
			})
		}

		results = append(results, TenantExport{
			TenantName: tenantName,
			TenantDir:  entry.Name(),
			TenantID:   tenantID,
			Files:      files,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].TenantDir < results[j].TenantDir })
	return results, nil
}

// LoadLocalPayload reads one exported file for a tenant identified by its
// human-readable name (or directory name). Only files with the kind's
// suffix are served.
func LoadLocalPayload(base, tenantName, filename string, kind Kind) (json.RawMessage, error) {
	if !strings.HasSuffix(filename, kind.Suffix()) {
		return nil, fmt.Errorf("filename must end with %s (got %q)", kind.Suffix(), filename)
	}
	// Reject path traversal through the filename.
	if filepath.Base(filename) != filename {
		return nil, fmt.Errorf("invalid filename %q", filename)
	}

	target := normalizeLabel(tenantName)

	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		friendly, _ := tenantLabelFromDir(entry.Name())
		if normalizeLabel(friendly) != target && normalizeLabel(entry.Name()) != target {
			continue
		}

		candidate := filepath.Join(base, entry.Name(), filename)
		data, readErr := os.ReadFile(candidate)
		if readErr != nil {
			continue
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("file %s is not valid JSON", candidate)
		}
		return data, nil
	}

	return nil, fmt.Errorf("file %s for tenant %q not found in %s", filename, tenantName, base)
}

// tenantLabelFromDir splits a <slug>_<tenantID> directory name into a
// human-readable label and the id, when present.
func tenantLabelFromDir(dirName string) (label, tenantID string) {
	base := dirName
	if idx := strings.LastIndex(dirName, "_"); idx > 0 {
		base = dirName[:idx]
		tenantID = dirName[idx+1:]
	}

	label = strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(base))
	if label == "" {
		label = dirName
	}
	return label, tenantID
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(label)))
}

// displayName extracts the item's name from the exported payload, falling
// back to the filename without suffix when the JSON is unreadable or has no
// name field.
func displayName(path string, kind Kind) string {
	if data, err := os.ReadFile(path); err == nil {
		var meta item
		if json.Unmarshal(data, &meta) == nil && meta.Name != "" {
			return meta.Name
		}
	}
	return strings.TrimSuffix(filepath.Base(path), kind.Suffix())
}
