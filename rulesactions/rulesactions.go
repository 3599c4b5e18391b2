// rulesactions/rulesactions.go
// Export and import of per-tenant rule and action objects. Both resource
// kinds share one wire shape (opaque JSON objects, listed either bare or in
// an {items} envelope), so the code is parameterized by Kind.
package rulesactions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/config"
	"github.com/wafops/go-waf-admin/httpclient"
	"github.com/wafops/go-waf-admin/tenants"
)

// Kind selects which resource collection is operated on.
type Kind string

const (
	KindRule   Kind = "rule"
	KindAction Kind = "action"
)

// ParseKind accepts both singular and plural spellings, as used in CLI
// arguments and URL path segments.
func ParseKind(value string) (Kind, error) {
	switch value {
	case "rule", "rules":
		return KindRule, nil
	case "action", "actions":
		return KindAction, nil
	default:
		return "", fmt.Errorf("unknown resource kind %q", value)
	}
}

// Endpoint returns the appliance collection endpoint for the kind.
func (k Kind) Endpoint() string {
	if k == KindAction {
		return config.EndpointActions
	}
	return config.EndpointRules
}

// Dir returns the local export root for the kind.
func (k Kind) Dir(cfg *config.Config) string {
	if k == KindAction {
		return cfg.ActionsDir
	}
	return cfg.RulesDir
}

// Suffix returns the filename suffix of exported items, e.g. ".rule.json".
func (k Kind) Suffix() string {
	return "." + string(k) + ".json"
}

// item is one exported rule or action; only the identifying fields are
// interpreted, the payload stays opaque.
type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// normalizeItems accepts both list shapes the appliance produces.
func normalizeItems(raw json.RawMessage) ([]json.RawMessage, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var envelope struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Items == nil {
		return nil, fmt.Errorf("unsupported list response format")
	}
	return envelope.Items, nil
}

// ExportTenant fetches all items of the kind for one tenant and writes each
// to its own file under <dir>/<slug>_<tenantID>/. Returns the created paths.
func ExportTenant(ctx context.Context, client *httpclient.Client, tenant tenants.Tenant, kind Kind) ([]string, error) {
	log := client.Logger()
	cfg := client.Config()

	log.Info("Exporting items",
		zap.String("kind", string(kind)),
		zap.String("tenant_id", tenant.ID),
		zap.String("tenant", tenant.Label()))

	var raw json.RawMessage
	if err := client.GetJSON(ctx, kind.Endpoint(), tenant.ID, &raw); err != nil {
		return nil, fmt.Errorf("tenant %s: export %ss: %w", tenant.ID, kind, err)
	}

	items, err := normalizeItems(raw)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", tenant.ID, err)
	}

	subdir := filepath.Join(kind.Dir(cfg), tenant.Slug()+"_"+tenant.ID)
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		return nil, err
	}

	var created []string
	for _, rawItem := range items {
		path, writeErr := writeItem(subdir, rawItem, kind)
		if writeErr != nil {
			return created, fmt.Errorf("tenant %s: %w", tenant.ID, writeErr)
		}
		created = append(created, path)
	}

	log.Info("Exported items",
		zap.String("kind", string(kind)),
		zap.String("tenant_id", tenant.ID),
		zap.Int("count", len(created)),
		zap.String("dir", subdir))
	return created, nil
}

func writeItem(subdir string, rawItem json.RawMessage, kind Kind) (string, error) {
	var meta item
	_ = json.Unmarshal(rawItem, &meta)

	identifier := meta.ID
	if identifier == "" {
		identifier = meta.Name
	}
	if identifier == "" {
		identifier = string(kind)
	}

	pretty, err := json.MarshalIndent(json.RawMessage(rawItem), "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(subdir, tenants.Slugify(identifier)+kind.Suffix())
	if err := os.WriteFile(path, pretty, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ExportAll exports the kind for every visible tenant. Per-tenant failures
// are logged and collected rather than aborting the batch; the appliance's
// built-in general tenant in particular rejects some collection reads.
func ExportAll(ctx context.Context, client *httpclient.Client, kind Kind) (created []string, failures []string, err error) {
	log := client.Logger()
	cfg := client.Config()

	list, listErr := tenants.List(ctx, client)
	if listErr != nil {
		return nil, nil, listErr
	}
	list = tenants.Filter(list, cfg.OnlyTenants, cfg.SkipTenants)
	if len(list) == 0 {
		log.Warn("No tenants returned by API", zap.String("kind", string(kind)))
		return nil, nil, nil
	}

	for _, tenant := range list {
		paths, exportErr := ExportTenant(ctx, client, tenant, kind)
		created = append(created, paths...)
		if exportErr != nil {
			msg := exportErr.Error()
			log.Error("Item export failed, skipping tenant",
				zap.String("kind", string(kind)),
				zap.String("tenant_id", tenant.ID),
				zap.Error(exportErr))
			failures = append(failures, msg)
		}
	}

	return created, failures, nil
}

// ImportPayload pushes one locally-held rule or action into a tenant. In
// read-only mode the import is logged and not sent.
func ImportPayload(ctx context.Context, client *httpclient.Client, tenantID string, kind Kind, payload json.RawMessage) (json.RawMessage, error) {
	log := client.Logger()

	if client.Config().ReadOnly {
		log.Warn("Read-only mode, import suppressed",
			zap.String("kind", string(kind)),
			zap.String("tenant_id", tenantID))
		return nil, nil
	}

	var result json.RawMessage
	if err := client.PostJSON(ctx, kind.Endpoint(), tenantID, payload, &result); err != nil {
		return nil, fmt.Errorf("tenant %s: import %s: %w", tenantID, kind, err)
	}

	log.Info("Item imported",
		zap.String("kind", string(kind)),
		zap.String("tenant_id", tenantID))
	return result, nil
}
