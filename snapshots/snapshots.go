// snapshots/snapshots.go
// Full configuration snapshot export. The appliance exposes one global
// snapshot endpoint; the tenant is selected through the JWT the request
// carries.
package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wafops/go-waf-admin/config"
	"github.com/wafops/go-waf-admin/httpclient"
	"github.com/wafops/go-waf-admin/tenants"
)

const (
	// Suffix of every snapshot file written by this package.
	Suffix = ".snapshot.json"
	// timestampLayout is the UTC prefix of snapshot filenames.
	timestampLayout = "20060102T150405Z"
)

// Filename builds the snapshot path for a tenant:
// <dir>/<utcstamp>_<slug>_<tenantID>.snapshot.json.
func Filename(dir string, tenant tenants.Tenant, now time.Time) string {
	stamp := now.UTC().Format(timestampLayout)
	name := fmt.Sprintf("%s_%s_%s%s", stamp, tenant.Slug(), tenant.ID, Suffix)
	return filepath.Join(dir, name)
}

// ExportTenant fetches one tenant's full configuration snapshot and writes
// it pretty-printed to the snapshots directory. Returns the created path.
func ExportTenant(ctx context.Context, client *httpclient.Client, tenant tenants.Tenant) (string, error) {
	log := client.Logger()
	cfg := client.Config()

	if tenant.ID == "" {
		return "", fmt.Errorf("tenant %q has no id", tenant.Label())
	}

	log.Info("Exporting snapshot", zap.String("tenant_id", tenant.ID), zap.String("tenant", tenant.Label()))

	var data json.RawMessage
	if err := client.GetJSON(ctx, config.EndpointSnapshot, tenant.ID, &data); err != nil {
		return "", fmt.Errorf("tenant %s: snapshot export failed: %w", tenant.ID, err)
	}

	pretty, err := prettyJSON(data)
	if err != nil {
		return "", fmt.Errorf("tenant %s: %w", tenant.ID, err)
	}

	if err := os.MkdirAll(cfg.SnapshotsDir, 0o755); err != nil {
		return "", err
	}

	path := Filename(cfg.SnapshotsDir, tenant, time.Now())
	if err := os.WriteFile(path, pretty, 0o644); err != nil {
		return "", fmt.Errorf("tenant %s: write snapshot: %w", tenant.ID, err)
	}

	log.Info("Snapshot written", zap.String("tenant_id", tenant.ID), zap.String("path", path))
	return path, nil
}

// ExportAll exports snapshots for every visible tenant (after the configured
// only/skip filters), running tenants concurrently up to the configured
// limit. A failing tenant is logged and skipped; the batch continues.
// Retention cleanup runs first so the directory never grows without bound.
func ExportAll(ctx context.Context, client *httpclient.Client) ([]string, error) {
	log := client.Logger()
	cfg := client.Config()

	if removed := CleanupOld(cfg.SnapshotsDir, cfg.SnapshotRetentionDays, log); removed > 0 {
		log.Info("Cleanup complete", zap.Int("removed", removed))
	}

	// Fail the whole batch early when credentials are unusable.
	if _, err := client.Auth.EnsureBaseToken(ctx); err != nil {
		return nil, fmt.Errorf("unable to obtain base access token: %w", err)
	}

	list, err := tenants.List(ctx, client)
	if err != nil {
		return nil, err
	}
	list = tenants.Filter(list, cfg.OnlyTenants, cfg.SkipTenants)
	if len(list) == 0 {
		log.Warn("No tenants returned by API")
		return nil, nil
	}

	log.Info("Exporting snapshots", zap.Int("tenants", len(list)))

	var mu sync.Mutex
	var created []string

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.ExportConcurrency)

	for _, tenant := range list {
		tenant := tenant
		group.Go(func() error {
			path, exportErr := ExportTenant(groupCtx, client, tenant)
			if exportErr != nil {
				log.Error("Snapshot export failed, skipping tenant",
					zap.String("tenant_id", tenant.ID),
					zap.Error(exportErr))
				return nil
			}
			mu.Lock()
			created = append(created, path)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return created, err
	}

	log.Info("Total snapshots written", zap.Int("count", len(created)))
	return created, nil
}

func prettyJSON(data json.RawMessage) ([]byte, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return json.MarshalIndent(decoded, "", "  ")
}
