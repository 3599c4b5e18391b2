// webapi/handlers.go
package webapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/rulesactions"
	"github.com/wafops/go-waf-admin/snapshots"
)

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "WAF admin tools backend is running",
		"health":  "/healthz",
	})
}

// handleInitSnapshots triggers a full snapshot export for every tenant.
// Handy for debugging; production runs usually go through the CLI.
func (a *App) handleInitSnapshots(w http.ResponseWriter, r *http.Request) {
	paths, err := snapshots.ExportAll(r.Context(), a.client)
	if err != nil {
		a.log.Error("Snapshot export failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"snapshots_written": len(paths),
		"files":             paths,
		"latest_per_tenant": snapshots.LatestPerTenant(a.client.Config().SnapshotsDir),
	})
}

func (a *App) handleListExports(w http.ResponseWriter, r *http.Request) {
	kind, err := rulesactions.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	catalog, err := rulesactions.ListLocalExports(kind.Dir(a.client.Config()), kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if catalog == nil {
		catalog = []rulesactions.TenantExport{}
	}

	writeJSON(w, http.StatusOK, catalog)
}

// importRequest names a locally exported file to push into a tenant.
type importRequest struct {
	TenantName string `json:"tenant_name"`
	Filename   string `json:"filename"`
}

func (a *App) handleImport(w http.ResponseWriter, r *http.Request) {
	kind, err := rulesactions.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	tenantID := chi.URLParam(r, "tenantID")

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.TenantName == "" || req.Filename == "" {
		writeError(w, http.StatusBadRequest, errors.New("tenant_name and filename are required"))
		return
	}

	payload, err := rulesactions.LoadLocalPayload(kind.Dir(a.client.Config()), req.TenantName, req.Filename, kind)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	result, err := rulesactions.ImportPayload(r.Context(), a.client, tenantID, kind, payload)
	if err != nil {
		a.log.Error("Import failed",
			zap.String("kind", string(kind)),
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}

	if result == nil {
		// Read-only mode.
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "suppressed (read-only)"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "imported", "result": result})
}
