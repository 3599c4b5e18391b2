// webapi/app.go
// Small HTTP surface for triggering exports and imports remotely. Handlers
// are thin wrappers over the operation packages.
package webapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/httpclient"
	"github.com/wafops/go-waf-admin/logger"
)

// App is the web surface application container: shared deps only, request-
// scoped work uses context.
type App struct {
	log    logger.Logger
	client *httpclient.Client
}

// New constructs the App around an authenticated API client.
func New(client *httpclient.Client) *App {
	return &App{
		log:    client.Logger(),
		client: client,
	}
}

// Handler builds the chi router for the app.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.handleHealthz)
	r.Get("/", a.handleIndex)
	r.Post("/api/init/snapshots", a.handleInitSnapshots)
	r.Get("/api/exports/{kind}", a.handleListExports)
	r.Post("/api/import/{kind}/{tenantID}", a.handleImport)

	return r
}

// Serve runs the web surface until the context is cancelled.
func (a *App) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: a.Handler(),
	}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	a.log.Info("Web surface listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	writeJSON(w, statusCode, map[string]string{"error": err.Error()})
}
