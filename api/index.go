package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/amirasaad/tem/infra/initializer"
	"github.com/amirasaad/tem/pkg/app"
	"github.com/amirasaad/tem/pkg/config"
	"github.com/amirasaad/tem/webapi"
)

var (
	once    sync.Once
	handle  http.HandlerFunc
	initErr error
)

// Handler is the serverless entry point of the API.
// The Fiber application is built on the first request and reused while the
// instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	// This is needed to set the proper request path in `*fiber.Ctx`
	r.RequestURI = r.URL.String()

	once.Do(func() { handle, initErr = build() })
	if initErr != nil {
		slog.Default().Error("Failed to initialize API", "error", initErr)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	handle.ServeHTTP(w, r)
}

func build() (http.HandlerFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return nil, err
	}
	return adaptor.FiberApp(webapi.SetupApp(app.New(deps, cfg))), nil
}
