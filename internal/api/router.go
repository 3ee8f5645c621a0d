package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/skener/internal/auth"
	"github.com/erazemk/skener/internal/decoder"
	"github.com/erazemk/skener/internal/model"
	"github.com/erazemk/skener/internal/scan"
)

// Config holds the dependencies shared by the API handlers.
type Config struct {
	DB       *sql.DB
	Issuer   *auth.Issuer
	Sessions *scan.Manager
	Camera   *decoder.FeedCamera
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, Issuer: cfg.Issuer}
	usersHandler := &UsersHandler{DB: cfg.DB}
	productsHandler := &ProductsHandler{DB: cfg.DB}
	transactionsHandler := &TransactionsHandler{DB: cfg.DB}
	devicesHandler := &DevicesHandler{Camera: cfg.Camera}
	sessionsHandler := &SessionsHandler{Sessions: cfg.Sessions}

	authMW := AuthMiddleware(cfg.Issuer, cfg.DB)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))

	// Products: read (all roles), write (manager+).
	mux.Handle("GET /api/products", authMW(http.HandlerFunc(productsHandler.List)))
	mux.Handle("POST /api/products", authMW(requireManager(http.HandlerFunc(productsHandler.Create))))
	mux.Handle("GET /api/products/{id}", authMW(http.HandlerFunc(productsHandler.Get)))
	mux.Handle("PUT /api/products/{id}", authMW(requireManager(http.HandlerFunc(productsHandler.Update))))
	mux.Handle("DELETE /api/products/{id}", authMW(requireManager(http.HandlerFunc(productsHandler.Delete))))
	mux.Handle("PUT /api/products/{id}/image", authMW(requireManager(http.HandlerFunc(productsHandler.UploadImage))))
	mux.Handle("GET /api/products/{id}/image", authMW(http.HandlerFunc(productsHandler.GetImage)))

	// Transactions are only created through sessions.
	mux.Handle("GET /api/transactions", authMW(http.HandlerFunc(transactionsHandler.List)))
	mux.Handle("GET /api/transactions/{id}", authMW(http.HandlerFunc(transactionsHandler.Get)))
	mux.Handle("GET /api/holdings", authMW(http.HandlerFunc(transactionsHandler.Holdings)))

	// Camera devices.
	mux.Handle("GET /api/devices", authMW(http.HandlerFunc(devicesHandler.List)))
	mux.Handle("POST /api/devices", authMW(http.HandlerFunc(devicesHandler.Register)))
	mux.Handle("DELETE /api/devices/{id}", authMW(http.HandlerFunc(devicesHandler.Unregister)))
	mux.Handle("POST /api/devices/{id}/frames", authMW(http.HandlerFunc(devicesHandler.PushFrame)))

	// Scanning sessions (all roles; owner or manager+ per session).
	mux.Handle("POST /api/sessions", authMW(http.HandlerFunc(sessionsHandler.Start)))
	mux.Handle("GET /api/sessions/{id}", authMW(http.HandlerFunc(sessionsHandler.Get)))
	mux.Handle("DELETE /api/sessions/{id}", authMW(http.HandlerFunc(sessionsHandler.Close)))
	mux.Handle("PUT /api/sessions/{id}/type", authMW(http.HandlerFunc(sessionsHandler.SetType)))
	mux.Handle("PUT /api/sessions/{id}/header", authMW(http.HandlerFunc(sessionsHandler.UpdateHeader)))
	mux.Handle("POST /api/sessions/{id}/scans", authMW(http.HandlerFunc(sessionsHandler.Scan)))
	mux.Handle("PUT /api/sessions/{id}/items/{localID}/quantity", authMW(http.HandlerFunc(sessionsHandler.SetQuantity)))
	mux.Handle("PUT /api/sessions/{id}/items/{localID}", authMW(http.HandlerFunc(sessionsHandler.EditItem)))
	mux.Handle("DELETE /api/sessions/{id}/items/{localID}", authMW(http.HandlerFunc(sessionsHandler.RemoveItem)))
	mux.Handle("GET /api/sessions/{id}/validation", authMW(http.HandlerFunc(sessionsHandler.Validate)))
	mux.Handle("POST /api/sessions/{id}/submit", authMW(http.HandlerFunc(sessionsHandler.Submit)))
	mux.Handle("GET /api/sessions/{id}/history", authMW(http.HandlerFunc(sessionsHandler.History)))
	mux.Handle("DELETE /api/sessions/{id}/history", authMW(http.HandlerFunc(sessionsHandler.ClearHistory)))
	mux.Handle("PUT /api/sessions/{id}/camera", authMW(http.HandlerFunc(sessionsHandler.StartCamera)))
	mux.Handle("DELETE /api/sessions/{id}/camera", authMW(http.HandlerFunc(sessionsHandler.StopCamera)))

	return mux
}
