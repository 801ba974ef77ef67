package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/bodega/internal/annotations"
	"github.com/erazemk/bodega/internal/index"
	"github.com/erazemk/bodega/internal/media"
	"github.com/erazemk/bodega/internal/model"
	"github.com/erazemk/bodega/internal/returns"
	"github.com/erazemk/bodega/internal/saleslog"
)

// Deps holds everything the router serves.
type Deps struct {
	DB          *sql.DB
	JWTSecret   string
	Index       *index.Index
	Returns     *returns.Processor
	Sales       *saleslog.Log
	Media       *media.Store
	Annotations *annotations.Store
	SaleGroup   string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: deps.DB, JWTSecret: deps.JWTSecret}
	usersHandler := &UsersHandler{DB: deps.DB}
	recordsHandler := &RecordsHandler{
		Index:     deps.Index,
		Returns:   deps.Returns,
		Sales:     deps.Sales,
		SaleGroup: deps.SaleGroup,
	}
	annotationsHandler := &AnnotationsHandler{Store: deps.Annotations}
	reportsHandler := &ReportsHandler{
		Index:     deps.Index,
		Sales:     deps.Sales,
		SaleGroup: deps.SaleGroup,
	}

	authMW := AuthMiddleware(deps.JWTSecret, deps.DB)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Photo records and returns.
	mux.Handle("GET /api/records", authMW(http.HandlerFunc(recordsHandler.List)))
	mux.Handle("POST /api/mark-return", authMW(http.HandlerFunc(recordsHandler.MarkReturn)))
	mux.Handle("GET /api/total", authMW(http.HandlerFunc(recordsHandler.Total)))

	// Annotations.
	mux.Handle("POST /api/save-annotation", authMW(http.HandlerFunc(annotationsHandler.Save)))
	mux.Handle("GET /api/annotations/{fotoId}", authMW(http.HandlerFunc(annotationsHandler.Get)))

	// HTML reports and stored photos.
	mux.HandleFunc("GET /reportes/{fecha}", reportsHandler.Daily)
	mux.HandleFunc("GET /", reportsHandler.Dashboard)
	mux.Handle("GET /fotos/", http.StripPrefix("/fotos/", http.FileServer(http.Dir(deps.Media.Dir()))))

	return mux
}
