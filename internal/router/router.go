// Package router wires the HTTP endpoints to their handlers and
// middleware.  Route groups follow the role model: /v1/auth is open,
// everything else under /v1 requires a valid access token, and the
// per-route role guards narrow ADMIN-only operations.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-api/internal/handler"
	"github.com/iliyamo/parking-lot-api/internal/middleware"
	"github.com/iliyamo/parking-lot-api/internal/model"
)

// RegisterRoutes registers the routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Register,
// login and refresh live under /v1/auth without a session; logout and
// the identity echo require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleClient))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout", a.Logout)
}

// RegisterParking registers the client, space and parking endpoints.
// ADMIN operates the lot; CLIENT manages their own profile and views
// their own history.
func RegisterParking(e *echo.Echo, jwtSecret string,
	clients *handler.ClientHandler, spaces *handler.SpaceHandler, parking *handler.ParkingHandler) {

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))

	admin := middleware.RequireRole(model.RoleAdmin)
	client := middleware.RequireRole(model.RoleClient)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleClient)

	// Client profiles.
	v1.POST("/clients", clients.Create, client)
	v1.GET("/clients/details", clients.Details, client)
	v1.GET("/clients/:id", clients.GetByID, admin)
	v1.GET("/clients", clients.List, admin)

	// Space pool administration.
	v1.POST("/spaces", spaces.Create, admin)
	v1.GET("/spaces/:code", spaces.GetByCode, admin)

	// Parking operations and lookups.
	v1.POST("/parking/check-in", parking.CheckIn, admin)
	v1.PUT("/parking/check-out/:receipt", parking.CheckOut, admin)
	v1.GET("/parking/check-in/:receipt", parking.GetByReceipt, anyRole)
	v1.GET("/parking/cpf/:cpf", parking.ListByCPF, admin)
	v1.GET("/parking", parking.ListMine, client)
}
