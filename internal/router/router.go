// Package router wires HTTP routes to their handlers and middleware.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "github.com/a6cars/rental-api/internal/handler"
    "github.com/a6cars/rental-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: a health check for load balancers and the
// Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
    e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers all authentication-related routes.  Unauthenticated
// operations live under /v1/auth, while /v1/me requires a valid access
// token.  The operator signs in through /v1/auth/admin/login against the
// credentials held in configuration; there is no admin row in the database.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/admin/login", a.AdminLogin)
    // Refresh rotates the refresh token; logout revokes it.  Neither needs
    // an access token, only the refresh token in the body.
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole("CUSTOMER", "ADMIN"))
    auth.GET("/me", a.Me)
}

// RegisterCatalog registers the public vehicle browse endpoints.  The extra
// middleware (rate limiting, response cache) is applied only here because
// these are the endpoints guests hammer while comparing cars.
func RegisterCatalog(e *echo.Echo, v *handler.VehicleHandler, extra ...echo.MiddlewareFunc) {
    g := e.Group("/v1/vehicles", extra...)
    g.GET("", v.List)
    g.GET("/:id", v.Get)
}

// RegisterCustomer registers the booking endpoints available to signed-in
// customers: creating a reservation, requesting payment instructions for
// it, and listing or inspecting their own reservations.
func RegisterCustomer(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
    g := e.Group("/v1/reservations")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("CUSTOMER"))
    g.POST("", r.Create)
    g.GET("", r.List)
    g.GET("/:id", r.Get)
    g.POST("/:id/pay", r.Pay)
}

// RegisterOperator registers the back-office endpoints under /v1/admin.
// Every route requires the ADMIN role: payment verification, handover
// token minting, vehicle handover, the full reservation list and the
// catalog CRUD.
func RegisterOperator(e *echo.Echo, o *handler.OperatorHandler, v *handler.VehicleHandler, jwtSecret string) {
    g := e.Group("/v1/admin")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("ADMIN"))

    g.GET("/reservations", o.ListReservations)
    g.POST("/reservations/:id/verify-payment", o.VerifyPayment)
    g.POST("/reservations/:id/handover-token", o.MintHandoverToken)
    g.POST("/collect", o.Collect)

    g.GET("/vehicles", v.List)
    g.POST("/vehicles", v.Create)
    g.PUT("/vehicles/:id", v.Update)
    g.DELETE("/vehicles/:id", v.Delete)
}
