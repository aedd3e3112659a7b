package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/concert-booking/internal/config"
	"github.com/iliyamo/concert-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/concert-booking/internal/middleware" // import middleware for JWT authentication and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and issues a new access token.
	g.POST("/refresh", a.Refresh)
	// Logout accepts a JSON body containing a `refresh_token` and
	// invalidates that token.  If the token is valid, a 204 response is
	// returned; otherwise 400/401/500 are possible depending on the error.
	g.POST("/logout", a.Logout)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)
}

// RegisterCatalog registers the unauthenticated browse endpoints.  These
// routes do not apply any JWT middleware and are intended for guest users
// deciding which concert to book.
func RegisterCatalog(e *echo.Echo, cat *handler.CatalogHandler, seats *handler.SeatHandler) {
	e.GET("/v1/concerts", cat.ListConcerts)
	e.GET("/v1/concerts/:id", cat.GetConcert)
	e.GET("/v1/performers", cat.ListPerformers)
	e.GET("/v1/performers/:id", cat.GetPerformer)
	// Seat map for a concert date, filterable with ?status=Booked|Unbooked|Any.
	e.GET("/v1/seats/:date", seats.ByDate)
}

// RegisterBooking registers the booking endpoints.  All of them require a
// valid access token, and the booking commit additionally passes through
// the Redis token-bucket rate limiter so one client cannot hammer the
// seat ledger.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/bookings")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("", b.Create, middleware.NewTokenBucket(rlCfg, rdb))
	g.GET("", b.List)
	g.GET("/:id", b.Get)
}

// RegisterSubscriptions registers the occupancy subscription endpoint.
// The route long-polls: the connection stays open until the threshold is
// crossed or the client gives up.
func RegisterSubscriptions(e *echo.Echo, s *handler.SubscribeHandler, jwtSecret string) {
	g := e.Group("/v1/subscribe")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("/concert-info", s.ConcertInfo)
}
