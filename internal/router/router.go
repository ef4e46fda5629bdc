package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/protonicfit/auth-api/internal/config"
	"github.com/protonicfit/auth-api/internal/handler"
	"github.com/protonicfit/auth-api/internal/middleware"
)

// Register wires every route of the auth API onto the Echo instance. All
// credential endpoints live under /auth behind the Redis rate limiter;
// /auth/me additionally requires a bearer token. The health check sits
// outside the limited group.
func Register(e *echo.Echo, a *handler.AuthHandler, rl config.RateLimitConfig, rdb *redis.Client) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowCredentials: true, AllowOriginFunc: func(string) (bool, error) { return true, nil }}))

	e.GET("/healthz", handler.Health)

	g := e.Group("/auth")
	g.Use(middleware.NewTokenBucket(rl, rdb))

	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)
	g.GET("/me", a.Me, middleware.RequireBearer())
}
