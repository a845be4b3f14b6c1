// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/spark-meetup/internal/config"
	"github.com/iliyamo/spark-meetup/internal/handler"
	"github.com/iliyamo/spark-meetup/internal/middleware"
	"github.com/iliyamo/spark-meetup/internal/model"
)

// MaterialBodyLimit caps multipart uploads of event material.
const MaterialBodyLimit = "20M"

// Deps is everything the routes need.
type Deps struct {
	JWTSecret string
	Resolver  middleware.PrincipalResolver
	DB        *sql.DB
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig

	Auth    *handler.AuthHandler
	Events  *handler.EventHandler
	Slots   *handler.SlotHandler
	Reviews *handler.ReviewHandler
}

// RegisterRoutes registers the health check and every /v1 route.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))

	authn := middleware.JWTAuth(d.JWTSecret, d.Resolver)
	optional := middleware.OptionalJWT(d.JWTSecret, d.Resolver)
	admin := middleware.RequireRole(model.RoleAdmin)
	cache := middleware.NewRedisCache(d.Cache, d.Redis)

	v1 := e.Group("/v1", middleware.NewTokenBucket(d.RateLimit, d.Redis))

	registerAuth(v1, d.Auth, authn, optional)
	registerSlots(v1, d.Slots, authn, admin, cache)
	registerEvents(v1, d.Events, d.Reviews, authn, optional, cache)
	registerAdmin(v1, d.Events, authn, admin)
}

func registerAuth(v1 *echo.Group, a *handler.AuthHandler, authn, optional echo.MiddlewareFunc) {
	g := v1.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, optional)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	v1.GET("/me", a.Me, authn)
	v1.PATCH("/me", a.UpdateMe, authn)
	v1.POST("/me/password", a.ChangePassword, authn)
}

func registerSlots(v1 *echo.Group, s *handler.SlotHandler, authn, admin, cache echo.MiddlewareFunc) {
	v1.GET("/slots", s.List, cache)
	v1.POST("/slots", s.Create, authn, admin)
	v1.DELETE("/slots/:id", s.Delete, authn, admin)
}

func registerEvents(v1 *echo.Group, ev *handler.EventHandler, rv *handler.ReviewHandler, authn, optional, cache echo.MiddlewareFunc) {
	// Public reads. Non-approved events stay visible to their organizer,
	// so single-event reads take an optional token.
	v1.GET("/events", ev.List, cache)
	v1.GET("/events/:id", ev.Get, optional)
	v1.GET("/events/:id/participants", ev.Participants, optional)
	v1.GET("/events/:id/reviews", rv.List)

	v1.POST("/events", ev.Create, authn)
	v1.PATCH("/events/:id", ev.Update, authn)
	v1.DELETE("/events/:id", ev.Delete, authn)
	v1.POST("/events/:id/material", ev.UploadMaterial, authn, echomw.BodyLimit(MaterialBodyLimit))
	v1.POST("/events/:id/registrations", ev.Register, authn)
	v1.DELETE("/events/:id/registrations", ev.Unregister, authn)
	v1.POST("/events/:id/reviews", rv.Create, authn)
	v1.POST("/events/:id/announcements", ev.Announce, authn)

	v1.GET("/my/events", ev.Mine, authn)
	v1.GET("/my/registrations", ev.MyRegistrations, authn)
	v1.GET("/my/pending-review", rv.Pending, authn)
}

func registerAdmin(v1 *echo.Group, ev *handler.EventHandler, authn, admin echo.MiddlewareFunc) {
	g := v1.Group("/admin", authn, admin)
	g.GET("/events", ev.AdminList)
	g.POST("/events/:id/approve", ev.Approve)
	g.POST("/events/:id/reject", ev.Reject)
	g.GET("/events/:id/registrations", ev.Registrations)
}
