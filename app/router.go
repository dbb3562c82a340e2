// Package app wires the HTTP routes to their handlers
package app

import (
	"bitwise74/dashboard-api/app/dashboard"
	"bitwise74/dashboard-api/app/general"
	"bitwise74/dashboard-api/app/root"
	"bitwise74/dashboard-api/app/source"
	"bitwise74/dashboard-api/app/user"
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/pkg/middleware"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	AllowOrigins []string
	// RateLimit is requests per second per IP on the public password checks
	RateLimit int
	BodyLimit int64
}

func NewRouter(d *internal.Deps, o Options) *gin.Engine {
	if o.RateLimit <= 0 {
		o.RateLimit = 5
	}
	if o.BodyLimit <= 0 {
		o.BodyLimit = 1 << 20
	}

	router := gin.New()
	store := persist.NewMemoryStore(time.Minute)

	cacheFor := func(sec int) gin.HandlerFunc {
		return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "x-access-token"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// cors refuses a config without origins
	if len(o.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = o.AllowOrigins
	}

	router.Use(
		cors.New(corsCfg),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		middleware.NewErrorRenderer(),
		middleware.BodySizeLimiter(o.BodyLimit),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	gate := middleware.NewAccessGate(d.Tokens)
	resetGate := middleware.NewResetGate(d.Tokens)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: o.RateLimit,
		Burst:             o.RateLimit * 2,
	})

	// HEAD /heartbeat			-> Used to check if the server is alive
	router.HEAD("/heartbeat", root.Heartbeat)
	router.GET("/heartbeat", root.Heartbeat)

	u := router.Group("/users")
	{
		// POST /users/create		-> Registers a new user
		u.POST("/create", func(c *gin.Context) { user.UserCreate(c, d) })

		// POST /users/authenticate	-> Logs in a user and returns an access token
		u.POST("/authenticate", func(c *gin.Context) { user.UserAuthenticate(c, d) })

		// POST /users/resetpassword	-> Mails a password reset link
		u.POST("/resetpassword", func(c *gin.Context) { user.UserResetPassword(c, d) })

		// POST /users/changepassword	-> Sets a new password using the token from the reset link
		u.POST("/changepassword", middleware.NewSchemaGuard(d.Validator, "change"), resetGate, func(c *gin.Context) { user.UserChangePassword(c, d) })
	}

	s := router.Group("/sources", gate)
	{
		// GET /sources/sources		-> Returns every source of a user
		s.GET("/sources", func(c *gin.Context) { source.SourceList(c, d) })

		// POST /sources/create-source	-> Creates a new source
		s.POST("/create-source", func(c *gin.Context) { source.SourceCreate(c, d) })

		// POST /sources/change-source	-> Overwrites a source
		s.POST("/change-source", func(c *gin.Context) { source.SourceChange(c, d) })

		// POST /sources/delete-source	-> Deletes a source
		s.POST("/delete-source", func(c *gin.Context) { source.SourceDelete(c, d) })

		// GET /sources/source		-> Returns a source by name
		s.GET("/source", func(c *gin.Context) { source.SourceFetch(c, d) })

		// POST /sources/check-sources	-> Creates the listed sources a user doesn't have yet
		s.POST("/check-sources", func(c *gin.Context) { source.SourceCheck(c, d) })
	}

	dash := router.Group("/dashboards")
	{
		// POST /dashboards/check-password-needed	-> Tells a viewer whether they can see a dashboard
		dash.POST("/check-password-needed", rateLimiter, func(c *gin.Context) { dashboard.DashboardCheckPasswordNeeded(c, d) })

		// POST /dashboards/check-password		-> Unlocks a password protected dashboard
		dash.POST("/check-password", rateLimiter, func(c *gin.Context) { dashboard.DashboardCheckPassword(c, d) })
	}

	owned := dash.Group("", gate)
	{
		// GET /dashboards/dashboards		-> Returns every dashboard of a user
		owned.GET("/dashboards", func(c *gin.Context) { dashboard.DashboardList(c, d) })

		// POST /dashboards/create-dashboard	-> Creates an empty dashboard
		owned.POST("/create-dashboard", func(c *gin.Context) { dashboard.DashboardCreate(c, d) })

		// POST /dashboards/delete-dashboard	-> Deletes a dashboard
		owned.POST("/delete-dashboard", func(c *gin.Context) { dashboard.DashboardDelete(c, d) })

		// GET /dashboards/dashboard		-> Returns a dashboard for editing
		owned.GET("/dashboard", func(c *gin.Context) { dashboard.DashboardFetch(c, d) })

		// POST /dashboards/save-dashboard	-> Saves layout and items
		owned.POST("/save-dashboard", func(c *gin.Context) { dashboard.DashboardSave(c, d) })

		// POST /dashboards/clone-dashboard	-> Copies a dashboard under a new name
		owned.POST("/clone-dashboard", func(c *gin.Context) { dashboard.DashboardClone(c, d) })

		// POST /dashboards/share-dashboard	-> Toggles public sharing
		owned.POST("/share-dashboard", func(c *gin.Context) { dashboard.DashboardShare(c, d) })

		// POST /dashboards/change-password	-> Sets or clears the viewing password
		owned.POST("/change-password", func(c *gin.Context) { dashboard.DashboardChangePassword(c, d) })

		// POST /dashboards/export-dashboard	-> Uploads a snapshot to object storage
		owned.POST("/export-dashboard", func(c *gin.Context) { dashboard.DashboardExport(c, d) })
	}

	g := router.Group("/general")
	{
		// GET /general/statistics		-> Returns platform totals
		g.GET("/statistics", cacheFor(30), func(c *gin.Context) { general.GeneralStatistics(c, d) })

		// GET /general/test-url		-> Checks if a URL answers
		g.GET("/test-url", func(c *gin.Context) { general.GeneralTestURL(c, d) })

		// GET /general/test-url-request	-> Performs a request and returns the response
		g.GET("/test-url-request", func(c *gin.Context) { general.GeneralTestURLRequest(c, d) })
	}

	return router
}
