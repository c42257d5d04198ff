package server

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/campusfound/campusfound/internal/cferror"
	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/notifier"
	"github.com/campusfound/campusfound/internal/retention"
	"github.com/campusfound/campusfound/internal/server/middlewares"
	"github.com/campusfound/campusfound/internal/server/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// An IOC is an Inversion Of Control pattern used to init the server package.
type IOC struct {
	Version        string
	Database       database.Client
	Notifier       notifier.Dispatcher
	Engine         *retention.Engine
	NoRegistration bool
	// Session params
	AccessTokenExpirationTime  time.Duration
	RefreshTokenExpirationTime time.Duration
}

// EchoEngine instantiates the wep server.
func EchoEngine(ctrl IOC) *echo.Echo {
	engine := echo.New()
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	engine.Use(middleware.Gzip())

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
	}))
	engine.Binder = middlewares.NewBinder()
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler

	engine.Pre(middleware.Rewrite(map[string]string{
		"/": "/version",
	}))

	////////////
	// Router //
	////////////

	sessions := session.NewManager(
		ctrl.Database,
		ctrl.AccessTokenExpirationTime,
		ctrl.RefreshTokenExpirationTime,
	)

	router := engine.Group("")
	restricted := router.Group("")
	restricted.Use(middlewares.Session(sessions))

	//
	// generic handlers
	//
	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})
	router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	//
	// auth handlers
	//
	auth := &auth{
		db:       ctrl.Database,
		sessions: sessions,
	}
	if !ctrl.NoRegistration {
		router.POST("/auth/register", auth.Register)
	}
	router.POST("/auth/sign_in", auth.Login)
	restricted.POST("/auth/change_pw", auth.UpdatePassword)
	restricted.POST("/auth/deactivate", auth.Deactivate)

	//
	// session handlers
	//
	sess := &sess{
		db:       ctrl.Database,
		sessions: sessions,
	}
	// Refresh authenticates with the token pair so an expired access token
	// can still be exchanged.
	router.POST("/session/refresh", sess.Refresh)
	restricted.GET("/sessions", sess.List)
	restricted.DELETE("/session", sess.Delete)
	restricted.DELETE("/session/all", sess.DeleteAll)

	//
	// item handlers
	//
	item := &item{
		db: ctrl.Database,
	}
	router.GET("/items", item.List)
	router.GET("/items/:id", item.Get)
	restricted.POST("/items", item.Create)
	restricted.PATCH("/items/:id", item.Update)
	restricted.DELETE("/items/:id", item.Delete)

	//
	// claim handlers
	//
	claim := &claim{
		db:       ctrl.Database,
		notifier: ctrl.Notifier,
	}
	restricted.POST("/items/:id/claims", claim.Create)
	restricted.GET("/items/:id/claims", claim.List)
	restricted.PATCH("/claims/:id", claim.Update)

	//
	// conversation handlers
	//
	conversation := &conversation{
		db:       ctrl.Database,
		notifier: ctrl.Notifier,
	}
	restricted.POST("/items/:id/conversations", conversation.Create)
	restricted.GET("/conversations", conversation.List)
	restricted.GET("/conversations/:id/messages", conversation.Messages)
	restricted.POST("/conversations/:id/messages", conversation.PostMessage)

	//
	// notification handlers
	//
	notification := &notification{
		db: ctrl.Database,
	}
	restricted.GET("/notifications", notification.List)
	restricted.POST("/notifications/:id/read", notification.Read)

	//
	// admin handlers
	//
	admin := &admin{
		engine: ctrl.Engine,
	}
	restrictedAdmin := restricted.Group("/admin")
	restrictedAdmin.Use(adminOnly)
	restrictedAdmin.GET("/deletions", admin.Deletions)
	restrictedAdmin.POST("/deletions/items/:id/cancel", admin.CancelItemDeletion)
	restrictedAdmin.POST("/deletions/users/:id/cancel", admin.CancelUserDeletion)

	return engine
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}

func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := currentUser(c)
		if user == nil || !user.IsAdmin() {
			return cferror.NewWithTagCode(http.StatusForbidden, "forbidden", "Administrator access required.")
		}
		return next(c)
	}
}

func currentUser(c echo.Context) *model.User {
	user, ok := c.Get(middlewares.CurrentUserContextKey).(*model.User)
	if ok {
		return user
	}
	return nil
}

func currentSession(c echo.Context) *model.Session {
	session, ok := c.Get(middlewares.CurrentSessionContextKey).(*model.Session)
	if ok {
		return session
	}
	return nil
}
