package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/docflow/internal/middleware/auth"
	"github.com/Skotchmaster/docflow/internal/models"
)

type Deps struct {
	AuthHandler     *AuthHTTP
	UserHandler     *UsersHTTP
	DocumentHandler *DocumentsHTTP
	Gate            *authmw.Gate
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.LogOut)

	// Role sets are declared per route; a bare Require() admits any
	// authenticated identity.
	users := e.Group("/users")
	users.POST("/register", d.UserHandler.Create, d.Gate.Require(models.RoleAdmin))
	users.GET("/:id", d.UserHandler.Get, d.Gate.Require(models.RoleAdmin, models.RoleEditor, models.RoleViewer))
	users.PUT("/:id", d.UserHandler.Update, d.Gate.Require(models.RoleAdmin))
	users.DELETE("/:id", d.UserHandler.Delete, d.Gate.Require(models.RoleAdmin))

	docs := e.Group("/documents", d.Gate.Require())
	docs.POST("/ingest", d.DocumentHandler.Ingest)
	docs.GET("", d.DocumentHandler.List)
	docs.GET("/search", d.DocumentHandler.Search)
	docs.GET("/:id", d.DocumentHandler.Get)
	docs.PUT("/:id", d.DocumentHandler.Update)
	docs.DELETE("/:id", d.DocumentHandler.Delete)
	docs.GET("/download/:id", d.DocumentHandler.Download)
	docs.GET("/status/:id", d.DocumentHandler.Status)
}
