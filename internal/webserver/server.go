package webserver

import (
	"fmt"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stockerhq/stocker/internal/app"
	"go.uber.org/zap"
)

var server *WebServer

// WebServer wraps the echo engine. Routes under /api require a valid JWT
// except the auth endpoints; handlers pull the database and configuration
// from the request context rather than from ambient state.
type WebServer struct {
	root *echo.Echo
	api  *echo.Group
	appc app.AppContext
}

func Init(appc app.AppContext) *WebServer {
	s := &WebServer{appc: appc, root: echo.New()}
	s.root.HideBanner = true
	s.root.Pre(middleware.RemoveTrailingSlash())
	s.root.Use(middleware.Recover())
	s.root.Use(requestLogger())
	s.root.Use(InjectAppContext(appc))
	s.root.Validator = NewCustomValidator()

	s.api = s.root.Group("/api")
	s.api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(appc.Config().Web.JwtSecret),
		NewClaimsFunc: newJwtClaims,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/api/auth/login") ||
				strings.HasPrefix(c.Path(), "/api/auth/register")
		},
	}))

	server = s
	return s
}

// Listen starts serving on the configured address and blocks.
func Listen() error {
	cfg := server.appc.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.S().Infof("web server listening on %s", addr)
	return server.root.Start(addr)
}

// InjectAppContext stashes request-scoped handles into the echo context.
// It is exported so handler tests can wire a context without a full server.
func InjectAppContext(appc app.AppContext) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(contextDBKey, appc.DB())
			c.Set(contextConfigKey, appc.Config())
			return next(c)
		}
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				zap.L().Warn("request", fields...)
			} else {
				zap.L().Debug("request", fields...)
			}
			return nil
		},
	})
}

// ApiGET registers an authenticated GET route under /api.
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

// ApiPOST registers an authenticated POST route under /api.
func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

// ApiPUT registers an authenticated PUT route under /api.
func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

// ApiDELETE registers an authenticated DELETE route under /api.
func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}
