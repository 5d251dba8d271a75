package adminapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stockerhq/stocker/config"
	"github.com/stockerhq/stocker/internal/app"
	"github.com/stockerhq/stocker/internal/domain"
	"github.com/stockerhq/stocker/internal/webserver"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *app.Application {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	cfg := &config.AppConfig{
		System: config.SysConfig{Workdir: t.TempDir()},
		Web:    config.WebConfig{JwtSecret: "test-secret"},
	}
	application := app.NewApplication(cfg)
	application.OverrideDB(db)
	return application
}

// invoke runs a handler through the context-injection middleware, the way
// the server mounts it.
func invoke(t *testing.T, appc *app.Application, handler echo.HandlerFunc,
	method, target, body string, opts ...func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = webserver.NewCustomValidator()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for _, opt := range opts {
		opt(c)
	}

	err := webserver.InjectAppContext(appc)(handler)(c)
	require.NoError(t, err)
	return rec
}

func withParam(name, value string) func(echo.Context) {
	return func(c echo.Context) {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}
}

func asUser(username, level string) func(echo.Context) {
	return func(c echo.Context) {
		c.Set("user", &jwt.Token{Claims: &webserver.JwtClaims{
			Username: username,
			Level:    level,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "1",
			},
		}})
	}
}

func asStaff() func(echo.Context) {
	return asUser("admin", domain.UserLevelStaff)
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}
