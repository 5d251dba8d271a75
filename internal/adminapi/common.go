package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stockerhq/stocker/internal/alert"
	"github.com/stockerhq/stocker/internal/domain"
	"github.com/stockerhq/stocker/internal/webserver"
	"github.com/stockerhq/stocker/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// evaluator is the post-save alert hook shared by the product handlers.
var evaluator *alert.Evaluator

// InitRouter registers all API routes. The evaluator may be nil in tests.
func InitRouter(ev *alert.Evaluator) {
	evaluator = ev
	registerAccountRoutes()
	registerCategoryRoutes()
	registerSupplierRoutes()
	registerProductRoutes()
	registerReportRoutes()
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func fail(c echo.Context, status int, code, msg string, details interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"error": apiError{Code: code, Message: msg, Details: details},
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":     rows,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize = 20
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func handleValidationError(c echo.Context, err error) error {
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request parameters", err.Error())
}

// errForbidden is the terminal response for staff-only endpoints.
func errForbidden(c echo.Context) error {
	return fail(c, http.StatusForbidden, "FORBIDDEN", "Staff permission required", nil)
}

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetDB(c)
}

// writeOpLog records an operator action, best effort.
func writeOpLog(c echo.Context, action, detail string) {
	username := ""
	if claims := webserver.Claims(c); claims != nil {
		username = claims.Username
	}
	err := GetDB(c).Create(&domain.SysOpLog{
		ID:       common.UUIDint64(),
		Username: username,
		OprIp:    c.RealIP(),
		Action:   action,
		Detail:   detail,
		OptTime:  time.Now(),
	}).Error
	if err != nil {
		zap.L().Warn("failed to write op log", zap.String("action", action), zap.Error(err))
	}
}
