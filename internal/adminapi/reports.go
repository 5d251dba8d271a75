package adminapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockerhq/stocker/internal/reports"
	"github.com/stockerhq/stocker/internal/webserver"
)

// registerReportRoutes registers the reporting pages and CSV downloads.
// All of them are read-only GETs behind authentication.
func registerReportRoutes() {
	webserver.ApiGET("/reports/dashboard", reportsDashboard)
	webserver.ApiGET("/reports/inventory", inventoryReport)
	webserver.ApiGET("/reports/suppliers", supplierReport)
	webserver.ApiGET("/reports/export/inventory.csv", exportInventoryCSV)
	webserver.ApiGET("/reports/export/suppliers.csv", exportSupplierSummaryCSV)
}

func reportService(c echo.Context) *reports.Service {
	return reports.NewService(reports.NewGormProductRepository(GetDB(c)))
}

func reportsDashboard(c echo.Context) error {
	summary, err := reportService(c).DashboardSummary(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to build dashboard summary", err.Error())
	}
	return ok(c, summary)
}

func inventoryReport(c echo.Context) error {
	report, err := reportService(c).InventoryReport(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to build inventory report", err.Error())
	}
	return ok(c, report)
}

func supplierReport(c echo.Context) error {
	bySupplier, err := reportService(c).SupplierReport(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to build supplier report", err.Error())
	}
	return ok(c, map[string]interface{}{"by_supplier": bySupplier})
}

func exportInventoryCSV(c echo.Context) error {
	filename, data, err := reportService(c).InventoryCSV(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to export inventory", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "text/csv", data)
}

func exportSupplierSummaryCSV(c echo.Context) error {
	filename, data, err := reportService(c).SupplierSummaryCSV(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to export supplier summary", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "text/csv", data)
}
