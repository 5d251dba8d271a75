package adminapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/stockerhq/stocker/internal/domain"
	"github.com/stockerhq/stocker/internal/webserver"
)

type supplierPayload struct {
	Name    string `json:"name" validate:"required,min=1,max=150"`
	Email   string `json:"email" validate:"omitempty,email,max=150"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Website string `json:"website" validate:"omitempty,url,max=255"`
	Address string `json:"address" validate:"omitempty,max=2000"`
}

// registerSupplierRoutes registers supplier CRUD routes
func registerSupplierRoutes() {
	webserver.ApiGET("/suppliers", listSuppliers)
	webserver.ApiGET("/suppliers/:id", getSupplier)
	webserver.ApiPOST("/suppliers", createSupplier)
	webserver.ApiPUT("/suppliers/:id", updateSupplier)
	webserver.ApiDELETE("/suppliers/:id", deleteSupplier)
	webserver.ApiPOST("/suppliers/:id/logo", uploadSupplierLogo)
}

func listSuppliers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Supplier{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, "%"+q+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query suppliers", err.Error())
	}

	var suppliers []domain.Supplier
	if err := db.Order("name ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&suppliers).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query suppliers", err.Error())
	}

	return paged(c, suppliers, total, page, pageSize)
}

func getSupplier(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid supplier ID", nil)
	}

	var s domain.Supplier
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "SUPPLIER_NOT_FOUND", "Supplier not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query supplier", err.Error())
	}

	// Include the supplier's products on the detail view
	var products []domain.Product
	if err := GetDB(c).
		Joins("JOIN inv_product_suppliers ps ON ps.product_id = inv_product.id AND ps.supplier_id = ?", id).
		Order("name ASC").Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query supplier products", err.Error())
	}

	return ok(c, map[string]interface{}{"supplier": s, "products": products})
}

func createSupplier(c echo.Context) error {
	if !webserver.IsStaff(c) {
		return errForbidden(c)
	}

	var payload supplierPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse supplier parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	s := domain.Supplier{
		Name:      strings.TrimSpace(payload.Name),
		Email:     strings.TrimSpace(payload.Email),
		Phone:     strings.TrimSpace(payload.Phone),
		Website:   strings.TrimSpace(payload.Website),
		Address:   payload.Address,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&s).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create supplier", err.Error())
	}

	return ok(c, s)
}

func updateSupplier(c echo.Context) error {
	if !webserver.IsStaff(c) {
		return errForbidden(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid supplier ID", nil)
	}

	var payload supplierPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse supplier parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var s domain.Supplier
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "SUPPLIER_NOT_FOUND", "Supplier not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query supplier", err.Error())
	}

	s.Name = strings.TrimSpace(payload.Name)
	s.Email = strings.TrimSpace(payload.Email)
	s.Phone = strings.TrimSpace(payload.Phone)
	s.Website = strings.TrimSpace(payload.Website)
	s.Address = payload.Address
	s.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&s).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update supplier", err.Error())
	}

	return ok(c, s)
}

// deleteSupplier removes a supplier. Products keep existing; only the
// association rows are cleared, in the same transaction as the delete.
func deleteSupplier(c echo.Context) error {
	if !webserver.IsStaff(c) {
		return errForbidden(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid supplier ID", nil)
	}

	var s domain.Supplier
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "SUPPLIER_NOT_FOUND", "Supplier not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query supplier", err.Error())
	}

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM inv_product_suppliers WHERE supplier_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Supplier{}, id).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete supplier", err.Error())
	}

	writeOpLog(c, "supplier_delete", s.Name)
	return ok(c, map[string]interface{}{"id": id})
}

// uploadSupplierLogo stores the uploaded logo under the workdir uploads
// directory and keeps the stored path on the record.
func uploadSupplierLogo(c echo.Context) error {
	if !webserver.IsStaff(c) {
		return errForbidden(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid supplier ID", nil)
	}

	var s domain.Supplier
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "SUPPLIER_NOT_FOUND", "Supplier not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query supplier", err.Error())
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Logo file is required", nil)
	}

	src, err := file.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read logo file", err.Error())
	}
	defer src.Close()

	uploadDir := filepath.Join(webserver.GetConfig(c).GetUploadDir(), "suppliers")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return fail(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store logo", err.Error())
	}
	dstPath := filepath.Join(uploadDir, fmt.Sprintf("%d_%s", id, filepath.Base(file.Filename)))
	dst, err := os.Create(dstPath)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store logo", err.Error())
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fail(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store logo", err.Error())
	}

	s.Logo = dstPath
	s.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&s).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update supplier", err.Error())
	}

	return ok(c, s)
}
