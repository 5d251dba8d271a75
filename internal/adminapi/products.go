package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockerhq/stocker/internal/domain"
	"github.com/stockerhq/stocker/internal/webserver"
)

type productPayload struct {
	Name         string          `json:"name" validate:"required,min=1,max=150"`
	Strength     string          `json:"strength" validate:"omitempty,max=50"`
	Form         string          `json:"form" validate:"omitempty,max=50"`
	Barcode      string          `json:"barcode" validate:"omitempty,max=64"`
	CategoryId   *int64          `json:"category_id"`
	SupplierIds  []int64         `json:"supplier_ids"`
	Price        decimal.Decimal `json:"price"`
	Quantity     *int            `json:"quantity"`
	ReorderLevel *int            `json:"reorder_level"`
	BatchNo      string          `json:"batch_no" validate:"omitempty,max=64"`
	ExpiryDate   string          `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

// registerProductRoutes registers product CRUD endpoints
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c)
	query := db.Model(&domain.Product{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		// Substring search across product, category and supplier names
		like := "%" + strings.ToLower(q) + "%"
		matched := db.Model(&domain.Product{}).
			Joins("LEFT JOIN inv_category ON inv_category.id = inv_product.category_id").
			Joins("LEFT JOIN inv_product_suppliers ps ON ps.product_id = inv_product.id").
			Joins("LEFT JOIN inv_supplier ON inv_supplier.id = ps.supplier_id").
			Where("LOWER(inv_product.name) LIKE ? OR LOWER(inv_category.name) LIKE ? OR LOWER(inv_supplier.name) LIKE ?",
				like, like, like).
			Distinct("inv_product.id").
			Select("inv_product.id")
		query = query.Where("id IN (?)", matched)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := query.Preload("Category").Preload("Suppliers").
		Order("name ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var p domain.Product
	if err := GetDB(c).Preload("Category").Preload("Suppliers").
		Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	return ok(c, p)
}

// payloadError carries a field rejection out of applyProductPayload so the
// handler can render the response and stop.
type payloadError struct {
	status int
	code   string
	msg    string
}

func (e *payloadError) Error() string { return e.msg }

// applyProductPayload validates payload fields against a loaded (or zero)
// product and fills it in. Checks fail fast, one field at a time.
func applyProductPayload(db *gorm.DB, p *domain.Product, payload *productPayload) *payloadError {
	payload.Name = strings.TrimSpace(payload.Name)

	if payload.Price.IsNegative() {
		return &payloadError{http.StatusBadRequest, "INVALID_PRICE", "Price must be 0 or more"}
	}
	quantity := 0
	if payload.Quantity != nil {
		quantity = *payload.Quantity
	}
	if quantity < 0 {
		return &payloadError{http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be 0 or more"}
	}
	reorderLevel := 5
	if payload.ReorderLevel != nil {
		reorderLevel = *payload.ReorderLevel
	}
	if reorderLevel < 0 {
		return &payloadError{http.StatusBadRequest, "INVALID_REORDER_LEVEL", "Reorder level must be 0 or more"}
	}

	var expiry *time.Time
	if payload.ExpiryDate != "" {
		exp, err := time.ParseInLocation("2006-01-02", payload.ExpiryDate, time.Local)
		if err != nil {
			return &payloadError{http.StatusBadRequest, "INVALID_EXPIRY", "Expiry date must be YYYY-MM-DD"}
		}
		// Today's boundary in the same location the date was parsed in,
		// so a product expiring today is still accepted.
		y, m, d := time.Now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
		if exp.Before(today) {
			return &payloadError{http.StatusBadRequest, "INVALID_EXPIRY", "The expiration date cannot be in the past"}
		}
		expiry = &exp
	}

	barcode := strings.TrimSpace(payload.Barcode)
	if barcode != "" {
		var exists int64
		db.Model(&domain.Product{}).
			Where("barcode = ? AND id != ?", barcode, p.ID).Count(&exists)
		if exists > 0 {
			return &payloadError{http.StatusConflict, "BARCODE_EXISTS", "Barcode already in use"}
		}
	}

	if payload.CategoryId != nil {
		var exists int64
		db.Model(&domain.Category{}).Where("id = ?", *payload.CategoryId).Count(&exists)
		if exists == 0 {
			return &payloadError{http.StatusBadRequest, "INVALID_CATEGORY", "Category does not exist"}
		}
	}

	p.Name = payload.Name
	p.Strength = strings.TrimSpace(payload.Strength)
	p.Form = strings.TrimSpace(payload.Form)
	if barcode != "" {
		p.Barcode = &barcode
	} else {
		p.Barcode = nil
	}
	p.CategoryId = payload.CategoryId
	p.Price = payload.Price
	p.Quantity = quantity
	p.ReorderLevel = reorderLevel
	p.BatchNo = strings.TrimSpace(payload.BatchNo)
	p.ExpiryDate = expiry
	return nil
}

// loadSuppliers resolves the requested supplier set, rejecting unknown IDs.
func loadSuppliers(db *gorm.DB, ids []int64) ([]domain.Supplier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var suppliers []domain.Supplier
	if err := db.Where("id IN ?", ids).Find(&suppliers).Error; err != nil {
		return nil, err
	}
	if len(suppliers) != len(ids) {
		return nil, gorm.ErrRecordNotFound
	}
	return suppliers, nil
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var p domain.Product
	if perr := applyProductPayload(GetDB(c), &p, &payload); perr != nil {
		return fail(c, perr.status, perr.code, perr.msg, nil)
	}

	suppliers, err := loadSuppliers(GetDB(c), payload.SupplierIds)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_SUPPLIER", "One or more suppliers do not exist", nil)
	}

	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()

	// The product row and its supplier set commit or roll back together.
	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
			return err
		}
		if len(suppliers) > 0 {
			return tx.Model(&p).Association("Suppliers").Replace(suppliers)
		}
		return nil
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}

	// Alerting runs after the transaction commits, never inside it.
	if evaluator != nil {
		evaluator.EvaluateAndNotify(&p)
	}

	p.Suppliers = suppliers
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	if perr := applyProductPayload(GetDB(c), &p, &payload); perr != nil {
		return fail(c, perr.status, perr.code, perr.msg, nil)
	}

	suppliers, err := loadSuppliers(GetDB(c), payload.SupplierIds)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_SUPPLIER", "One or more suppliers do not exist", nil)
	}

	p.UpdatedAt = time.Now()

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			return err
		}
		return tx.Model(&p).Association("Suppliers").Replace(suppliers)
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}

	if evaluator != nil {
		evaluator.EvaluateAndNotify(&p)
	}

	p.Suppliers = suppliers
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	if !webserver.IsStaff(c) {
		return errForbidden(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&p).Association("Suppliers").Clear(); err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, id).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}

	writeOpLog(c, "product_delete", p.Name)
	return ok(c, map[string]interface{}{"id": id})
}
