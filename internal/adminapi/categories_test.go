package adminapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stockerhq/stocker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	appc := newTestApp(t)

	rec := invoke(t, appc, createCategory, http.MethodPost, "/api/categories",
		`{"name":"Antibiotics","description":"Antibacterial medicines"}`, asStaff())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var saved domain.Category
	require.NoError(t, appc.DB().Where("name = ?", "Antibiotics").First(&saved).Error)
	assert.Equal(t, "Antibacterial medicines", saved.Description)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	appc := newTestApp(t)
	require.NoError(t, appc.DB().Create(&domain.Category{Name: "Antibiotics"}).Error)

	rec := invoke(t, appc, createCategory, http.MethodPost, "/api/categories",
		`{"name":"Antibiotics"}`, asStaff())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CATEGORY_EXISTS", errorCode(t, rec))
}

func TestCreateCategoryRequiresStaff(t *testing.T) {
	appc := newTestApp(t)

	rec := invoke(t, appc, createCategory, http.MethodPost, "/api/categories",
		`{"name":"Antibiotics"}`, asUser("sara", domain.UserLevelNormal))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
}

func TestUpdateCategoryRenameCollision(t *testing.T) {
	appc := newTestApp(t)
	a := domain.Category{Name: "Analgesics"}
	b := domain.Category{Name: "Antibiotics"}
	require.NoError(t, appc.DB().Create(&a).Error)
	require.NoError(t, appc.DB().Create(&b).Error)

	rec := invoke(t, appc, updateCategory, http.MethodPut, "/api/categories/"+fmt.Sprint(a.ID),
		`{"name":"Antibiotics"}`, asStaff(), withParam("id", fmt.Sprint(a.ID)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CATEGORY_EXISTS", errorCode(t, rec))

	// saving a category under its own name is not a collision
	rec = invoke(t, appc, updateCategory, http.MethodPut, "/api/categories/"+fmt.Sprint(a.ID),
		`{"name":"Analgesics","description":"Pain relief"}`, asStaff(), withParam("id", fmt.Sprint(a.ID)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDeleteCategoryDetachesProducts(t *testing.T) {
	appc := newTestApp(t)
	cat := domain.Category{Name: "Analgesics"}
	require.NoError(t, appc.DB().Create(&cat).Error)
	p := domain.Product{Name: "Paracetamol", Price: decimal.RequireFromString("5.00"), CategoryId: &cat.ID}
	require.NoError(t, appc.DB().Create(&p).Error)

	rec := invoke(t, appc, deleteCategory, http.MethodDelete, "/api/categories/"+fmt.Sprint(cat.ID),
		"", asStaff(), withParam("id", fmt.Sprint(cat.ID)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var catCount int64
	require.NoError(t, appc.DB().Model(&domain.Category{}).Count(&catCount).Error)
	assert.Equal(t, int64(0), catCount)

	// the product survives with its category reference cleared
	var saved domain.Product
	require.NoError(t, appc.DB().First(&saved, p.ID).Error)
	assert.Nil(t, saved.CategoryId)
}

func TestDeleteCategoryNotFound(t *testing.T) {
	appc := newTestApp(t)

	rec := invoke(t, appc, deleteCategory, http.MethodDelete, "/api/categories/404",
		"", asStaff(), withParam("id", "404"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CATEGORY_NOT_FOUND", errorCode(t, rec))
}

func TestListCategoriesSorted(t *testing.T) {
	appc := newTestApp(t)
	for _, name := range []string{"Vitamins", "Analgesics", "First Aid"} {
		require.NoError(t, appc.DB().Create(&domain.Category{Name: name}).Error)
	}

	rec := invoke(t, appc, listCategories, http.MethodGet, "/api/categories", "",
		asUser("sara", domain.UserLevelNormal))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rows []domain.Category
	decodeData(t, rec, &rows)
	require.Len(t, rows, 3)
	assert.Equal(t, "Analgesics", rows[0].Name)
	assert.Equal(t, "First Aid", rows[1].Name)
	assert.Equal(t, "Vitamins", rows[2].Name)
}
