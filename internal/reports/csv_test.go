package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/stockerhq/stocker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inventoryHeader = []string{
	"Name", "Strength", "Form", "Barcode", "Category", "Suppliers",
	"Price", "Quantity", "ReorderLevel", "BatchNo", "Expiry",
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestInventoryCSV(t *testing.T) {
	svc, db := newTestService(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	analgesics := seedCategory(t, db, "Analgesics")
	acme := seedSupplier(t, db, "Acme Pharma")
	zenith := seedSupplier(t, db, "Zenith Labs")

	expiry := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	seedProduct(t, db, productSpec{
		name: "Paracetamol", strength: "500mg", form: "Tablet", barcode: "620001112223",
		price: "5.00", quantity: 8, reorder: 10, category: analgesics,
		suppliers: []domain.Supplier{acme, zenith},
		batchNo:   "L2025-07", expiry: datePtr(expiry),
	})
	seedProduct(t, db, productSpec{name: "Gauze", price: "1.00", quantity: 100, reorder: 5})

	filename, data, err := svc.InventoryCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inventory_2025-06-01.csv", filename)

	records := parseCSV(t, data)
	require.Len(t, records, 3, "header plus one row per product")
	assert.Equal(t, inventoryHeader, records[0])

	// rows ordered by product name ascending
	gauze, paracetamol := records[1], records[2]
	assert.Equal(t, "Gauze", gauze[0])
	assert.Equal(t, "", gauze[3], "barcode empty when unset")
	assert.Equal(t, "", gauze[4], "category empty when unset")
	assert.Equal(t, "", gauze[5], "suppliers empty when none")
	assert.Equal(t, "", gauze[10], "expiry empty when unset")

	assert.Equal(t, "Paracetamol", paracetamol[0])
	assert.Equal(t, "500mg", paracetamol[1])
	assert.Equal(t, "Tablet", paracetamol[2])
	assert.Equal(t, "Analgesics", paracetamol[4])
	assert.Equal(t, "Acme Pharma, Zenith Labs", paracetamol[5])
	assert.Equal(t, "5.00", paracetamol[6])
	assert.Equal(t, "8", paracetamol[7])
	assert.Equal(t, "10", paracetamol[8])
	assert.Equal(t, "L2025-07", paracetamol[9])
	assert.Equal(t, "2025-09-15", paracetamol[10])
}

func TestInventoryCSVEmptyCatalog(t *testing.T) {
	svc, _ := newTestService(t)

	_, data, err := svc.InventoryCSV(context.Background())
	require.NoError(t, err)

	records := parseCSV(t, data)
	require.Len(t, records, 1, "header only")
	assert.Equal(t, inventoryHeader, records[0])
}

func TestInventoryCSVRowCountMatchesCatalog(t *testing.T) {
	svc, db := newTestService(t)
	for i := 0; i < 7; i++ {
		seedProduct(t, db, productSpec{name: fmt.Sprintf("Product %02d", i), price: "1.50", quantity: i, reorder: 3})
	}

	_, data, err := svc.InventoryCSV(context.Background())
	require.NoError(t, err)

	var total int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&total).Error)
	records := parseCSV(t, data)
	assert.Equal(t, int(total)+1, len(records))
}

func TestSupplierSummaryCSV(t *testing.T) {
	svc, db := newTestService(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	acme := seedSupplier(t, db, "Acme Pharma")
	zenith := seedSupplier(t, db, "Zenith Labs")

	seedProduct(t, db, productSpec{name: "Paracetamol", price: "5.00", quantity: 8, reorder: 10,
		suppliers: []domain.Supplier{acme, zenith}})
	seedProduct(t, db, productSpec{name: "Ibuprofen", price: "7.50", quantity: 60, reorder: 15,
		suppliers: []domain.Supplier{acme}})
	seedProduct(t, db, productSpec{name: "Gauze", price: "1.00", quantity: 100, reorder: 5})

	filename, data, err := svc.SupplierSummaryCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "suppliers_summary_2025-06-01.csv", filename)

	records := parseCSV(t, data)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Supplier", "ProductsCount", "StockValue"}, records[0])

	// ordered by supplier name ascending; the placeholder sorts by its literal
	assert.Equal(t, []string{"(No supplier)", "1", "100.00"}, records[1])
	assert.Equal(t, []string{"Acme Pharma", "2", "490.00"}, records[2])
	assert.Equal(t, []string{"Zenith Labs", "1", "40.00"}, records[3])
}
