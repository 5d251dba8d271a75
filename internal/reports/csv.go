package reports

import (
	"context"
	"fmt"
	"sort"

	"github.com/gocarina/gocsv"
)

// InventoryCSVRow is one exported product line. Column order and headers are
// part of the download contract.
type InventoryCSVRow struct {
	Name         string `csv:"Name"`
	Strength     string `csv:"Strength"`
	Form         string `csv:"Form"`
	Barcode      string `csv:"Barcode"`
	Category     string `csv:"Category"`
	Suppliers    string `csv:"Suppliers"`
	Price        string `csv:"Price"`
	Quantity     int    `csv:"Quantity"`
	ReorderLevel int    `csv:"ReorderLevel"`
	BatchNo      string `csv:"BatchNo"`
	Expiry       string `csv:"Expiry"`
}

// SupplierSummaryCSVRow is one supplier-group line of the summary export.
type SupplierSummaryCSVRow struct {
	Supplier      string `csv:"Supplier"`
	ProductsCount int    `csv:"ProductsCount"`
	StockValue    string `csv:"StockValue"`
}

// InventoryCSV renders the full catalog as CSV, one row per product ordered
// by name ascending. The returned filename embeds the current local date.
// An empty catalog still yields a well-formed header-only file.
func (s *Service) InventoryCSV(ctx context.Context) (filename string, data []byte, err error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return "", nil, err
	}

	rows := make([]InventoryCSVRow, 0, len(products))
	for _, p := range products {
		row := InventoryCSVRow{
			Name:         p.Name,
			Strength:     p.Strength,
			Form:         p.Form,
			Price:        p.Price.StringFixed(2),
			Quantity:     p.Quantity,
			ReorderLevel: p.ReorderLevel,
			BatchNo:      p.BatchNo,
		}
		if p.Barcode != nil {
			row.Barcode = *p.Barcode
		}
		if p.Category != nil {
			row.Category = p.Category.Name
		}
		for i, sup := range p.Suppliers {
			if i > 0 {
				row.Suppliers += ", "
			}
			row.Suppliers += sup.Name
		}
		if p.ExpiryDate != nil {
			row.Expiry = p.ExpiryDate.Format("2006-01-02")
		}
		rows = append(rows, row)
	}

	data, err = gocsv.MarshalBytes(&rows)
	if err != nil {
		return "", nil, err
	}
	filename = fmt.Sprintf("inventory_%s.csv", s.now().Format("2006-01-02"))
	return filename, data, nil
}

// SupplierSummaryCSV renders the by-supplier rollup, one row per supplier
// name including the "(No supplier)" placeholder, ordered by supplier name
// ascending (the placeholder sorts as its literal string).
func (s *Service) SupplierSummaryCSV(ctx context.Context) (filename string, data []byte, err error) {
	groups, err := s.supplierGroups(ctx)
	if err != nil {
		return "", nil, err
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].SupplierName < groups[j].SupplierName
	})

	rows := make([]SupplierSummaryCSVRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, SupplierSummaryCSVRow{
			Supplier:      g.SupplierName,
			ProductsCount: g.ProductsCount,
			StockValue:    g.StockValue.StringFixed(2),
		})
	}

	data, err = gocsv.MarshalBytes(&rows)
	if err != nil {
		return "", nil, err
	}
	filename = fmt.Sprintf("suppliers_summary_%s.csv", s.now().Format("2006-01-02"))
	return filename, data, nil
}
