package reports

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockerhq/stocker/internal/domain"
)

// Placeholder group names for products without a relation.
const (
	NoCategoryName = "(No category)"
	NoSupplierName = "(No supplier)"
)

// DashboardSummary is the headline rollup shown on the reports dashboard.
type DashboardSummary struct {
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	TotalProducts   int64           `json:"total_products"`
	LowStockCount   int64           `json:"low_stock_count"`
	NearExpiryCount int64           `json:"near_expiry_count"`
}

// CategoryGroup is one row of the by-category rollup. CategoryID is nil for
// the "no category" bucket.
type CategoryGroup struct {
	CategoryID    *int64          `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	ProductsCount int             `json:"products_count"`
	StockValue    decimal.Decimal `json:"stock_value"`
}

// SupplierGroup is one row of the by-supplier rollup. A product with N
// suppliers contributes to N groups; products without suppliers fall into
// the "(No supplier)" bucket (SupplierID nil).
type SupplierGroup struct {
	SupplierID    *int64          `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	ProductsCount int             `json:"products_count"`
	StockValue    decimal.Decimal `json:"stock_value"`
}

// InventoryReport is the full inventory report page payload.
type InventoryReport struct {
	TotalStockValue decimal.Decimal   `json:"total_stock_value"`
	ByCategory      []CategoryGroup   `json:"by_category"`
	NearExpiry      []*domain.Product `json:"near_expiry"`
	LowStock        []*domain.Product `json:"low_stock"`
}

// Service computes read-only derived views over the catalog. Grouping by
// related entities is done with an explicit in-memory group-by so decimal
// stock values never pass through driver-dependent SQL arithmetic.
type Service struct {
	repo ProductRepository
	now  func() time.Time
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) expiryHorizon() time.Time {
	return s.now().AddDate(0, 0, domain.NearExpiryDays)
}

// DashboardSummary returns totals for the reports dashboard. All values
// default to zero on an empty catalog.
func (s *Service) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		TotalStockValue: decimal.Zero,
		TotalProducts:   int64(len(products)),
	}
	horizon := s.expiryHorizon()
	for _, p := range products {
		summary.TotalStockValue = summary.TotalStockValue.Add(p.StockValue())
		if p.IsLowStock() {
			summary.LowStockCount++
		}
		if p.ExpiryDate != nil && !p.ExpiryDate.After(horizon) {
			summary.NearExpiryCount++
		}
	}
	return summary, nil
}

// InventoryReport groups the catalog by category (with an explicit
// "no category" group), plus the low-stock and near-expiry listings.
func (s *Service) InventoryReport(ctx context.Context) (*InventoryReport, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	groups := make(map[int64]*CategoryGroup) // key 0 is the "no category" bucket
	for _, p := range products {
		total = total.Add(p.StockValue())

		var key int64
		name := NoCategoryName
		var catID *int64
		if p.CategoryId != nil {
			key = *p.CategoryId
			catID = p.CategoryId
			if p.Category != nil {
				name = p.Category.Name
			}
		}
		g, found := groups[key]
		if !found {
			g = &CategoryGroup{CategoryID: catID, CategoryName: name, StockValue: decimal.Zero}
			groups[key] = g
		}
		g.ProductsCount++
		g.StockValue = g.StockValue.Add(p.StockValue())
	}

	byCategory := make([]CategoryGroup, 0, len(groups))
	for _, g := range groups {
		byCategory = append(byCategory, *g)
	}
	sort.Slice(byCategory, func(i, j int) bool {
		if byCategory[i].ProductsCount != byCategory[j].ProductsCount {
			return byCategory[i].ProductsCount > byCategory[j].ProductsCount
		}
		return byCategory[i].CategoryName < byCategory[j].CategoryName
	})

	nearExpiry, err := s.repo.ListNearExpiry(ctx, s.expiryHorizon())
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}

	return &InventoryReport{
		TotalStockValue: total,
		ByCategory:      byCategory,
		NearExpiry:      nearExpiry,
		LowStock:        lowStock,
	}, nil
}

// SupplierReport groups the catalog by supplier. Each product counts once
// per supplier group even if duplicate join rows exist; products with no
// suppliers fall into the "(No supplier)" group.
func (s *Service) SupplierReport(ctx context.Context) ([]SupplierGroup, error) {
	groups, err := s.supplierGroups(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].ProductsCount != groups[j].ProductsCount {
			return groups[i].ProductsCount > groups[j].ProductsCount
		}
		return groups[i].SupplierName < groups[j].SupplierName
	})
	return groups, nil
}

func (s *Service) supplierGroups(ctx context.Context) ([]SupplierGroup, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		group SupplierGroup
		seen  map[int64]bool
	}
	buckets := make(map[int64]*bucket) // key 0 is the "(No supplier)" bucket
	add := func(key int64, supID *int64, name string, p *domain.Product) {
		b, found := buckets[key]
		if !found {
			b = &bucket{
				group: SupplierGroup{SupplierID: supID, SupplierName: name, StockValue: decimal.Zero},
				seen:  make(map[int64]bool),
			}
			buckets[key] = b
		}
		if b.seen[p.ID] {
			return
		}
		b.seen[p.ID] = true
		b.group.ProductsCount++
		b.group.StockValue = b.group.StockValue.Add(p.StockValue())
	}

	for _, p := range products {
		if len(p.Suppliers) == 0 {
			add(0, nil, NoSupplierName, p)
			continue
		}
		for i := range p.Suppliers {
			sup := p.Suppliers[i]
			id := sup.ID
			add(id, &id, sup.Name, p)
		}
	}

	groups := make([]SupplierGroup, 0, len(buckets))
	for _, b := range buckets {
		groups = append(groups, b.group)
	}
	return groups, nil
}
