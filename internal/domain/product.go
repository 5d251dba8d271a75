package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NearExpiryDays is the alerting horizon: a product whose expiry date falls
// within this many days (inclusive) counts as near expiry.
const NearExpiryDays = 30

// Product is a stocked pharmacy item. Category is optional (at most one),
// suppliers is a free set. Price carries two fraction digits end to end.
type Product struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string          `gorm:"size:150;index" json:"name"`
	Strength     string          `gorm:"size:50" json:"strength"` // e.g. 500mg, 5mg/ml
	Form         string          `gorm:"size:50" json:"form"`     // e.g. Tablet, Syrup
	Barcode      *string         `gorm:"size:64;uniqueIndex" json:"barcode,omitempty"`
	CategoryId   *int64          `gorm:"index" json:"category_id,omitempty"`
	Category     *Category       `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Suppliers    []Supplier      `gorm:"many2many:inv_product_suppliers" json:"suppliers,omitempty"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Quantity     int             `gorm:"default:0" json:"quantity"`
	ReorderLevel int             `gorm:"default:5" json:"reorder_level"`
	BatchNo      string          `gorm:"size:64" json:"batch_no"`
	ExpiryDate   *time.Time      `gorm:"type:date" json:"expiry_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "inv_product"
}

// StockValue returns price * quantity with the stored price precision.
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// IsLowStock reports whether quantity has fallen to the reorder level.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.ReorderLevel
}

// DaysToExpiry returns the whole days until the expiry date. The second
// result is false when the product has no expiry date.
func (p *Product) DaysToExpiry(now time.Time) (int, bool) {
	if p.ExpiryDate == nil {
		return 0, false
	}
	days := int(p.ExpiryDate.Sub(now) / (24 * time.Hour))
	return days, true
}

// IsNearExpiry reports whether the expiry date is set and falls within
// days of now (inclusive). Always false without an expiry date.
func (p *Product) IsNearExpiry(now time.Time, days int) bool {
	if p.ExpiryDate == nil {
		return false
	}
	return !p.ExpiryDate.After(now.AddDate(0, 0, days))
}
