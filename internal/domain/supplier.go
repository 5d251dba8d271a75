package domain

import "time"

// Supplier is a pharmaceutical supplier. All contact fields are optional.
type Supplier struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:150;index" json:"name" form:"name"`
	Email     string    `gorm:"size:150" json:"email" form:"email"`
	Phone     string    `gorm:"size:20" json:"phone" form:"phone"`
	Logo      string    `gorm:"size:512" json:"logo"` // stored file path, uploaded separately
	Website   string    `gorm:"size:255" json:"website" form:"website"`
	Address   string    `json:"address" form:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Supplier) TableName() string {
	return "inv_supplier"
}
