package domain

var Tables = []interface{}{
	// System
	&SysUser{},
	&SysOpLog{},
	// Inventory
	&Category{},
	&Supplier{},
	&Product{},
}
