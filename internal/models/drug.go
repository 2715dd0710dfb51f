package models

// Drug represents an entry in the pharmacy commodity catalog
type Drug struct {
	BaseModel
	CommodityName string `gorm:"size:255;not null;index" json:"commodityName"`
	GenericName   string `gorm:"size:255" json:"genericName,omitempty"`
	Strength      string `gorm:"size:50" json:"strength,omitempty"`
	Unit          string `gorm:"size:30" json:"unit,omitempty"`
	Quantity      int    `gorm:"default:0" json:"quantity"` // current on-hand stock
	ReorderLevel  int    `gorm:"default:0" json:"reorderLevel"`
	IsActive      bool   `gorm:"default:true" json:"isActive"`
}
