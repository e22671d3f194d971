package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	baseModel "khanmall/pkg/model"
)

// StringList is a jsonb-backed string slice (image URLs, size labels).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	return string(data), err
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("unsupported type for StringList")
}

// Product is a storefront product. Stock is co-written by the order module:
// reserved at checkout, restored on cancellation.
type Product struct {
	baseModel.BaseModel
	Name        string     `gorm:"type:varchar(200);not null" json:"name"`
	Description string     `json:"description"`
	Price       int64      `gorm:"not null" json:"price"` // tögrög
	Images      StringList `gorm:"type:jsonb" json:"images"`
	Sizes       StringList `gorm:"type:jsonb" json:"sizes"`
	CategoryID  string     `gorm:"type:uuid;index" json:"categoryId"`
	Stock       int        `gorm:"not null;default:0" json:"stock"`
	IsActive    bool       `gorm:"default:true" json:"isActive"`
}

// Category groups products.
type Category struct {
	baseModel.BaseModel
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Slug     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Ordering int    `gorm:"default:0" json:"ordering"`
}

// Banner is a storefront hero banner.
type Banner struct {
	baseModel.BaseModel
	Title    string `gorm:"type:varchar(200)" json:"title"`
	Image    string `gorm:"not null" json:"image"`
	Link     string `json:"link"`
	Ordering int    `gorm:"default:0" json:"ordering"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}
