package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product là sản phẩm trong catalog (collection products)
type Product struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	StoreID       string             `json:"storeId" bson:"store_id"`
	Name          string             `json:"name" bson:"name"`
	Category      string             `json:"category" bson:"category"`
	Price         float64            `json:"price" bson:"price"`
	CostPrice     *float64           `json:"costPrice,omitempty" bson:"cost_price,omitempty"`
	StockQuantity float64            `json:"stockQuantity" bson:"stock_quantity"`
	MinStockLevel float64            `json:"minStockLevel" bson:"min_stock_level"`
	IsActive      bool               `json:"isActive" bson:"is_active"`
}

// IsLowStock: tồn kho <= mức tối thiểu
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}
