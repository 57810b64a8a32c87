package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Expense là một khoản chi (collection expenses)
type Expense struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	StoreID       string             `json:"storeId" bson:"store_id"`
	Date          time.Time          `json:"date" bson:"date"`
	ProductName   string             `json:"productName" bson:"product_name"`
	ProductID     string             `json:"productId,omitempty" bson:"product_id,omitempty"`
	Quantity      float64            `json:"quantity" bson:"quantity"`
	Amount        float64            `json:"amount" bson:"amount"`
	CostPerUnit   *float64           `json:"costPerUnit,omitempty" bson:"cost_per_unit,omitempty"` // amount / quantity, nil khi quantity <= 0
	Category      string             `json:"category" bson:"category"`
	PaymentMethod string             `json:"paymentMethod" bson:"payment_method"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
}

// RecomputeCostPerUnit tính lại cost_per_unit = amount / quantity (làm tròn 2 chữ số).
// quantity <= 0 thì xóa cost_per_unit.
func (e *Expense) RecomputeCostPerUnit() {
	if e.Quantity <= 0 {
		e.CostPerUnit = nil
		return
	}
	cpu, _ := decimal.NewFromFloat(e.Amount).
		Div(decimal.NewFromFloat(e.Quantity)).
		Round(2).
		Float64()
	e.CostPerUnit = &cpu
}
