// Package models - các entity mà domain Analytics đọc (transactions, expenses, products, stores).
// Analytics không ghi vào các collection này.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái giao dịch
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusCancelled = "cancelled"
	TransactionStatusVoided    = "voided"
)

// Nguồn đơn
const (
	OrderSourceOnline   = "online"
	OrderSourceInStore  = "in-store"
	OrderSourcePhone    = "phone"
	OrderSourceDelivery = "delivery"
)

// TransactionItem là một dòng hàng trong giao dịch
type TransactionItem struct {
	ProductID   string  `json:"productId" bson:"product_id"`
	ProductName string  `json:"productName" bson:"product_name"`
	Quantity    float64 `json:"quantity" bson:"quantity"`
	UnitPrice   float64 `json:"unitPrice" bson:"unit_price"`
	TotalPrice  float64 `json:"totalPrice" bson:"total_price"`
}

// Transaction là một giao dịch bán hàng (collection transactions)
type Transaction struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	StoreID       string             `json:"storeId" bson:"store_id"`
	Items         []TransactionItem  `json:"items" bson:"items"`
	TotalAmount   float64            `json:"totalAmount" bson:"total_amount"`
	PaymentMethod string             `json:"paymentMethod" bson:"payment_method"`
	Status        string             `json:"status" bson:"status"`
	OrderSource   string             `json:"orderSource" bson:"order_source"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"` // Thời điểm tuyệt đối (UTC)
}
