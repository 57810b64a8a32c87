package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store là cửa hàng (collection stores). Analytics chỉ đọc timezone.
type Store struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	StoreID  string             `json:"storeId" bson:"store_id"`
	Name     string             `json:"name" bson:"name"`
	Timezone string             `json:"timezone,omitempty" bson:"timezone,omitempty"` // IANA, vd: Europe/Istanbul
	Currency string             `json:"currency,omitempty" bson:"currency,omitempty"`
}
