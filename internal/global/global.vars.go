// Package global giữ các biến dùng chung toàn process: session MongoDB, cấu hình, tên collection, registry, validator.
package global

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"greep_market/config"
	"greep_market/internal/registry"
)

// MongoDB_CollectionName chứa tên các collection mà tầng analytics đọc
type MongoDB_CollectionName struct {
	Transactions string // Tên collection cho giao dịch bán hàng
	Expenses     string // Tên collection cho chi phí
	Products     string // Tên collection cho sản phẩm
	Stores       string // Tên collection cho cửa hàng (timezone theo store)
}

// DefaultCollectionNames trả về tên collection mặc định.
func DefaultCollectionNames() MongoDB_CollectionName {
	return MongoDB_CollectionName{
		Transactions: "transactions",
		Expenses:     "expenses",
		Products:     "products",
		Stores:       "stores",
	}
}

// Các biến toàn cục
var Validate *validator.Validate                                         // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                        // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration                           // Cấu hình của server
var MongoDB_ColNames MongoDB_CollectionName = DefaultCollectionNames() // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryLocations = registry.NewRegistry[*time.Location]()      // Registry chứa các timezone đã load
