package database

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"greep_market/internal/global"
	"greep_market/internal/logger"
)

// IndexSpec mô tả một index cần có trên collection.
type IndexSpec struct {
	Collection string
	Name       string
	Keys       bson.D
}

// AnalyticsIndexes trả về danh sách index phục vụ các $match theo store + thời gian.
func AnalyticsIndexes(names global.MongoDB_CollectionName) []IndexSpec {
	return []IndexSpec{
		// transactions: $match store_id + created_at cho mọi aggregation dashboard
		{Collection: names.Transactions, Name: "txn_store_created", Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "created_at", Value: -1}}},
		// transactions: lọc theo status trong cùng store
		{Collection: names.Transactions, Name: "txn_store_status_created", Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		// expenses: series và stats theo ngày chi
		{Collection: names.Expenses, Name: "expense_store_date", Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "date", Value: -1}}},
		// products: inventory, worst performers
		{Collection: names.Products, Name: "product_store_active", Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "is_active", Value: 1}}},
	}
}

// CreateAnalyticsIndexes tạo các index analytics, bỏ qua lỗi "đã tồn tại".
func CreateAnalyticsIndexes(ctx context.Context, db *mongo.Database) error {
	for _, spec := range AnalyticsIndexes(global.MongoDB_ColNames) {
		_, err := db.Collection(spec.Collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    spec.Keys,
			Options: options.Index().SetName(spec.Name),
		})
		if err != nil && !isIndexExistsError(err) {
			return err
		}
		logger.WithModule("database").WithField("index", spec.Name).Debug("Ensured index")
	}
	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
