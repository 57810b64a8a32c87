package analyticssvc

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	analyticsdto "greep_market/internal/api/analytics/dto"
	"greep_market/internal/api/analytics/models"
	"greep_market/internal/common"
)

// MongoProductStore đọc collection products
type MongoProductStore struct {
	coll *mongo.Collection
}

// NewMongoProductStore tạo store trên collection products
func NewMongoProductStore(coll *mongo.Collection) *MongoProductStore {
	return &MongoProductStore{coll: coll}
}

// inventoryPipeline: tổng, đang bán, sắp hết hàng (stock_quantity <= min_stock_level, chỉ tính sản phẩm đang bán), theo category
func inventoryPipeline(storeID string) []bson.M {
	return []bson.M{
		{"$match": bson.M{"store_id": storeID}},
		{"$facet": bson.M{
			"total":  []bson.M{{"$count": "n"}},
			"active": []bson.M{{"$match": bson.M{"is_active": true}}, {"$count": "n"}},
			"lowStock": []bson.M{
				{"$match": bson.M{
					"is_active": true,
					"$expr": bson.M{"$lte": bson.A{
						numberOrZero("$stock_quantity"),
						numberOrZero("$min_stock_level"),
					}},
				}},
				{"$count": "n"},
			},
			"categories": []bson.M{
				{"$group": bson.M{"_id": bson.M{"$ifNull": bson.A{"$category", "uncategorized"}}, "n": bson.M{"$sum": 1}}},
			},
		}},
	}
}

// Inventory khối tồn kho của dashboard
func (s *MongoProductStore) Inventory(ctx context.Context, storeID string) (*analyticsdto.InventorySummary, error) {
	type count struct {
		Key string `bson:"_id"`
		N   int64  `bson:"n"`
	}
	var rows []struct {
		Total      []count `bson:"total"`
		Active     []count `bson:"active"`
		LowStock   []count `bson:"lowStock"`
		Categories []count `bson:"categories"`
	}
	if err := aggregateAll(ctx, s.coll, inventoryPipeline(storeID), &rows); err != nil {
		return nil, err
	}
	inv := &analyticsdto.InventorySummary{Categories: make(map[string]int64)}
	if len(rows) == 0 {
		return inv, nil
	}
	first := func(c []count) int64 {
		if len(c) == 0 {
			return 0
		}
		return c[0].N
	}
	r := rows[0]
	inv.TotalProducts = first(r.Total)
	inv.ActiveProducts = first(r.Active)
	inv.LowStockCount = first(r.LowStock)
	for _, c := range r.Categories {
		inv.Categories[c.Key] = c.N
	}
	return inv, nil
}

// InStock sản phẩm đang bán còn hàng
func (s *MongoProductStore) InStock(ctx context.Context, storeID string) ([]models.Product, error) {
	filter := bson.M{"store_id": storeID, "is_active": true, "stock_quantity": bson.M{"$gt": 0}}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "stock_quantity", Value: -1}}))
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return products, nil
}

// FindForExpense tìm sản phẩm ứng với expense
func (s *MongoProductStore) FindForExpense(ctx context.Context, storeID string, expense *models.Expense) (*models.Product, error) {
	filter := bson.M{"store_id": storeID}
	if oid, err := primitive.ObjectIDFromHex(expense.ProductID); err == nil {
		filter["_id"] = oid
	} else {
		name := strings.TrimSpace(expense.ProductName)
		if name == "" {
			return nil, common.ErrNotFound
		}
		filter["name"] = bson.M{"$regex": "^" + regexp.QuoteMeta(name) + "$", "$options": "i"}
	}

	var p models.Product
	if err := s.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return &p, nil
}
