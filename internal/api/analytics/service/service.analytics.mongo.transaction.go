package analyticssvc

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"greep_market/internal/api/analytics/models"
	"greep_market/internal/common"
	"greep_market/internal/timerange"
)

// MongoTransactionStore đọc collection transactions bằng aggregation
type MongoTransactionStore struct {
	coll *mongo.Collection
}

// NewMongoTransactionStore tạo store trên collection transactions
func NewMongoTransactionStore(coll *mongo.Collection) *MongoTransactionStore {
	return &MongoTransactionStore{coll: coll}
}

// Totals tổng doanh thu + số giao dịch
func (s *MongoTransactionStore) Totals(ctx context.Context, q TransactionQuery) (BucketTotals, error) {
	pipeline := append(transactionMatchStages(q), totalsGroup("$total_amount"))
	return aggregateTotals(ctx, s.coll, pipeline)
}

// SeriesBuckets doanh thu theo ngày/tháng local
func (s *MongoTransactionStore) SeriesBuckets(ctx context.Context, q TransactionQuery, g timerange.Granularity, loc *time.Location) (map[string]BucketTotals, error) {
	pipeline := append(transactionMatchStages(q), bucketGroup("$created_at", "$total_amount", g, loc, q.Window.Start))
	return aggregateBuckets(ctx, s.coll, pipeline)
}

// breakdownPipeline: $facet gom theo kênh thanh toán đã normalize và theo nguồn đơn
func breakdownPipeline(q TransactionQuery) []bson.M {
	return append(transactionMatchStages(q), bson.M{"$facet": bson.M{
		"payment": []bson.M{
			{"$group": bson.M{
				"_id":    normalizePaymentExpr("$payment_method"),
				"amount": bson.M{"$sum": numberOrZero("$total_amount")},
			}},
		},
		"source": []bson.M{
			{"$group": bson.M{
				"_id": bson.M{"$let": bson.M{
					"vars": bson.M{"src": bson.M{"$toLower": bson.M{"$trim": bson.M{"input": bson.M{"$ifNull": bson.A{"$order_source", ""}}}}}},
					"in":   bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$$src", ""}}, "unknown", "$$src"}},
				}},
				"amount": bson.M{"$sum": numberOrZero("$total_amount")},
			}},
		},
	}})
}

// Breakdowns tổng tiền theo kênh thanh toán và nguồn đơn
func (s *MongoTransactionStore) Breakdowns(ctx context.Context, q TransactionQuery) (*TransactionBreakdowns, error) {
	type keyAmount struct {
		Key    string  `bson:"_id"`
		Amount float64 `bson:"amount"`
	}
	var rows []struct {
		Payment []keyAmount `bson:"payment"`
		Source  []keyAmount `bson:"source"`
	}
	if err := aggregateAll(ctx, s.coll, breakdownPipeline(q), &rows); err != nil {
		return nil, err
	}
	out := &TransactionBreakdowns{
		PaymentMethods: make(map[string]float64),
		OrderSources:   make(map[string]float64),
	}
	if len(rows) == 0 {
		return out, nil
	}
	for _, r := range rows[0].Payment {
		out.PaymentMethods[r.Key] += r.Amount
	}
	for _, r := range rows[0].Source {
		out.OrderSources[r.Key] += r.Amount
	}
	return out, nil
}

// productSalesPipeline unwind items (giao dịch không có item bị bỏ qua) rồi gom theo product_id
func productSalesPipeline(q TransactionQuery) []bson.M {
	return append(transactionMatchStages(q),
		bson.M{"$unwind": "$items"},
		bson.M{"$group": bson.M{
			"_id":          "$items.product_id",
			"productName":  bson.M{"$first": "$items.product_name"},
			"quantity":     bson.M{"$sum": numberOrZero("$items.quantity")},
			"revenue":      bson.M{"$sum": numberOrZero("$items.total_price")},
			"avgUnitPrice": bson.M{"$avg": numberOrZero("$items.unit_price")},
			"lines":        bson.M{"$sum": 1},
		}},
		bson.M{"$project": bson.M{
			"productName":  bson.M{"$ifNull": bson.A{"$productName", ""}},
			"quantity":     1,
			"revenue":      1,
			"avgUnitPrice": bson.M{"$ifNull": bson.A{"$avgUnitPrice", 0}},
			"lines":        1,
		}},
	)
}

// ProductSales doanh số theo sản phẩm
func (s *MongoTransactionStore) ProductSales(ctx context.Context, q TransactionQuery) ([]ProductSales, error) {
	var rows []ProductSales
	if err := aggregateAll(ctx, s.coll, productSalesPipeline(q), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Recent limit giao dịch mới nhất khớp query
func (s *MongoTransactionStore) Recent(ctx context.Context, q TransactionQuery, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		return []models.Transaction{}, nil
	}
	pipeline := append(transactionMatchStages(q),
		bson.M{"$sort": bson.D{{Key: "created_at", Value: -1}}},
		bson.M{"$limit": limit},
	)
	var rows []models.Transaction
	if err := aggregateAll(ctx, s.coll, pipeline, &rows); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return rows, nil
}
