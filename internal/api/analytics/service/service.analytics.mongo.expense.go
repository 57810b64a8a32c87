package analyticssvc

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	analyticsdto "greep_market/internal/api/analytics/dto"
	"greep_market/internal/api/analytics/models"
	"greep_market/internal/common"
	"greep_market/internal/timerange"
)

// Giới hạn của bảng tổng hợp chi phí
const (
	ExpenseStatsMonthLimit   = 12
	ExpenseStatsProductLimit = 10
)

// MongoExpenseStore đọc collection expenses
type MongoExpenseStore struct {
	coll *mongo.Collection
}

// NewMongoExpenseStore tạo store trên collection expenses
func NewMongoExpenseStore(coll *mongo.Collection) *MongoExpenseStore {
	return &MongoExpenseStore{coll: coll}
}

// Totals tổng chi phí + số khoản chi trong window
func (s *MongoExpenseStore) Totals(ctx context.Context, storeID string, w timerange.Window) (BucketTotals, error) {
	pipeline := []bson.M{
		{"$match": expenseMatch(storeID, &w)},
		totalsGroup("$amount"),
	}
	return aggregateTotals(ctx, s.coll, pipeline)
}

// SeriesBuckets chi phí theo ngày/tháng local
func (s *MongoExpenseStore) SeriesBuckets(ctx context.Context, storeID string, w timerange.Window, g timerange.Granularity, loc *time.Location) (map[string]BucketTotals, error) {
	pipeline := []bson.M{
		{"$match": expenseMatch(storeID, &w)},
		bucketGroup("$date", "$amount", g, loc, w.Start),
	}
	return aggregateBuckets(ctx, s.coll, pipeline)
}

// groupByKey là nhánh $facet gom theo một biểu thức key
func groupByKey(key interface{}, sort bson.D, limit int) []bson.M {
	stages := []bson.M{
		{"$group": bson.M{
			"_id":    key,
			"amount": bson.M{"$sum": numberOrZero("$amount")},
			"count":  bson.M{"$sum": 1},
		}},
		{"$sort": sort},
	}
	if limit > 0 {
		stages = append(stages, bson.M{"$limit": limit})
	}
	return stages
}

// expenseStatsPipeline: một $facet cho tổng, category, kênh thanh toán, tháng, sản phẩm
func expenseStatsPipeline(storeID string, w *timerange.Window, loc *time.Location, at time.Time) []bson.M {
	byAmount := bson.D{{Key: "amount", Value: -1}, {Key: "_id", Value: 1}}
	return []bson.M{
		{"$match": expenseMatch(storeID, w)},
		{"$facet": bson.M{
			"totals":     []bson.M{totalsGroup("$amount")},
			"byCategory": groupByKey(bson.M{"$ifNull": bson.A{"$category", "uncategorized"}}, byAmount, 0),
			"byPayment":  groupByKey(bson.M{"$toLower": bson.M{"$ifNull": bson.A{"$payment_method", UnknownPaymentMethod}}}, byAmount, 0),
			"byMonth":    groupByKey(localBucketKey("$date", timerange.GranularityMonth, loc, at), bson.D{{Key: "_id", Value: -1}}, ExpenseStatsMonthLimit),
			"byProduct":  groupByKey(bson.M{"$ifNull": bson.A{"$product_name", ""}}, byAmount, ExpenseStatsProductLimit),
		}},
	}
}

// Stats bảng tổng hợp chi phí
func (s *MongoExpenseStore) Stats(ctx context.Context, storeID string, w *timerange.Window, loc *time.Location) (*analyticsdto.ExpenseStats, error) {
	at := time.Now()
	if w != nil {
		at = w.Start
	}
	var rows []struct {
		Totals     []BucketTotals `bson:"totals"`
		ByCategory []breakdownRow `bson:"byCategory"`
		ByPayment  []breakdownRow `bson:"byPayment"`
		ByMonth    []breakdownRow `bson:"byMonth"`
		ByProduct  []breakdownRow `bson:"byProduct"`
	}
	if err := aggregateAll(ctx, s.coll, expenseStatsPipeline(storeID, w, loc, at), &rows); err != nil {
		return nil, err
	}
	stats := newExpenseStats()
	if len(rows) == 0 {
		return stats, nil
	}
	r := rows[0]
	if len(r.Totals) > 0 {
		stats.TotalAmount = Round2(r.Totals[0].Amount)
		stats.TotalCount = r.Totals[0].Count
	}
	stats.ByCategory = roundBreakdown(r.ByCategory)
	stats.ByPaymentMethod = roundBreakdown(r.ByPayment)
	stats.ByMonth = roundBreakdown(r.ByMonth)
	stats.TopProducts = roundBreakdown(r.ByProduct)
	return stats, nil
}

// FindByID lấy một expense của store
func (s *MongoExpenseStore) FindByID(ctx context.Context, storeID, expenseID string) (*models.Expense, error) {
	oid, err := primitive.ObjectIDFromHex(expenseID)
	if err != nil {
		return nil, common.NewError(common.ErrCodeValidationFormat, "Expense ID không hợp lệ", common.StatusBadRequest, err)
	}
	var e models.Expense
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid, "store_id": storeID}).Decode(&e); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return &e, nil
}

// newExpenseStats trả về stats rỗng với các slice khác nil (JSON [] thay vì null)
func newExpenseStats() *analyticsdto.ExpenseStats {
	return &analyticsdto.ExpenseStats{
		ByCategory:      []analyticsdto.BreakdownItem{},
		ByPaymentMethod: []analyticsdto.BreakdownItem{},
		ByMonth:         []analyticsdto.BreakdownItem{},
		TopProducts:     []analyticsdto.BreakdownItem{},
	}
}

// breakdownRow là một dòng $group {_id, amount, count}
type breakdownRow struct {
	Key    string  `bson:"_id"`
	Amount float64 `bson:"amount"`
	Count  int64   `bson:"count"`
}

func roundBreakdown(rows []breakdownRow) []analyticsdto.BreakdownItem {
	out := make([]analyticsdto.BreakdownItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, analyticsdto.BreakdownItem{Key: r.Key, Amount: Round2(r.Amount), Count: r.Count})
	}
	return out
}
