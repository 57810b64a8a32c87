package analyticssvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"greep_market/internal/common"
	"greep_market/internal/timerange"
)

// numberOrZero ép field về double; null, thiếu hoặc không phải số → 0
func numberOrZero(field string) bson.M {
	return bson.M{"$convert": bson.M{
		"input":   field,
		"to":      "double",
		"onError": 0,
		"onNull":  0,
	}}
}

// mongoTimezone trả về timezone cho $dateToString: tên IANA nếu load được, không thì offset "+03:00" tại thời điểm at.
func mongoTimezone(loc *time.Location, at time.Time) string {
	name := loc.String()
	if name != "Local" {
		if _, err := time.LoadLocation(name); err == nil {
			return name
		}
	}
	_, offset := at.In(loc).Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d:%02d", sign, offset/3600, (offset%3600)/60)
}

// localBucketKey là biểu thức $dateToString sinh key giống timerange.Granularity.Key
func localBucketKey(field string, g timerange.Granularity, loc *time.Location, at time.Time) bson.M {
	return bson.M{"$dateToString": bson.M{
		"format":   g.MongoFormat(),
		"date":     field,
		"timezone": mongoTimezone(loc, at),
	}}
}

// normalizePaymentExpr là NormalizePaymentMethod viết bằng aggregation expression
func normalizePaymentExpr(field string) bson.M {
	canonicals, groups := paymentAliasGroups()
	branches := bson.A{
		bson.M{"case": bson.M{"$eq": bson.A{"$$pm", ""}}, "then": UnknownPaymentMethod},
	}
	for _, canonical := range canonicals {
		aliases := bson.A{}
		for _, alias := range groups[canonical] {
			aliases = append(aliases, alias)
		}
		branches = append(branches, bson.M{"case": bson.M{"$in": bson.A{"$$pm", aliases}}, "then": canonical})
	}
	return bson.M{"$let": bson.M{
		"vars": bson.M{"pm": bson.M{"$toLower": bson.M{"$trim": bson.M{"input": bson.M{"$ifNull": bson.A{field, ""}}}}}},
		"in":   bson.M{"$switch": bson.M{"branches": branches, "default": "$$pm"}},
	}}
}

// transactionMatchStages dựng $match theo store + window + status/source, rồi lọc kênh thanh toán sau khi normalize
func transactionMatchStages(q TransactionQuery) []bson.M {
	match := bson.M{
		"store_id":   q.StoreID,
		"created_at": bson.M{"$gte": q.Window.Start, "$lte": q.Window.End},
	}
	if len(q.Statuses) > 0 {
		match["status"] = bson.M{"$in": q.Statuses}
	}
	if q.OrderSource != "" {
		match["order_source"] = q.OrderSource
	}
	stages := []bson.M{{"$match": match}}
	if q.PaymentMethod != "" {
		stages = append(stages,
			bson.M{"$addFields": bson.M{"normalized_payment": normalizePaymentExpr("$payment_method")}},
			bson.M{"$match": bson.M{"normalized_payment": q.PaymentMethod}},
		)
	}
	return stages
}

// expenseMatch lọc expense theo store và (tùy chọn) window trên field date
func expenseMatch(storeID string, w *timerange.Window) bson.M {
	match := bson.M{"store_id": storeID}
	if w != nil {
		match["date"] = bson.M{"$gte": w.Start, "$lte": w.End}
	}
	return match
}

// totalsGroup là $group tổng tiền + đếm trên toàn bộ input
func totalsGroup(amountField string) bson.M {
	return bson.M{"$group": bson.M{
		"_id":    nil,
		"amount": bson.M{"$sum": numberOrZero(amountField)},
		"count":  bson.M{"$sum": 1},
	}}
}

// bucketGroup là $group theo key ngày/tháng local
func bucketGroup(dateField, amountField string, g timerange.Granularity, loc *time.Location, at time.Time) bson.M {
	return bson.M{"$group": bson.M{
		"_id":    localBucketKey(dateField, g, loc, at),
		"amount": bson.M{"$sum": numberOrZero(amountField)},
		"count":  bson.M{"$sum": 1},
	}}
}

// aggregateAll chạy pipeline và decode toàn bộ kết quả vào out
func aggregateAll(ctx context.Context, coll *mongo.Collection, pipeline []bson.M, out interface{}) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}

// aggregateTotals chạy pipeline kết thúc bằng totalsGroup; không có document nào thì trả về 0
func aggregateTotals(ctx context.Context, coll *mongo.Collection, pipeline []bson.M) (BucketTotals, error) {
	var rows []BucketTotals
	if err := aggregateAll(ctx, coll, pipeline, &rows); err != nil {
		return BucketTotals{}, err
	}
	if len(rows) == 0 {
		return BucketTotals{}, nil
	}
	return rows[0], nil
}

// aggregateBuckets chạy pipeline kết thúc bằng bucketGroup và trả về map key → tổng
func aggregateBuckets(ctx context.Context, coll *mongo.Collection, pipeline []bson.M) (map[string]BucketTotals, error) {
	var rows []struct {
		Key    string  `bson:"_id"`
		Amount float64 `bson:"amount"`
		Count  int64   `bson:"count"`
	}
	if err := aggregateAll(ctx, coll, pipeline, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]BucketTotals, len(rows))
	for _, r := range rows {
		out[r.Key] = BucketTotals{Amount: r.Amount, Count: r.Count}
	}
	return out, nil
}
