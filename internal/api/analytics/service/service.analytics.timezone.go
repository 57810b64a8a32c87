package analyticssvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"greep_market/internal/logger"
	"greep_market/internal/registry"
	"greep_market/internal/utility"
)

// storeTimezoneTTL: thời gian nhớ timezone của một store
const storeTimezoneTTL = 5 * time.Minute

// LoadLocation load IANA timezone qua registry để mỗi tên chỉ load một lần
func LoadLocation(locations *registry.Registry[*time.Location], name string) (*time.Location, error) {
	return locations.GetOrCreate(name, func() (*time.Location, error) {
		return time.LoadLocation(name)
	})
}

// StaticTimezoneResolver trả về cùng một timezone cho mọi store
type StaticTimezoneResolver struct {
	Location *time.Location
}

// GetStoreTimezone implement StoreTimezoneResolver
func (r StaticTimezoneResolver) GetStoreTimezone(_ context.Context, _ string) (*time.Location, error) {
	if r.Location == nil {
		return time.UTC, nil
	}
	return r.Location, nil
}

// MongoStoreTimezoneResolver đọc stores.timezone, fallback về timezone mặc định khi store chưa cấu hình,
// tên timezone sai hoặc truy vấn lỗi.
type MongoStoreTimezoneResolver struct {
	coll       *mongo.Collection
	defaultLoc *time.Location
	locations  *registry.Registry[*time.Location]
	byStore    *utility.Cache
}

// NewMongoStoreTimezoneResolver tạo resolver trên collection stores
func NewMongoStoreTimezoneResolver(coll *mongo.Collection, defaultLoc *time.Location, locations *registry.Registry[*time.Location]) *MongoStoreTimezoneResolver {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &MongoStoreTimezoneResolver{
		coll:       coll,
		defaultLoc: defaultLoc,
		locations:  locations,
		byStore:    utility.NewCache(storeTimezoneTTL, storeTimezoneTTL),
	}
}

// GetStoreTimezone implement StoreTimezoneResolver
func (r *MongoStoreTimezoneResolver) GetStoreTimezone(ctx context.Context, storeID string) (*time.Location, error) {
	if v, ok := r.byStore.Get(storeID); ok {
		return v.(*time.Location), nil
	}

	name, err := r.findTimezoneName(ctx, storeID)
	if err != nil {
		logger.WithContext(ctx).WithError(err).WithField("storeId", storeID).
			Warn("Không đọc được timezone của store, dùng timezone mặc định")
		return r.defaultLoc, nil
	}

	loc := r.defaultLoc
	if name != "" {
		l, err := LoadLocation(r.locations, name)
		if err != nil {
			logger.WithContext(ctx).WithError(err).WithFields(map[string]interface{}{
				"storeId":  storeID,
				"timezone": name,
			}).Warn("Timezone của store không hợp lệ, dùng timezone mặc định")
		} else {
			loc = l
		}
	}
	r.byStore.Set(storeID, loc)
	return loc, nil
}

// findTimezoneName tìm store theo store_id hoặc _id; không có store trả về chuỗi rỗng
func (r *MongoStoreTimezoneResolver) findTimezoneName(ctx context.Context, storeID string) (string, error) {
	or := bson.A{bson.M{"store_id": storeID}}
	if oid, err := primitive.ObjectIDFromHex(storeID); err == nil {
		or = append(or, bson.M{"_id": oid})
	}
	var doc struct {
		Timezone string `bson:"timezone"`
	}
	err := r.coll.FindOne(ctx, bson.M{"$or": or}, options.FindOne().SetProjection(bson.M{"timezone": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Timezone), nil
}
