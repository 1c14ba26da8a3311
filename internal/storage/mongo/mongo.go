package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/storage"
	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/antonminaichev/laundry-orders/internal/types/user"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ storage.Storage = (*MongoStorage)(nil)

// fieldPaths maps storage column names to document paths.
var fieldPaths = map[string]string{
	"status":        "status",
	"customer_name": "customerName",
	"phone":         "phone",
	"note":          "note",
	"price":         "price",
	"service_type":  "category.byWeight.serviceType",
	"weight_kg":     "category.byWeight.weightKg",
	"item_kind":     "category.byUnit.itemKind",
	"unit_price":    "category.byUnit.unitPrice",
	"quantity":      "category.byUnit.quantity",
}

type MongoStorage struct {
	client   *mongo.Client
	orders   *mongo.Collection
	users    *mongo.Collection
	counters *mongo.Collection
}

func NewMongoStorage(ctx context.Context, uri, database string) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	db := client.Database(database)
	s := &MongoStorage{
		client: client,
		orders:   db.Collection("orders"),
		users:    db.Collection("users"),
		counters: db.Collection("counters"),
	}
	if err := s.Ping(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStorage) ensureIndexes(ctx context.Context) error {
	_, err := s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "login", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user index: %w", err)
	}
	return nil
}

func (s *MongoStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

type counter struct {
	Seq int64 `bson:"seq"`
}

// counterBump increments the named sequence, creating it on first use.
func counterBump(name string) (filter, update bson.M) {
	return bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": int64(1)}}
}

// nextID hands out 1, 2, 3... per name from the counters collection.
func (s *MongoStorage) nextID(ctx context.Context, name string) (int64, error) {
	filter, update := counterBump(name)
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var c counter
	if err := s.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c); err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return c.Seq, nil
}

func (s *MongoStorage) Create(ctx context.Context, u *user.User) error {
	if u.ID == 0 {
		id, err := s.nextID(ctx, "users")
		if err != nil {
			return err
		}
		u.ID = id
	}
	_, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return user.ErrExists
	}
	return err
}

func (s *MongoStorage) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	var u user.User
	err := s.users.FindOne(ctx, bson.M{"login": login}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// normalize upgrades documents written before unit orders existed.
func normalize(o *order.Order) {
	if o.Category.Kind == "" {
		o.Category.Kind = order.KindByWeight
	}
	if o.Category.Kind == order.KindByWeight && o.Category.ByWeight == nil {
		o.Category.ByWeight = &order.ByWeight{}
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
}

func (s *MongoStorage) InsertOrder(ctx context.Context, o *order.Order) error {
	storage.StampTimestamps(o, time.Now().UTC())
	_, err := s.orders.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return order.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *MongoStorage) FindOrderByCode(ctx context.Context, code string) (*order.Order, error) {
	var o order.Order
	err := s.orders.FindOne(ctx, bson.M{"code": code}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	normalize(&o)
	return &o, nil
}

func (s *MongoStorage) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]order.Order, error) {
	cur, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []order.Order{}
	for cur.Next(ctx) {
		var o order.Order
		if err := cur.Decode(&o); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		normalize(&o)
		out = append(out, o)
	}
	return out, cur.Err()
}

func (s *MongoStorage) ListRecentOrders(ctx context.Context, limit int) ([]order.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	return s.find(ctx, bson.M{}, opts)
}

func (s *MongoStorage) ListOrdersByDateRange(ctx context.Context, r order.DateRange) ([]order.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return s.find(ctx, filterDoc(order.Filter{Range: r}), opts)
}

func (s *MongoStorage) UpdateOrderFields(ctx context.Context, code string, p order.Patch) (*order.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var o order.Order
	err := s.orders.FindOneAndUpdate(ctx, bson.M{"code": code}, bson.M{"$set": patchSet(p, time.Now().UTC().Truncate(time.Millisecond))}, opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	normalize(&o)
	return &o, nil
}

func (s *MongoStorage) CountOrders(ctx context.Context, f order.Filter) (int64, error) {
	return s.orders.CountDocuments(ctx, filterDoc(f))
}

func (s *MongoStorage) SumOrderPrice(ctx context.Context, f order.Filter) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filterDoc(f)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$price"}}},
		}}},
	}
	cur, err := s.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate price: %w", err)
	}
	defer cur.Close(ctx)

	var res []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &res); err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0].Total, nil
}

func filterDoc(f order.Filter) bson.M {
	m := bson.M{}
	created := bson.M{}
	if !f.Range.From.IsZero() {
		created["$gte"] = f.Range.From
	}
	if !f.Range.To.IsZero() {
		created["$lte"] = f.Range.To
	}
	if len(created) > 0 {
		m["createdAt"] = created
	}
	if f.Status != nil {
		m["status"] = string(*f.Status)
	}
	return m
}

func patchSet(p order.Patch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	for _, c := range storage.PatchColumns(p) {
		set[fieldPaths[c.Name]] = c.Value
	}
	return set
}
