package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"
)

// newestFirst orders by creation time, breaking ties on the ObjectID.
var newestFirst = bson.D{{Key: "orderDate", Value: -1}, {Key: "_id", Value: -1}}

// Repository stores orders as documents; identifiers are ObjectID hex strings.
type Repository struct {
	orders *mongo.Collection
}

func NewRepository(collection *mongo.Collection) *Repository {
	return &Repository{orders: collection}
}

// EnsureIndexes creates the indexes backing email lookups and listings.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "customerInfo.email", Value: 1}, {Key: "orderDate", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "orderDate", Value: -1}}},
		{Keys: bson.D{{Key: "orderDate", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, order domain.Order) (string, error) {
	doc := toDocument(order)
	doc.ID = primitive.NewObjectID()

	if _, err := r.orders.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	return doc.ID.Hex(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ports.ErrNotFound
	}

	var doc orderDocument
	if err := r.orders.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}

	order := doc.toDomain()
	return &order, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	cursor, err := r.orders.Find(ctx,
		bson.M{"customerInfo.email": email},
		options.Find().SetSort(newestFirst),
	)
	if err != nil {
		return nil, fmt.Errorf("find orders by email: %w", err)
	}

	return decodeAll(ctx, cursor)
}

// List loads the requested page and the total matching count concurrently.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) (ports.ListResult, error) {
	filter = filter.Normalize()

	query := bson.M{}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}

	var (
		orders []domain.Order
		total  int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cursor, err := r.orders.Find(gctx, query, options.Find().
			SetSort(newestFirst).
			SetSkip(int64(filter.Offset())).
			SetLimit(int64(filter.PageSize)))
		if err != nil {
			return fmt.Errorf("find orders: %w", err)
		}
		orders, err = decodeAll(gctx, cursor)
		return err
	})

	g.Go(func() error {
		n, err := r.orders.CountDocuments(gctx, query)
		if err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		total = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return ports.ListResult{}, err
	}

	return ports.ListResult{Orders: orders, Total: total}, nil
}

// UpdateStatus is a compare-and-swap on the status field. When no document
// matches, a second lookup tells a missing order apart from a stale one.
func (r *Repository) UpdateStatus(ctx context.Context, update ports.StatusUpdate) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(update.ID)
	if err != nil {
		return nil, ports.ErrNotFound
	}

	var doc orderDocument
	err = r.orders.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(update.Expected)},
		bson.M{"$set": bson.M{
			"status":    string(update.Next),
			"updatedAt": update.UpdatedAt,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		order := doc.toDomain()
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	n, err := r.orders.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("check order exists: %w", err)
	}
	if n == 0 {
		return nil, ports.ErrNotFound
	}
	return nil, ports.ErrConflict
}

// Ping reports whether the primary is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.orders.Database().Client().Ping(ctx, readpref.Primary())
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]domain.Order, error) {
	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]domain.Order, len(docs))
	for i, doc := range docs {
		orders[i] = doc.toDomain()
	}
	return orders, nil
}
