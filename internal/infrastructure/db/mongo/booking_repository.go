package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/esypg/pg-marketplace/internal/core/domain"
)

const collectionBookings = "bookings"

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(collectionBookings)}
}

type bookingDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	User      primitive.ObjectID `bson:"user"`
	PG        primitive.ObjectID `bson:"pg"`
	Name      string             `bson:"name"`
	Price     float64            `bson:"price"`
	Image     *string            `bson:"image"`
	Status    string             `bson:"status"`
	BookedAt  time.Time          `bson:"bookedAt"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d bookingDoc) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:        hexOrEmpty(d.ID),
		UserID:    hexOrEmpty(d.User),
		ListingID: hexOrEmpty(d.PG),
		Name:      d.Name,
		Price:     d.Price,
		Image:     d.Image,
		Status:    d.Status,
		BookedAt:  d.BookedAt.UTC(),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// newestFirst orders by creation time, then by id so equal timestamps stay
// deterministic.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// Create inserts the booking and sets its ID.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	user, err := primitive.ObjectIDFromHex(b.UserID)
	if err != nil {
		return fmt.Errorf("user id %q: %w", b.UserID, err)
	}
	pg, err := primitive.ObjectIDFromHex(b.ListingID)
	if err != nil {
		return fmt.Errorf("pg id %q: %w", b.ListingID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bookingDoc{
		ID:        primitive.NewObjectID(),
		User:      user,
		PG:        pg,
		Name:      b.Name,
		Price:     b.Price,
		Image:     b.Image,
		Status:    b.Status,
		BookedAt:  b.BookedAt,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	oid, err := objectID(id, domain.ErrBookingNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d bookingDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return d.toDomain(), nil
}

// ListByUser returns the renter's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []*domain.Booking{}, nil
	}
	return r.find(ctx, bson.M{"user": oid})
}

// ListByListingIDs returns the bookings on any of the listings with a single
// $in query, newest first.
func (r *BookingRepository) ListByListingIDs(ctx context.Context, listingIDs []string) ([]*domain.Booking, error) {
	oids := objectIDs(listingIDs)
	if len(oids) == 0 {
		return []*domain.Booking{}, nil
	}
	return r.find(ctx, bson.M{"pg": bson.M{"$in": oids}})
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}

	var docs []bookingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}

	out := make([]*domain.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrBookingNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// EnsureIndexes creates the renter and listing indexes.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "pg", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
