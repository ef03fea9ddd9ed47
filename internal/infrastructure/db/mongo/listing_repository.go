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

const collectionListings = "pgs"

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(collectionListings)}
}

type listingDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Rent        float64            `bson:"rent"`
	Price       float64            `bson:"price"`
	Location    string             `bson:"location"`
	City        string             `bson:"city"`
	Seats       int                `bson:"seats"`
	AC          bool               `bson:"ac"`
	Contact     string             `bson:"contact"`
	Description string             `bson:"description"`
	Amenities   []string           `bson:"amenities"`
	Images      []string           `bson:"images"`
	Broker      primitive.ObjectID `bson:"broker"`
	BrokerEmail string             `bson:"brokerEmail"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func newListingDoc(l *domain.Listing) (listingDoc, error) {
	broker, err := primitive.ObjectIDFromHex(l.BrokerID)
	if err != nil {
		return listingDoc{}, fmt.Errorf("broker id %q: %w", l.BrokerID, err)
	}
	return listingDoc{
		ID:          primitive.NewObjectID(),
		Name:        l.Name,
		Rent:        l.Rent,
		Price:       l.Price,
		Location:    l.Location,
		City:        l.City,
		Seats:       l.Seats,
		AC:          l.AC,
		Contact:     l.Contact,
		Description: l.Description,
		Amenities:   nonNil(l.Amenities),
		Images:      nonNil(l.Images),
		Broker:      broker,
		BrokerEmail: l.BrokerEmail,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}, nil
}

func (d listingDoc) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:          hexOrEmpty(d.ID),
		Name:        d.Name,
		Rent:        d.Rent,
		Price:       d.Price,
		Location:    d.Location,
		City:        d.City,
		Seats:       d.Seats,
		AC:          d.AC,
		Contact:     d.Contact,
		Description: d.Description,
		Amenities:   nonNil(d.Amenities),
		Images:      nonNil(d.Images),
		BrokerID:    hexOrEmpty(d.Broker),
		BrokerEmail: d.BrokerEmail,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// Create inserts the listing and sets its ID.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := newListingDoc(l)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert pg: %w", err)
	}
	l.ID = doc.ID.Hex()
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := objectID(id, domain.ErrListingNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d listingDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("find pg: %w", err)
	}
	return d.toDomain(), nil
}

// List returns every listing in insertion order.
func (r *ListingRepository) List(ctx context.Context) ([]*domain.Listing, error) {
	return r.find(ctx, bson.M{})
}

func (r *ListingRepository) ListByBroker(ctx context.Context, brokerID string) ([]*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(brokerID)
	if err != nil {
		return []*domain.Listing{}, nil
	}
	return r.find(ctx, bson.M{"broker": oid})
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M) ([]*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find pgs: %w", err)
	}

	var docs []listingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode pgs: %w", err)
	}

	out := make([]*domain.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Update applies patch with a single $set and returns the stored document.
// The owner fields are never part of the update document.
func (r *ListingRepository) Update(ctx context.Context, id string, patch domain.ListingPatch, now time.Time) (*domain.Listing, error) {
	oid, err := objectID(id, domain.ErrListingNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := listingSet(patch)
	set["updatedAt"] = now

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d listingDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("update pg: %w", err)
	}
	return d.toDomain(), nil
}

func listingSet(p domain.ListingPatch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Rent != nil {
		set["rent"] = *p.Rent
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.City != nil {
		set["city"] = *p.City
	}
	if p.Seats != nil {
		set["seats"] = *p.Seats
	}
	if p.AC != nil {
		set["ac"] = *p.AC
	}
	if p.Contact != nil {
		set["contact"] = *p.Contact
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Amenities != nil {
		set["amenities"] = nonNil(*p.Amenities)
	}
	if p.Images != nil {
		set["images"] = nonNil(*p.Images)
	}
	return set
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrListingNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete pg: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// EnsureIndexes creates the owner index used by the broker views.
func (r *ListingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "broker", Value: 1}}})
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
