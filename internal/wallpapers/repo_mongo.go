package wallpapers

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoRepo stores wallpapers in a MongoDB collection.
type MongoRepo struct {
	Coll *mongo.Collection
	Now  func() time.Time
}

// NewMongoRepo constructs a MongoRepo over coll.
func NewMongoRepo(coll *mongo.Collection) *MongoRepo {
	return &MongoRepo{Coll: coll, Now: func() time.Time { return time.Now().UTC() }}
}

type wallpaperDoc struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Title        string        `bson:"title"`
	Description  string        `bson:"description"`
	Tags         []string      `bson:"tags"`
	ImageURL     string        `bson:"imageUrl"`
	Views        int           `bson:"views"`
	Types        []string      `bson:"type"`
	Likes        []string      `bson:"likes"`
	PostedBy     string        `bson:"postedBy"`
	PostedByName string        `bson:"postedByName"`
	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
}

func (r *MongoRepo) Create(ctx context.Context, w Wallpaper) (Wallpaper, error) {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = r.Now()
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = w.CreatedAt
	}
	doc := toDoc(w.withDefaults())
	doc.ID = bson.NewObjectID()
	if _, err := r.Coll.InsertOne(ctx, doc); err != nil {
		return Wallpaper{}, err
	}
	return fromDoc(doc), nil
}

func (r *MongoRepo) List(ctx context.Context) ([]Wallpaper, error) {
	return r.find(ctx, bson.D{})
}

func (r *MongoRepo) ListByPoster(ctx context.Context, postedBy string) ([]Wallpaper, error) {
	return r.find(ctx, bson.D{{Key: "postedBy", Value: postedBy}})
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (Wallpaper, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return Wallpaper{}, ErrNotFound
	}
	var doc wallpaperDoc
	if err := r.Coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Wallpaper{}, ErrNotFound
		}
		return Wallpaper{}, err
	}
	return fromDoc(doc), nil
}

func (r *MongoRepo) AddLike(ctx context.Context, id, userID string) (Wallpaper, error) {
	return r.updateLikes(ctx, id, "$addToSet", userID)
}

func (r *MongoRepo) RemoveLike(ctx context.Context, id, userID string) (Wallpaper, error) {
	return r.updateLikes(ctx, id, "$pull", userID)
}

func (r *MongoRepo) updateLikes(ctx context.Context, id, op, userID string) (Wallpaper, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return Wallpaper{}, ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc wallpaperDoc
	err = r.Coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, likesUpdate(op, userID, r.Now()), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Wallpaper{}, ErrNotFound
		}
		return Wallpaper{}, err
	}
	return fromDoc(doc), nil
}

func (r *MongoRepo) find(ctx context.Context, filter bson.D) ([]Wallpaper, error) {
	opts := options.Find().SetSort(newestFirst())
	cur, err := r.Coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []wallpaperDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Wallpaper, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDoc(d))
	}
	return out, nil
}

// newestFirst sorts by creation time, breaking ties by the ObjectID, which
// increases with insertion order.
func newestFirst() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}

func likesUpdate(op, userID string, now time.Time) bson.D {
	return bson.D{
		{Key: op, Value: bson.D{{Key: "likes", Value: userID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
	}
}

func toDoc(w Wallpaper) wallpaperDoc {
	doc := wallpaperDoc{
		Title:        w.Title,
		Description:  w.Description,
		Tags:         w.Tags,
		ImageURL:     w.ImageURL,
		Views:        w.Views,
		Types:        w.Types,
		Likes:        w.Likes,
		PostedBy:     w.PostedBy,
		PostedByName: w.PostedByName,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
	if oid, err := bson.ObjectIDFromHex(w.ID); err == nil {
		doc.ID = oid
	}
	return doc
}

func fromDoc(d wallpaperDoc) Wallpaper {
	w := Wallpaper{
		Title:        d.Title,
		Description:  d.Description,
		Tags:         d.Tags,
		ImageURL:     d.ImageURL,
		Views:        d.Views,
		Types:        d.Types,
		Likes:        d.Likes,
		PostedBy:     d.PostedBy,
		PostedByName: d.PostedByName,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if !d.ID.IsZero() {
		w.ID = d.ID.Hex()
	}
	return w.withDefaults()
}

var _ Repo = (*MongoRepo)(nil)
