package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoRepo stores users in a MongoDB collection keyed by clerkId.
type MongoRepo struct {
	Coll *mongo.Collection
	Now  func() time.Time
}

// NewMongoRepo constructs a MongoRepo over coll.
func NewMongoRepo(coll *mongo.Collection) *MongoRepo {
	return &MongoRepo{Coll: coll, Now: func() time.Time { return time.Now().UTC() }}
}

func (r *MongoRepo) Upsert(ctx context.Context, user User) (User, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out User
	err := r.Coll.FindOneAndUpdate(ctx, byClerkID(user.ClerkID), upsertUpdate(user, r.Now()), opts).Decode(&out)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return User{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return User{}, err
	}
	return out.withDefaults(), nil
}

func (r *MongoRepo) GetByID(ctx context.Context, clerkID string) (User, error) {
	var out User
	if err := r.Coll.FindOne(ctx, byClerkID(clerkID)).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return out.withDefaults(), nil
}

func (r *MongoRepo) List(ctx context.Context) ([]User, error) {
	cur, err := r.Coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "clerkId", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = out[i].withDefaults()
	}
	if out == nil {
		out = []User{}
	}
	return out, nil
}

func (r *MongoRepo) AppendPosted(ctx context.Context, clerkID, wallpaperID string) (bool, error) {
	filter := bson.D{
		{Key: "clerkId", Value: clerkID},
		{Key: "postWallpapers", Value: bson.D{{Key: "$ne", Value: wallpaperID}}},
	}
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "postWallpapers", Value: wallpaperID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.Now()}}},
	}
	return r.guardedUpdate(ctx, clerkID, filter, update)
}

func (r *MongoRepo) RemovePosted(ctx context.Context, clerkID, wallpaperID string) (bool, error) {
	filter := bson.D{
		{Key: "clerkId", Value: clerkID},
		{Key: "postWallpapers", Value: wallpaperID},
	}
	update := bson.D{
		{Key: "$pull", Value: bson.D{{Key: "postWallpapers", Value: wallpaperID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.Now()}}},
	}
	return r.guardedUpdate(ctx, clerkID, filter, update)
}

// guardedUpdate applies update when filter matches. No match means the user
// is missing or the list already has the desired shape.
func (r *MongoRepo) guardedUpdate(ctx context.Context, clerkID string, filter, update bson.D) (bool, error) {
	res, err := r.Coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	n, err := r.Coll.CountDocuments(ctx, byClerkID(clerkID), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

func byClerkID(clerkID string) bson.D {
	return bson.D{{Key: "clerkId", Value: clerkID}}
}

// upsertUpdate sets identity fields and initializes the wallpaper lists only
// when the document is inserted.
func upsertUpdate(user User, now time.Time) bson.D {
	set := bson.D{
		{Key: "email", Value: user.Email},
		{Key: "fullName", Value: user.FullName},
		{Key: "imageUrl", Value: user.ImageURL},
		{Key: "updatedAt", Value: now},
	}
	update := bson.D{}
	if user.Username != "" {
		set = append(set, bson.E{Key: "username", Value: user.Username})
	} else {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "username", Value: ""}}})
	}
	update = append(update,
		bson.E{Key: "$set", Value: set},
		bson.E{Key: "$setOnInsert", Value: bson.D{
			{Key: "createdAt", Value: now},
			{Key: "likedWallpapers", Value: bson.A{}},
			{Key: "postWallpapers", Value: bson.A{}},
		}},
	)
	return update
}

var _ Repo = (*MongoRepo)(nil)
