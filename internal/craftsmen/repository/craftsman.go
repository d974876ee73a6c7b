package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	craftsmenerrors "hirfa/internal/craftsmen/errors"
	"hirfa/pkg/config"
	mongotx "hirfa/pkg/db/mongo"
	"hirfa/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName      = "Craftsmen"
	UsersCollectionName = "Users"
)

type CraftsmanRepository interface {
	Create(ctx context.Context, c *model.Craftsman) error
	FindByID(ctx context.Context, id string) (*model.Craftsman, error)
	FindByUserID(ctx context.Context, userID string) (*model.Craftsman, error)
	FindProfile(ctx context.Context, id string) (*model.CraftsmanProfile, error)
	Search(ctx context.Context, filter model.CraftsmanFilter) ([]model.CraftsmanProfile, error)
	Count(ctx context.Context, filter model.CraftsmanFilter) (int64, error)
	Cities(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, update *model.CraftsmanUpdate) (*model.Craftsman, error)
	SetVerified(ctx context.Context, id string, verified bool) (*model.Craftsman, error)
	ApplyReviewDelta(ctx context.Context, id string, ratingDelta, countDelta int) (*model.Craftsman, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoCraftsmanRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoCraftsmanRepository(cfg *config.Config) CraftsmanRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCraftsmanRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoCraftsmanRepository) Create(ctx context.Context, c *model.Craftsman) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := mongotx.Now()
	c.Rating = 0
	c.RatingSum = 0
	c.ReviewCount = 0
	c.Verified = false
	c.CreatedAt = now
	c.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", craftsmenerrors.ErrProfileExists, c.UserID)
		}
		return fmt.Errorf("failed to create craftsman: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCraftsmanRepository) FindByID(ctx context.Context, id string) (*model.Craftsman, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", craftsmenerrors.ErrInvalidID, id)
	}

	var c model.Craftsman
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", craftsmenerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find craftsman: %w", err)
	}
	return &c, nil
}

func (r *mongoCraftsmanRepository) FindByUserID(ctx context.Context, userID string) (*model.Craftsman, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var c model.Craftsman
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", craftsmenerrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find craftsman by user: %w", err)
	}
	return &c, nil
}

func (r *mongoCraftsmanRepository) FindProfile(ctx context.Context, id string) (*model.CraftsmanProfile, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", craftsmenerrors.ErrInvalidID, id)
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": oid}}}}
	pipeline = append(pipeline, userLookup(false)...)
	pipeline = append(pipeline, bson.D{{Key: "$limit", Value: 1}})

	profiles, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: %s", craftsmenerrors.ErrNotFound, id)
	}
	return &profiles[0], nil
}

// Search returns one page of craftsmen with their users joined by a single
// aggregation.
func (r *mongoCraftsmanRepository) Search(ctx context.Context, filter model.CraftsmanFilter) ([]model.CraftsmanProfile, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := matchStages(filter)
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: sortFor(filter.SortBy)}},
		bson.D{{Key: "$skip", Value: filter.Offset}},
		bson.D{{Key: "$limit", Value: int64(filter.Limit)}},
	)
	if filter.Query == "" {
		// The join was not needed to filter, so it runs on the page only.
		pipeline = append(pipeline, userLookup(includeContact(filter))...)
	}

	return r.aggregate(ctx, pipeline)
}

func (r *mongoCraftsmanRepository) Count(ctx context.Context, filter model.CraftsmanFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := append(matchStages(filter), bson.D{{Key: "$count", Value: "total"}})

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to count craftsmen: %w", err)
	}
	defer cursor.Close(ctx)

	var out []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, fmt.Errorf("failed to decode craftsman count: %w", err)
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}

// Cities lists the distinct cities of verified craftsmen, sorted.
func (r *mongoCraftsmanRepository) Cities(ctx context.Context) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "location.city", bson.M{"verified": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list craftsman cities: %w", err)
	}

	cities := make([]string, 0, len(values))
	for _, v := range values {
		if city, ok := v.(string); ok && city != "" {
			cities = append(cities, city)
		}
	}
	slices.Sort(cities)
	return cities, nil
}

func (r *mongoCraftsmanRepository) Update(ctx context.Context, id string, update *model.CraftsmanUpdate) (*model.Craftsman, error) {
	set := bson.M{"updated_at": mongotx.Now()}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Experience != nil {
		set["experience"] = *update.Experience
	}
	if update.HourlyRate != nil {
		set["hourly_rate"] = *update.HourlyRate
	}
	if update.Availability != nil {
		set["availability"] = *update.Availability
	}
	if update.Portfolio != nil {
		set["portfolio"] = *update.Portfolio
	}
	if update.Certifications != nil {
		set["certifications"] = *update.Certifications
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}

	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

func (r *mongoCraftsmanRepository) SetVerified(ctx context.Context, id string, verified bool) (*model.Craftsman, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"verified":   verified,
		"updated_at": mongotx.Now(),
	}})
}

// ApplyReviewDelta moves the running rating sum and review count, then
// stores the rounded average derived from the values the increment
// returned. Call it inside the transaction that writes the review.
func (r *mongoCraftsmanRepository) ApplyReviewDelta(ctx context.Context, id string, ratingDelta, countDelta int) (*model.Craftsman, error) {
	c, err := r.findOneAndUpdate(ctx, id, bson.M{
		"$inc": bson.M{"rating_sum": ratingDelta, "review_count": countDelta},
		"$set": bson.M{"updated_at": mongotx.Now()},
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	c.Rating = model.AverageRating(c.RatingSum, c.ReviewCount)
	oid, _ := mongotx.ObjectID(c.ID)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"rating": c.Rating}}); err != nil {
		return nil, fmt.Errorf("failed to store craftsman rating: %w", err)
	}
	return c, nil
}

func (r *mongoCraftsmanRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoCraftsmanRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*model.Craftsman, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := mongotx.ObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", craftsmenerrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c model.Craftsman
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", craftsmenerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update craftsman: %w", err)
	}
	return &c, nil
}

func (r *mongoCraftsmanRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]model.CraftsmanProfile, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to query craftsmen: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := []model.CraftsmanProfile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode craftsmen: %w", err)
	}
	return profiles, nil
}

// matchStages builds the filtering part of the pipeline. Free text also
// matches the owning user's name, which needs the join before the match.
func matchStages(filter model.CraftsmanFilter) mongo.Pipeline {
	match := bson.M{}

	if filter.Verified != nil {
		match["verified"] = *filter.Verified
	}
	if filter.Specialty != "" {
		match["specialty"] = filter.Specialty
	}
	if filter.City != "" {
		pattern := regexp.QuoteMeta(filter.City)
		if filter.CityExact {
			pattern = "^" + pattern + "$"
		}
		match["location.city"] = primitive.Regex{Pattern: pattern, Options: "i"}
	}
	if filter.MinRating > 0 {
		match["rating"] = bson.M{"$gte": filter.MinRating}
	}
	if filter.MinExperience > 0 {
		match["experience"] = bson.M{"$gte": filter.MinExperience}
	}

	rate := bson.M{}
	if filter.MinRate > 0 {
		rate["$gte"] = filter.MinRate
	}
	if filter.MaxRate > 0 {
		rate["$lte"] = filter.MaxRate
	}
	if len(rate) > 0 {
		match["hourly_rate"] = rate
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: match}}}
	if filter.Query == "" {
		return pipeline
	}

	text := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
	pipeline = append(pipeline, userLookup(includeContact(filter))...)
	pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"$or": bson.A{
		bson.M{"bio": text},
		bson.M{"location.city": text},
		bson.M{"user.name": text},
	}}}})
	return pipeline
}

// userLookup joins the owning user. user_id is stored as a hex string, so
// it is converted before comparing with the users' ObjectID.
func userLookup(withContact bool) mongo.Pipeline {
	project := bson.M{"name": 1, "avatar": 1}
	if withContact {
		project["email"] = 1
		project["phone"] = 1
	}

	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from": UsersCollectionName,
			"let":  bson.M{"uid": bson.M{"$toObjectId": "$user_id"}},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$uid"}}}},
				bson.M{"$project": project},
			},
			"as": "user",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
	}
}

// includeContact is true for the admin's pending queue, which shows how to
// reach the applicant.
func includeContact(filter model.CraftsmanFilter) bool {
	return filter.Verified != nil && !*filter.Verified
}

func sortFor(sortBy string) bson.D {
	switch sortBy {
	case model.SortByPriceLow:
		return bson.D{{Key: "hourly_rate", Value: 1}, {Key: "_id", Value: 1}}
	case model.SortByPriceHigh:
		return bson.D{{Key: "hourly_rate", Value: -1}, {Key: "_id", Value: 1}}
	case model.SortByExperience:
		return bson.D{{Key: "experience", Value: -1}, {Key: "rating", Value: -1}, {Key: "_id", Value: 1}}
	case model.SortByReviews:
		return bson.D{{Key: "review_count", Value: -1}, {Key: "rating", Value: -1}, {Key: "_id", Value: 1}}
	case model.SortByNewest:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "rating", Value: -1}, {Key: "review_count", Value: -1}, {Key: "_id", Value: 1}}
	}
}
