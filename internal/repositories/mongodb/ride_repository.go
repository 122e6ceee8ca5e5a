package mongodb

import (
	"context"
	"fmt"
	"time"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/internal/utils"
	"godeliver/pkg/cache"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rideRepository struct {
	collection *mongo.Collection
	cache      *cache.RedisCache
}

func NewRideRepository(db *mongo.Database, cache *cache.RedisCache) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	// Cache active rides for quick access
	if ride.RideState.IsActive() {
		r.cacheRide(ctx, ride)
	}

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	// Try cache first for active rides
	if ride := r.getRideFromCache(ctx, id.Hex()); ride != nil {
		return ride, nil
	}

	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewAppError(models.ErrKindNotFound, utils.ErrRideNotFound)
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	if ride.RideState.IsActive() {
		r.cacheRide(ctx, &ride)
	}

	return &ride, nil
}

func (r *rideRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update ride: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.NewAppError(models.ErrKindNotFound, utils.ErrRideNotFound)
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

func (r *rideRepository) Replace(ctx context.Context, ride *models.Ride) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": ride.ID}, ride)
	if err != nil {
		return fmt.Errorf("failed to replace ride: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.NewAppError(models.ErrKindNotFound, utils.ErrRideNotFound)
	}

	r.invalidateRideCache(ctx, ride.ID.Hex())

	return nil
}

func (r *rideRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete ride: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.NewAppError(models.ErrKindNotFound, utils.ErrRideNotFound)
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

// Search and filtering
func (r *rideRepository) GetByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]*models.Ride, error) {
	return r.findRides(ctx, bson.M{"customer": customerID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *rideRepository) GetByRider(ctx context.Context, riderID primitive.ObjectID) ([]*models.Ride, error) {
	return r.findRides(ctx, bson.M{"rider": riderID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *rideRepository) GetAll(ctx context.Context, filter map[string]interface{}, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	rides, err := r.findRides(ctx, query, params.GetSortOptions())
	if err != nil {
		return nil, 0, err
	}

	return rides, total, nil
}

// Dispatch queries
func (r *rideRepository) GetPendingRides(ctx context.Context) ([]*models.Ride, error) {
	filter := bson.M{"rider": nil}

	return r.findRides(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

// Statistics
func (r *rideRepository) GetRideStats(ctx context.Context) ([]*interfaces.RideStateStats, error) {
	completedRating := bson.M{
		"$cond": []interface{}{
			bson.M{"$eq": []interface{}{"$ride_state", models.RideStateCompleted}},
			bson.M{"$ifNull": []interface{}{"$customer_rating", 0}},
			0,
		},
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":         "$ride_state",
			"num_rides":   bson.M{"$sum": 1},
			"num_ratings": bson.M{"$sum": completedRating},
			"avg_rating":  bson.M{"$avg": completedRating},
			"avg_price":   bson.M{"$avg": "$price"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to get ride stats: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []*interfaces.RideStateStats
	for cursor.Next(ctx) {
		var bucket interfaces.RideStateStats
		if err := cursor.Decode(&bucket); err != nil {
			return nil, fmt.Errorf("failed to decode ride stats: %w", err)
		}
		stats = append(stats, &bucket)
	}

	return stats, nil
}

// Helper methods
func (r *rideRepository) findRides(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Ride, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	for cursor.Next(ctx) {
		var ride models.Ride
		if err := cursor.Decode(&ride); err != nil {
			return nil, fmt.Errorf("failed to decode ride: %w", err)
		}
		rides = append(rides, &ride)
	}

	return rides, nil
}

// Cache operations
func (r *rideRepository) cacheRide(ctx context.Context, ride *models.Ride) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("ride:%s", ride.ID.Hex())
		r.cache.Set(ctx, cacheKey, ride, 15*time.Minute)
	}
}

func (r *rideRepository) getRideFromCache(ctx context.Context, rideID string) *models.Ride {
	if r.cache == nil {
		return nil
	}

	cacheKey := fmt.Sprintf("ride:%s", rideID)
	var ride models.Ride
	if err := r.cache.Get(ctx, cacheKey, &ride); err != nil {
		return nil
	}

	return &ride
}

func (r *rideRepository) invalidateRideCache(ctx context.Context, rideID string) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("ride:%s", rideID)
		r.cache.Delete(ctx, cacheKey)
	}
}
