package interfaces

import (
	"context"

	"godeliver/internal/models"
	"godeliver/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RideStateStats is one bucket of the per-state aggregation.
type RideStateStats struct {
	RideState  models.RideState `json:"ride_state" bson:"_id"`
	NumRides   int64            `json:"num_rides" bson:"num_rides"`
	NumRatings float64          `json:"num_ratings" bson:"num_ratings"`
	AvgRating  float64          `json:"avg_rating" bson:"avg_rating"`
	AvgPrice   float64          `json:"avg_price" bson:"avg_price"`
}

type RideRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Replace(ctx context.Context, ride *models.Ride) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Search and filtering
	GetByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]*models.Ride, error)
	GetByRider(ctx context.Context, riderID primitive.ObjectID) ([]*models.Ride, error)
	GetAll(ctx context.Context, filter map[string]interface{}, params *utils.PaginationParams) ([]*models.Ride, int64, error)

	// Dispatch queries
	GetPendingRides(ctx context.Context) ([]*models.Ride, error)

	// Statistics
	GetRideStats(ctx context.Context) ([]*RideStateStats, error)
}
