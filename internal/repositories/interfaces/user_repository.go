package interfaces

import (
	"context"

	"godeliver/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// History operations
	UpdateOrdersHistory(ctx context.Context, id primitive.ObjectID, history []primitive.ObjectID) error

	// Queries
	GetByType(ctx context.Context, userType models.UserType) ([]*models.User, error)
}
