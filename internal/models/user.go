package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserType string
type EmployeeRole string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeRider    UserType = "rider"
	UserTypeEmployee UserType = "employee"

	RoleAdmin       EmployeeRole = "admin"
	RoleCoordinator EmployeeRole = "coordinator"
	RoleClerk       EmployeeRole = "clerk"
)

type User struct {
	ID            primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name          string               `json:"name" bson:"name" validate:"required"`
	Email         string               `json:"email" bson:"email" validate:"required,email"`
	Phone         string               `json:"phone" bson:"phone" validate:"required"`
	Photo         string               `json:"photo" bson:"photo"`
	UserType      UserType             `json:"user_type" bson:"user_type" validate:"required"`
	Role          EmployeeRole         `json:"role,omitempty" bson:"role,omitempty"`
	Password      string               `json:"-" bson:"password"`
	Active        bool                 `json:"-" bson:"active" default:"true"`
	OrdersHistory []primitive.ObjectID `json:"orders_history" bson:"orders_history"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
}

func (t UserType) Valid() bool {
	switch t {
	case UserTypeCustomer, UserTypeRider, UserTypeEmployee:
		return true
	}
	return false
}

func (r EmployeeRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleClerk:
		return true
	}
	return false
}

// IsStaff reports whether the user may act on rides they are not party
// to. Clerks can read but not force lifecycle changes.
func (u *User) IsStaff() bool {
	return u.UserType == UserTypeEmployee &&
		(u.Role == RoleAdmin || u.Role == RoleCoordinator)
}

// LastOrderID returns the most recent entry of the user's order
// history, which is kept in assignment/creation order.
func (u *User) LastOrderID() (primitive.ObjectID, bool) {
	if len(u.OrdersHistory) == 0 {
		return primitive.NilObjectID, false
	}
	return u.OrdersHistory[len(u.OrdersHistory)-1], true
}

// CurrentOrder derives the user's active ride from the tail of the
// order history. It is computed on read, never stored, so it cannot
// drift from the ride's actual state. The caller resolves the last
// history entry and passes it in; a nil ride yields no current order.
func CurrentOrder(lastOrder *Ride) *Ride {
	if lastOrder == nil {
		return nil
	}
	if lastOrder.RideState.IsActive() {
		return lastOrder
	}
	return nil
}

// HasOrder reports whether the ride id is already in the history.
func (u *User) HasOrder(rideID primitive.ObjectID) bool {
	for _, id := range u.OrdersHistory {
		if id == rideID {
			return true
		}
	}
	return false
}

// WithoutOrder returns the history with the ride id removed.
func (u *User) WithoutOrder(rideID primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(u.OrdersHistory))
	for _, id := range u.OrdersHistory {
		if id != rideID {
			out = append(out, id)
		}
	}
	return out
}
