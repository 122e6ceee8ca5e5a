package services

import (
	"godeliver/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor identifies who is attempting a mutation. It is resolved by the
// auth middleware and carries no persistence handles, so the policy
// functions below stay pure and unit-testable.
type Actor struct {
	ID       primitive.ObjectID
	UserType models.UserType
	Role     models.EmployeeRole
}

func (a Actor) IsStaff() bool {
	return a.UserType == models.UserTypeEmployee &&
		(a.Role == models.RoleAdmin || a.Role == models.RoleCoordinator)
}

// RideUpdate is a proposed partial update. Nil fields were not
// requested.
type RideUpdate struct {
	Note           *string            `json:"note"`
	CustomerRating *float64           `json:"customer_rating"`
	RideState      *models.RideState  `json:"ride_state"`
	Origin         models.Coordinate  `json:"origin"`
	Destiny        models.Coordinate  `json:"destiny"`
}

func (u *RideUpdate) Empty() bool {
	return u.Note == nil && u.CustomerRating == nil && u.RideState == nil &&
		u.Origin == nil && u.Destiny == nil
}

// AuthorizeUpdate decides which of the requested fields the actor may
// touch on the ride in its current state. It returns an error naming
// the first disallowed field rather than silently dropping it.
func AuthorizeUpdate(actor Actor, ride *models.Ride, req *RideUpdate) error {
	if actor.IsStaff() {
		// Staff may edit note, origin, destiny and ride_state on any
		// ride; rating stays with the customer.
		if req.CustomerRating != nil {
			return models.NewAppError(models.ErrKindFieldNotEditable,
				"only the customer can rate a ride")
		}
		return nil
	}

	isCustomer := actor.ID == ride.Customer
	isRider := ride.HasRider() && actor.ID == *ride.Rider

	if !isCustomer && !isRider {
		return models.NewAppError(models.ErrKindForbidden,
			"this is not your ride, you cannot update it")
	}

	if isCustomer {
		return authorizeCustomerUpdate(ride, req)
	}
	return authorizeRiderUpdate(ride, req)
}

func authorizeCustomerUpdate(ride *models.Ride, req *RideUpdate) error {
	if req.RideState != nil || req.Origin != nil || req.Destiny != nil {
		return models.NewAppError(models.ErrKindFieldNotEditable,
			"customers may only edit the note or the rating of a ride")
	}

	// The note is editable while the ride is in flight; the rating
	// only once it has completed. Never both at once.
	switch {
	case ride.RideState == models.RideStateCompleted:
		if req.Note != nil {
			return models.NewAppError(models.ErrKindFieldNotEditable,
				"the note cannot be changed on a finished ride")
		}
	case ride.RideState.IsTerminal():
		if req.Note != nil || req.CustomerRating != nil {
			return models.NewAppError(models.ErrKindFieldNotEditable,
				"this ride is finished and cannot be edited")
		}
	default:
		if req.CustomerRating != nil {
			return models.NewAppError(models.ErrKindFieldNotEditable,
				"you can rate your ride once it is completed")
		}
	}

	return nil
}

func authorizeRiderUpdate(ride *models.Ride, req *RideUpdate) error {
	if ride.RideState.IsTerminal() {
		return models.NewAppError(models.ErrKindRideFinalized,
			"the ride is finished and cannot be edited")
	}

	if req.Note != nil || req.CustomerRating != nil || req.Origin != nil || req.Destiny != nil {
		return models.NewAppError(models.ErrKindFieldNotEditable,
			"riders may only advance the ride state")
	}

	if req.RideState != nil {
		switch *req.RideState {
		case models.RideStateOnTheWay, models.RideStateCompleted, models.RideStateFailed:
			if !models.CanTransition(ride.RideState, *req.RideState) {
				return models.NewAppError(models.ErrKindInvalidTransition,
					"the ride state can only move one step forward")
			}
		default:
			return models.NewAppError(models.ErrKindFieldNotEditable,
				"riders may only move a ride forward, not cancel or reset it")
		}
	}

	return nil
}

// AuthorizeCancel checks a customer-initiated cancellation.
func AuthorizeCancel(actor Actor, ride *models.Ride) error {
	if actor.ID != ride.Customer {
		return models.NewAppError(models.ErrKindForbidden,
			"this is not your ride, you cannot cancel it")
	}

	switch ride.RideState {
	case models.RideStateReceived, models.RideStateProcessing:
		return nil
	}
	return models.NewAppError(models.ErrKindIllegalCancellation,
		"your ride is on the way or finished, please contact customer support")
}
