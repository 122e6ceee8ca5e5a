package services

import (
	"context"
	"time"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/internal/utils"
	"godeliver/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideService interface {
	// Customer/rider surface
	CreateMyRide(ctx context.Context, actor Actor, req *CreateRideRequest) (*models.Ride, error)
	GetMyRides(ctx context.Context, actor Actor) ([]*models.Ride, error)
	UpdateMyRide(ctx context.Context, actor Actor, req *RideUpdate) (*models.Ride, error)
	CancelMyRide(ctx context.Context, actor Actor) (*models.Ride, error)

	// Staff surface
	GetAllRides(ctx context.Context, filter map[string]interface{}, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	GetRide(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	CreateRide(ctx context.Context, req *CreateRideRequest, customerID primitive.ObjectID) (*models.Ride, error)
	UpdateRide(ctx context.Context, id primitive.ObjectID, req *RideUpdate) (*models.Ride, error)
	AdminCancelRide(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	DeleteRide(ctx context.Context, id primitive.ObjectID) error
	GetRideStats(ctx context.Context) ([]*interfaces.RideStateStats, error)
}

type CreateRideRequest struct {
	Origin  models.Coordinate `json:"origin"`
	Destiny models.Coordinate `json:"destiny"`
	Note    string            `json:"note"`
}

type rideService struct {
	rideRepo   interfaces.RideRepository
	userRepo   interfaces.UserRepository
	assignment AssignmentService
	notifier   Notifier
	log        *logger.Logger
}

func NewRideService(
	rideRepo interfaces.RideRepository,
	userRepo interfaces.UserRepository,
	assignment AssignmentService,
	notifier Notifier,
	log *logger.Logger,
) RideService {
	return &rideService{
		rideRepo:   rideRepo,
		userRepo:   userRepo,
		assignment: assignment,
		notifier:   notifier,
		log:        log,
	}
}

func (s *rideService) CreateMyRide(ctx context.Context, actor Actor, req *CreateRideRequest) (*models.Ride, error) {
	customer, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	current, err := s.assignment.CurrentOrder(ctx, customer)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return nil, models.NewAppError(models.ErrKindActiveRideExists,
			"you cannot create a new ride while you have a delivery in process")
	}

	return s.createRide(ctx, customer, req)
}

// CreateRide is the staff path: a ride created on a customer's behalf.
func (s *rideService) CreateRide(ctx context.Context, req *CreateRideRequest, customerID primitive.ObjectID) (*models.Ride, error) {
	customer, err := s.userRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.UserType != models.UserTypeCustomer {
		return nil, models.NewAppError(models.ErrKindValidationFailure,
			"the user must be a customer")
	}

	return s.createRide(ctx, customer, req)
}

func (s *rideService) createRide(ctx context.Context, customer *models.User, req *CreateRideRequest) (*models.Ride, error) {
	now := time.Now()
	ride := &models.Ride{
		Customer:     customer.ID,
		Note:         req.Note,
		Origin:       req.Origin,
		Destiny:      req.Destiny,
		Price:        utils.Distance(req.Origin, req.Destiny),
		RideState:    models.RideStateReceived,
		RideRegistry: []string{models.ReceivedRegistryLine(now)},
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	history := append(customer.OrdersHistory, ride.ID)
	if err := s.userRepo.UpdateOrdersHistory(ctx, customer.ID, history); err != nil {
		return nil, err
	}

	s.log.LogRideEvent(ride.ID, "created", map[string]interface{}{
		"customer": customer.ID.Hex(),
		"price":    ride.Price,
	})

	return ride, nil
}

func (s *rideService) GetMyRides(ctx context.Context, actor Actor) ([]*models.Ride, error) {
	switch actor.UserType {
	case models.UserTypeCustomer:
		return s.rideRepo.GetByCustomer(ctx, actor.ID)
	case models.UserTypeRider:
		return s.rideRepo.GetByRider(ctx, actor.ID)
	}
	return nil, models.NewAppError(models.ErrKindForbidden,
		"only customers and riders have their own rides")
}

// UpdateMyRide edits the actor's current order. Which fields survive
// depends on who is asking and where the ride is in its lifecycle.
func (s *rideService) UpdateMyRide(ctx context.Context, actor Actor, req *RideUpdate) (*models.Ride, error) {
	ride, err := s.actorCurrentOrder(ctx, actor)
	if err != nil {
		return nil, err
	}

	if err := AuthorizeUpdate(actor, ride, req); err != nil {
		return nil, err
	}

	if err := s.applyUpdate(ride, req, false); err != nil {
		return nil, err
	}

	if err := s.rideRepo.Replace(ctx, ride); err != nil {
		return nil, err
	}

	s.notifyParties(ride)

	return ride, nil
}

func (s *rideService) CancelMyRide(ctx context.Context, actor Actor) (*models.Ride, error) {
	ride, err := s.actorCurrentOrder(ctx, actor)
	if err != nil {
		return nil, err
	}

	if err := AuthorizeCancel(actor, ride); err != nil {
		return nil, err
	}

	if err := ride.ApplyTransition(models.RideStateCanceled, false, time.Now()); err != nil {
		return nil, err
	}

	if err := s.rideRepo.Replace(ctx, ride); err != nil {
		return nil, err
	}

	s.log.LogRideEvent(ride.ID, "canceled", map[string]interface{}{
		"by": actor.ID.Hex(),
	})
	s.notifyParties(ride)

	return ride, nil
}

func (s *rideService) GetAllRides(ctx context.Context, filter map[string]interface{}, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return s.rideRepo.GetAll(ctx, filter, params)
}

func (s *rideService) GetRide(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	return s.rideRepo.GetByID(ctx, id)
}

// UpdateRide is the staff path: direct edits with no relationship
// check, with a price recompute when either endpoint moves.
func (s *rideService) UpdateRide(ctx context.Context, id primitive.ObjectID, req *RideUpdate) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CustomerRating != nil {
		return nil, models.NewAppError(models.ErrKindFieldNotEditable,
			"only the customer can rate a ride")
	}

	if err := s.applyUpdate(ride, req, true); err != nil {
		return nil, err
	}

	if err := s.rideRepo.Replace(ctx, ride); err != nil {
		return nil, err
	}

	s.notifyParties(ride)

	return ride, nil
}

func (s *rideService) AdminCancelRide(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ride.RideState.IsTerminal() {
		return nil, models.NewAppError(models.ErrKindInvalidTransition,
			"the ride is already finished and cannot be canceled")
	}

	// Staff can pull a ride back even once it is on the way.
	now := time.Now()
	ride.RideRegistry = append(ride.RideRegistry, models.CanceledRegistryLine(now, true))
	ride.RideState = models.RideStateCanceled
	ride.FinishedAt = &now

	if err := s.rideRepo.Replace(ctx, ride); err != nil {
		return nil, err
	}

	s.log.LogRideEvent(ride.ID, "canceled_by_admin", nil)
	s.notifyParties(ride)

	return ride, nil
}

// DeleteRide removes the ride and prunes it from both parties'
// histories.
func (s *rideService) DeleteRide(ctx context.Context, id primitive.ObjectID) error {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if ride.HasRider() {
		if rider, err := s.userRepo.GetByID(ctx, *ride.Rider); err == nil {
			if err := s.userRepo.UpdateOrdersHistory(ctx, rider.ID, rider.WithoutOrder(ride.ID)); err != nil {
				return err
			}
		}
	}

	if customer, err := s.userRepo.GetByID(ctx, ride.Customer); err == nil {
		if err := s.userRepo.UpdateOrdersHistory(ctx, customer.ID, customer.WithoutOrder(ride.ID)); err != nil {
			return err
		}
	}

	if err := s.rideRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.LogRideEvent(id, "deleted", nil)

	return nil
}

func (s *rideService) GetRideStats(ctx context.Context) ([]*interfaces.RideStateStats, error) {
	return s.rideRepo.GetRideStats(ctx)
}

// applyUpdate copies the authorized fields onto the ride and computes
// the derived ones: price follows the resulting coordinates and state
// changes run through the state machine.
func (s *rideService) applyUpdate(ride *models.Ride, req *RideUpdate, byStaff bool) error {
	if req.Note != nil {
		ride.Note = *req.Note
	}

	if req.CustomerRating != nil {
		rating := *req.CustomerRating
		if rating < utils.MinCustomerRating || rating > utils.MaxCustomerRating {
			return models.NewAppError(models.ErrKindValidationFailure,
				"rating must be between 1 and 5")
		}
		ride.CustomerRating = &rating
	}

	if req.Origin != nil || req.Destiny != nil {
		if req.Origin != nil {
			if !req.Origin.Valid() {
				return models.NewAppError(models.ErrKindValidationFailure,
					"origin must be a valid [lat, lng] pair")
			}
			ride.Origin = req.Origin
		}
		if req.Destiny != nil {
			if !req.Destiny.Valid() {
				return models.NewAppError(models.ErrKindValidationFailure,
					"destiny must be a valid [lat, lng] pair")
			}
			ride.Destiny = req.Destiny
		}
		ride.Price = utils.Distance(ride.Origin, ride.Destiny)
	}

	if req.RideState != nil && *req.RideState != ride.RideState {
		if !req.RideState.Valid() {
			return models.NewAppError(models.ErrKindValidationFailure,
				"unknown ride state: "+string(*req.RideState))
		}
		if err := ride.ApplyTransition(*req.RideState, byStaff, time.Now()); err != nil {
			return err
		}
	}

	return nil
}

// actorCurrentOrder resolves the actor's active ride or fails with
// NotFound when there is none.
func (s *rideService) actorCurrentOrder(ctx context.Context, actor Actor) (*models.Ride, error) {
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	ride, err := s.assignment.CurrentOrder(ctx, user)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, models.NewAppError(models.ErrKindNotFound,
			"there is no current order at the moment")
	}

	return ride, nil
}

func (s *rideService) notifyParties(ride *models.Ride) {
	s.notifier.NotifyRideChange(ride.Customer, ride.ID)
	if ride.HasRider() {
		s.notifier.NotifyRideChange(*ride.Rider, ride.ID)
	}
}
