package services

import (
	"context"
	"sync"
	"time"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentService reconciles a ride with its rider. It owns the
// single invariant the rest of the system leans on: a rider holds at
// most one active ride, and a rider's orders_history lists exactly the
// rides ever assigned to them, in assignment order.
type AssignmentService interface {
	// Assign attaches the ride to the given rider, detaching any
	// previous rider. A nil riderID detaches the current rider and
	// sends the ride back to the pending pool.
	Assign(ctx context.Context, rideID primitive.ObjectID, riderID *primitive.ObjectID) (*models.Ride, error)

	// CurrentOrder derives the user's active ride from the tail of
	// their order history. Nil when the last ride is finished or the
	// history is empty.
	CurrentOrder(ctx context.Context, user *models.User) (*models.Ride, error)
}

type assignmentService struct {
	rideRepo interfaces.RideRepository
	userRepo interfaces.UserRepository
	notifier Notifier
	log      *logger.Logger

	// Serializes the multi-record write sequence. The document store
	// gives no transaction here; interleaved assignments would corrupt
	// rider histories.
	mu sync.Mutex
}

func NewAssignmentService(
	rideRepo interfaces.RideRepository,
	userRepo interfaces.UserRepository,
	notifier Notifier,
	log *logger.Logger,
) AssignmentService {
	return &assignmentService{
		rideRepo: rideRepo,
		userRepo: userRepo,
		notifier: notifier,
		log:      log,
	}
}

func (s *assignmentService) CurrentOrder(ctx context.Context, user *models.User) (*models.Ride, error) {
	lastID, ok := user.LastOrderID()
	if !ok {
		return nil, nil
	}

	ride, err := s.rideRepo.GetByID(ctx, lastID)
	if err != nil {
		// A dangling history entry (ride deleted) means no current order.
		if appErr, ok := models.AsAppError(err); ok && appErr.Kind == models.ErrKindNotFound {
			return nil, nil
		}
		return nil, err
	}

	return models.CurrentOrder(ride), nil
}

func (s *assignmentService) Assign(ctx context.Context, rideID primitive.ObjectID, riderID *primitive.ObjectID) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if riderID != nil && *riderID == ride.Customer {
		return nil, models.NewAppError(models.ErrKindSelfAssignment,
			"you cannot assign a rider with the same id as the customer")
	}

	switch ride.RideState {
	case models.RideStateReceived, models.RideStateProcessing:
	default:
		return nil, models.NewAppError(models.ErrKindRideNotAssignable,
			"the ride is "+string(ride.RideState)+" and its rider can no longer change")
	}

	if riderID == nil {
		return s.detachRider(ctx, ride)
	}
	return s.attachRider(ctx, ride, *riderID)
}

// detachRider clears the ride's rider, prunes the ride from the old
// rider's history, and resets the ride to the pending pool.
func (s *assignmentService) detachRider(ctx context.Context, ride *models.Ride) (*models.Ride, error) {
	if !ride.HasRider() {
		return ride, nil
	}

	oldRiderID := *ride.Rider
	oldRider, err := s.userRepo.GetByID(ctx, oldRiderID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateOrdersHistory(ctx, oldRiderID, oldRider.WithoutOrder(ride.ID)); err != nil {
		return nil, err
	}

	ride.ResetToReceived(time.Now())
	if err := s.rideRepo.Replace(ctx, ride); err != nil {
		return nil, err
	}

	s.log.WithRideID(ride.ID).WithUserID(oldRiderID).Info("rider detached from ride")

	s.notifier.NotifyRideChange(ride.Customer, ride.ID)
	s.notifier.NotifyRideChange(oldRiderID, ride.ID)

	return ride, nil
}

func (s *assignmentService) attachRider(ctx context.Context, ride *models.Ride, riderID primitive.ObjectID) (*models.Ride, error) {
	if ride.HasRider() && *ride.Rider == riderID {
		return ride, nil
	}

	newRider, err := s.userRepo.GetByID(ctx, riderID)
	if err != nil {
		return nil, err
	}
	if newRider.UserType != models.UserTypeRider {
		return nil, models.NewAppError(models.ErrKindValidationFailure,
			"the assigned user must be a rider")
	}

	// A rider can only hold one active ride. If the new rider is busy,
	// their current job is closed out as completed and its customer is
	// told. The dispatcher relies on this to free riders up.
	if err := s.finishCurrentOrder(ctx, newRider); err != nil {
		return nil, err
	}

	if !newRider.HasOrder(ride.ID) {
		history := append(newRider.OrdersHistory, ride.ID)
		if err := s.userRepo.UpdateOrdersHistory(ctx, riderID, history); err != nil {
			return nil, err
		}
	}

	if ride.HasRider() {
		oldRiderID := *ride.Rider
		oldRider, err := s.userRepo.GetByID(ctx, oldRiderID)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdateOrdersHistory(ctx, oldRiderID, oldRider.WithoutOrder(ride.ID)); err != nil {
			return nil, err
		}

		s.notifier.NotifyRideChange(oldRiderID, ride.ID)
	}

	now := time.Now()
	ride.Rider = &riderID
	if ride.RideState == models.RideStateReceived {
		if err := ride.ApplyTransition(models.RideStateProcessing, false, now); err != nil {
			return nil, err
		}
	} else {
		// Reassignment of an already-processing ride refreshes the
		// processing registry slot instead of stacking lines.
		line := models.ProcessingRegistryLine(now)
		if len(ride.RideRegistry) > 1 {
			ride.RideRegistry[1] = line
		} else {
			ride.RideRegistry = append(ride.RideRegistry, line)
		}
	}

	if err := s.rideRepo.Replace(ctx, ride); err != nil {
		return nil, err
	}

	s.log.WithRideID(ride.ID).WithUserID(riderID).Info("rider assigned to ride")

	s.notifier.NotifyRideChange(ride.Customer, ride.ID)
	s.notifier.NotifyRideChange(riderID, ride.ID)

	return ride, nil
}

// finishCurrentOrder force-completes the rider's active ride, if any.
func (s *assignmentService) finishCurrentOrder(ctx context.Context, rider *models.User) error {
	current, err := s.CurrentOrder(ctx, rider)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}

	now := time.Now()
	current.RideRegistry = append(current.RideRegistry, models.CompletedRegistryLine(now))
	current.RideState = models.RideStateCompleted
	current.FinishedAt = &now

	if err := s.rideRepo.Replace(ctx, current); err != nil {
		return err
	}

	s.log.WithRideID(current.ID).WithUserID(rider.ID).Info("rider's previous ride force-completed")

	s.notifier.NotifyRideChange(current.Customer, current.ID)

	return nil
}
