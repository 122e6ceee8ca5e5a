package services

import (
	"context"
	"sort"
	"sync"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/internal/utils"
	"godeliver/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories backing the service tests. They mimic the
// document store's copy semantics: reads return clones, so service
// mutations only stick after Replace.

type fakeRideRepo struct {
	mu    sync.Mutex
	rides map[primitive.ObjectID]*models.Ride
	order []primitive.ObjectID
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func cloneRide(r *models.Ride) *models.Ride {
	c := *r
	if r.Rider != nil {
		id := *r.Rider
		c.Rider = &id
	}
	if r.CustomerRating != nil {
		v := *r.CustomerRating
		c.CustomerRating = &v
	}
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		c.FinishedAt = &t
	}
	c.RideRegistry = append([]string(nil), r.RideRegistry...)
	c.Origin = append(models.Coordinate(nil), r.Origin...)
	c.Destiny = append(models.Coordinate(nil), r.Destiny...)
	return &c
}

func (f *fakeRideRepo) Create(ctx context.Context, ride *models.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	f.rides[ride.ID] = cloneRide(ride)
	f.order = append(f.order, ride.ID)
	return nil
}

func (f *fakeRideRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[id]
	if !ok {
		return nil, models.NewAppError(models.ErrKindNotFound, "ride not found")
	}
	return cloneRide(ride), nil
}

func (f *fakeRideRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rides[id]; !ok {
		return models.NewAppError(models.ErrKindNotFound, "ride not found")
	}
	return nil
}

func (f *fakeRideRepo) Replace(ctx context.Context, ride *models.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rides[ride.ID]; !ok {
		return models.NewAppError(models.ErrKindNotFound, "ride not found")
	}
	f.rides[ride.ID] = cloneRide(ride)
	return nil
}

func (f *fakeRideRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rides[id]; !ok {
		return models.NewAppError(models.ErrKindNotFound, "ride not found")
	}
	delete(f.rides, id)
	return nil
}

func (f *fakeRideRepo) GetByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ride
	for _, id := range f.order {
		if ride, ok := f.rides[id]; ok && ride.Customer == customerID {
			out = append(out, cloneRide(ride))
		}
	}
	return out, nil
}

func (f *fakeRideRepo) GetByRider(ctx context.Context, riderID primitive.ObjectID) ([]*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ride
	for _, id := range f.order {
		if ride, ok := f.rides[id]; ok && ride.Rider != nil && *ride.Rider == riderID {
			out = append(out, cloneRide(ride))
		}
	}
	return out, nil
}

func (f *fakeRideRepo) GetAll(ctx context.Context, filter map[string]interface{}, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ride
	for _, id := range f.order {
		ride, ok := f.rides[id]
		if !ok {
			continue
		}
		if state, ok := filter["ride_state"].(string); ok && string(ride.RideState) != state {
			continue
		}
		out = append(out, cloneRide(ride))
	}
	return out, int64(len(out)), nil
}

func (f *fakeRideRepo) GetPendingRides(ctx context.Context) ([]*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ride
	for _, id := range f.order {
		if ride, ok := f.rides[id]; ok && ride.Rider == nil {
			out = append(out, cloneRide(ride))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeRideRepo) GetRideStats(ctx context.Context) ([]*interfaces.RideStateStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	buckets := make(map[models.RideState]*interfaces.RideStateStats)
	for _, ride := range f.rides {
		b, ok := buckets[ride.RideState]
		if !ok {
			b = &interfaces.RideStateStats{RideState: ride.RideState}
			buckets[ride.RideState] = b
		}
		b.NumRides++
		b.AvgPrice += ride.Price
		if ride.CustomerRating != nil {
			b.NumRatings++
			b.AvgRating += *ride.CustomerRating
		}
	}
	var out []*interfaces.RideStateStats
	for _, b := range buckets {
		b.AvgPrice /= float64(b.NumRides)
		if b.NumRatings > 0 {
			b.AvgRating /= b.NumRatings
		}
		out = append(out, b)
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	order []primitive.ObjectID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.OrdersHistory = append([]primitive.ObjectID(nil), u.OrdersHistory...)
	return &c
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = cloneUser(user)
	f.order = append(f.order, user.ID)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, models.NewAppError(models.ErrKindNotFound, "user not found")
	}
	return cloneUser(user), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return models.NewAppError(models.ErrKindNotFound, "user not found")
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) UpdateOrdersHistory(ctx context.Context, id primitive.ObjectID, history []primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.NewAppError(models.ErrKindNotFound, "user not found")
	}
	user.OrdersHistory = append([]primitive.ObjectID(nil), history...)
	return nil
}

func (f *fakeUserRepo) GetByType(ctx context.Context, userType models.UserType) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, id := range f.order {
		if user, ok := f.users[id]; ok && user.UserType == userType {
			out = append(out, cloneUser(user))
		}
	}
	return out, nil
}

// fakeNotifier records which users were told about which rides.
type fakeNotifier struct {
	mu     sync.Mutex
	events []notifyEvent
}

type notifyEvent struct {
	UserID primitive.ObjectID
	RideID primitive.ObjectID
}

func (f *fakeNotifier) NotifyRideChange(userID, rideID primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notifyEvent{UserID: userID, RideID: rideID})
}

func (f *fakeNotifier) notified(userID primitive.ObjectID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.UserID == userID {
			return true
		}
	}
	return false
}

func testLogger() *logger.Logger {
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stdout"})
	if err != nil {
		panic(err)
	}
	return log
}
