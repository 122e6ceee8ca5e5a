package services

import (
	"context"
	"strings"
	"testing"

	"godeliver/internal/models"
	"godeliver/internal/utils"
)

type rideServiceFixture struct {
	*assignmentFixture
	rides RideService
}

func newRideServiceFixture() *rideServiceFixture {
	f := newAssignmentFixture()
	return &rideServiceFixture{
		assignmentFixture: f,
		rides:             NewRideService(f.rideRepo, f.userRepo, f.service, f.notifier, testLogger()),
	}
}

func validCreateRequest() *CreateRideRequest {
	return &CreateRideRequest{
		Origin:  models.Coordinate{40.7128, -74.0060},
		Destiny: models.Coordinate{40.7580, -73.9855},
		Note:    "leave at the door",
	}
}

func TestCreateMyRide(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	actor := Actor{ID: customer.ID, UserType: models.UserTypeCustomer}

	ride, err := f.rides.CreateMyRide(ctx, actor, validCreateRequest())
	if err != nil {
		t.Fatalf("CreateMyRide: %v", err)
	}

	if ride.RideState != models.RideStateReceived {
		t.Errorf("state = %q, want received", ride.RideState)
	}
	if ride.Price <= 0 {
		t.Errorf("price = %f, want derived from distance", ride.Price)
	}
	if len(ride.RideRegistry) != 1 || !strings.HasPrefix(ride.RideRegistry[0], "Your ride was received at: ") {
		t.Errorf("registry = %v, want a single received line", ride.RideRegistry)
	}

	stored, err := f.userRepo.GetByID(ctx, customer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.HasOrder(ride.ID) {
		t.Error("ride missing from customer history")
	}
}

func TestCreateMyRideRejectsSecondActiveRide(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	actor := Actor{ID: customer.ID, UserType: models.UserTypeCustomer}

	if _, err := f.rides.CreateMyRide(ctx, actor, validCreateRequest()); err != nil {
		t.Fatalf("first CreateMyRide: %v", err)
	}

	_, err := f.rides.CreateMyRide(ctx, actor, validCreateRequest())
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Kind != models.ErrKindActiveRideExists {
		t.Errorf("second CreateMyRide = %v, want ACTIVE_RIDE_EXISTS", err)
	}
}

func TestCreateMyRideAllowedAfterCancellation(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	actor := Actor{ID: customer.ID, UserType: models.UserTypeCustomer}

	if _, err := f.rides.CreateMyRide(ctx, actor, validCreateRequest()); err != nil {
		t.Fatalf("CreateMyRide: %v", err)
	}
	if _, err := f.rides.CancelMyRide(ctx, actor); err != nil {
		t.Fatalf("CancelMyRide: %v", err)
	}

	if _, err := f.rides.CreateMyRide(ctx, actor, validCreateRequest()); err != nil {
		t.Errorf("CreateMyRide after cancel = %v, want success", err)
	}
}

func TestStaffCreateRideValidatesCustomer(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	rider := f.addUser(t, models.UserTypeRider)

	_, err := f.rides.CreateRide(ctx, validCreateRequest(), rider.ID)
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Kind != models.ErrKindValidationFailure {
		t.Errorf("CreateRide for a rider = %v, want VALIDATION_FAILURE", err)
	}

	customer := f.addUser(t, models.UserTypeCustomer)
	if _, err := f.rides.CreateRide(ctx, validCreateRequest(), customer.ID); err != nil {
		t.Errorf("CreateRide for a customer = %v, want success", err)
	}
}

func TestUpdateMyRideNote(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	actor := Actor{ID: customer.ID, UserType: models.UserTypeCustomer}

	created, err := f.rides.CreateMyRide(ctx, actor, validCreateRequest())
	if err != nil {
		t.Fatal(err)
	}

	updated, err := f.rides.UpdateMyRide(ctx, actor, &RideUpdate{Note: strPtr("second floor")})
	if err != nil {
		t.Fatalf("UpdateMyRide: %v", err)
	}
	if updated.Note != "second floor" {
		t.Errorf("note = %q, want %q", updated.Note, "second floor")
	}

	stored, err := f.rideRepo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Note != "second floor" {
		t.Error("note update not persisted")
	}
}

func TestUpdateMyRideRejectsRatingInFlight(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	rider := f.addUser(t, models.UserTypeRider)
	actor := Actor{ID: customer.ID, UserType: models.UserTypeCustomer}

	created, err := f.rides.CreateMyRide(ctx, actor, validCreateRequest())
	if err != nil {
		t.Fatal(err)
	}
	f.attach(t, created, rider)

	_, err = f.rides.UpdateMyRide(ctx, actor, &RideUpdate{CustomerRating: floatPtr(5)})
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Kind != models.ErrKindFieldNotEditable {
		t.Errorf("UpdateMyRide rating while processing = %v, want FIELD_NOT_EDITABLE", err)
	}
}

func TestUpdateMyRideWithoutCurrentOrder(t *testing.T) {
	f := newRideServiceFixture()

	customer := f.addUser(t, models.UserTypeCustomer)
	actor := Actor{ID: customer.ID, UserType: models.UserTypeCustomer}

	_, err := f.rides.UpdateMyRide(context.Background(), actor, &RideUpdate{Note: strPtr("x")})
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Kind != models.ErrKindNotFound {
		t.Errorf("UpdateMyRide with no current order = %v, want NOT_FOUND", err)
	}
}

func TestRiderAdvancesStateViaUpdateMyRide(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	rider := f.addUser(t, models.UserTypeRider)
	customerActor := Actor{ID: customer.ID, UserType: models.UserTypeCustomer}
	riderActor := Actor{ID: rider.ID, UserType: models.UserTypeRider}

	created, err := f.rides.CreateMyRide(ctx, customerActor, validCreateRequest())
	if err != nil {
		t.Fatal(err)
	}
	f.attach(t, created, rider)

	onTheWay, err := f.rides.UpdateMyRide(ctx, riderActor, &RideUpdate{RideState: statePtr(models.RideStateOnTheWay)})
	if err != nil {
		t.Fatalf("UpdateMyRide to on the way: %v", err)
	}
	if onTheWay.RideState != models.RideStateOnTheWay {
		t.Errorf("state = %q, want on the way", onTheWay.RideState)
	}

	completed, err := f.rides.UpdateMyRide(ctx, riderActor, &RideUpdate{RideState: statePtr(models.RideStateCompleted)})
	if err != nil {
		t.Fatalf("UpdateMyRide to completed: %v", err)
	}
	if completed.FinishedAt == nil {
		t.Error("completed ride has no FinishedAt")
	}
	last := completed.RideRegistry[len(completed.RideRegistry)-1]
	if !strings.HasPrefix(last, "Your ride was completed at: ") {
		t.Errorf("last registry line = %q", last)
	}
}

func TestCancelMyRideStates(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	actor := Actor{ID: customer.ID, UserType: models.UserTypeCustomer}

	created, err := f.rides.CreateMyRide(ctx, actor, validCreateRequest())
	if err != nil {
		t.Fatal(err)
	}

	canceled, err := f.rides.CancelMyRide(ctx, actor)
	if err != nil {
		t.Fatalf("CancelMyRide: %v", err)
	}
	if canceled.ID != created.ID || canceled.RideState != models.RideStateCanceled {
		t.Errorf("canceled ride = %v %q", canceled.ID, canceled.RideState)
	}
	last := canceled.RideRegistry[len(canceled.RideRegistry)-1]
	if !strings.HasPrefix(last, "Your ride was canceled at: ") {
		t.Errorf("cancel line = %q", last)
	}

	// No current order anymore, so a second cancel resolves nothing.
	_, err = f.rides.CancelMyRide(ctx, actor)
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Kind != models.ErrKindNotFound {
		t.Errorf("second CancelMyRide = %v, want NOT_FOUND", err)
	}
}

func TestCancelMyRideTooLateOnceOnTheWay(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	rider := f.addUser(t, models.UserTypeRider)
	customerActor := Actor{ID: customer.ID, UserType: models.UserTypeCustomer}
	riderActor := Actor{ID: rider.ID, UserType: models.UserTypeRider}

	created, err := f.rides.CreateMyRide(ctx, customerActor, validCreateRequest())
	if err != nil {
		t.Fatal(err)
	}
	f.attach(t, created, rider)
	if _, err := f.rides.UpdateMyRide(ctx, riderActor, &RideUpdate{RideState: statePtr(models.RideStateOnTheWay)}); err != nil {
		t.Fatal(err)
	}

	_, err = f.rides.CancelMyRide(ctx, customerActor)
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Kind != models.ErrKindIllegalCancellation {
		t.Errorf("CancelMyRide on the way = %v, want ILLEGAL_CANCELLATION", err)
	}
}

func TestStaffUpdateRecomputesPrice(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	created, err := f.rides.CreateRide(ctx, validCreateRequest(), customer.ID)
	if err != nil {
		t.Fatal(err)
	}

	update := &RideUpdate{Destiny: models.Coordinate{41.8781, -87.6298}}
	updated, err := f.rides.UpdateRide(ctx, created.ID, update)
	if err != nil {
		t.Fatalf("UpdateRide: %v", err)
	}

	want := utils.Distance(created.Origin, update.Destiny)
	if updated.Price != want {
		t.Errorf("price = %f, want %f", updated.Price, want)
	}
	if updated.Price == created.Price {
		t.Error("price unchanged after moving the destination")
	}
}

func TestStaffUpdateRejectsBadCoordinates(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	created, err := f.rides.CreateRide(ctx, validCreateRequest(), customer.ID)
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.rides.UpdateRide(ctx, created.ID, &RideUpdate{Origin: models.Coordinate{120, 0}})
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Kind != models.ErrKindValidationFailure {
		t.Errorf("UpdateRide with bad origin = %v, want VALIDATION_FAILURE", err)
	}
}

func TestAdminCancelRide(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	rider := f.addUser(t, models.UserTypeRider)
	riderActor := Actor{ID: rider.ID, UserType: models.UserTypeRider}

	created, err := f.rides.CreateRide(ctx, validCreateRequest(), customer.ID)
	if err != nil {
		t.Fatal(err)
	}
	f.attach(t, created, rider)
	if _, err := f.rides.UpdateMyRide(ctx, riderActor, &RideUpdate{RideState: statePtr(models.RideStateOnTheWay)}); err != nil {
		t.Fatal(err)
	}

	// Customers cannot pull back an on-the-way ride, staff can.
	canceled, err := f.rides.AdminCancelRide(ctx, created.ID)
	if err != nil {
		t.Fatalf("AdminCancelRide: %v", err)
	}
	if canceled.RideState != models.RideStateCanceled {
		t.Errorf("state = %q, want canceled", canceled.RideState)
	}
	if canceled.FinishedAt == nil {
		t.Error("canceled ride has no FinishedAt")
	}
	last := canceled.RideRegistry[len(canceled.RideRegistry)-1]
	if !strings.HasPrefix(last, "Your ride was canceled by Admin at: ") {
		t.Errorf("admin cancel line = %q", last)
	}

	_, err = f.rides.AdminCancelRide(ctx, created.ID)
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Kind != models.ErrKindInvalidTransition {
		t.Errorf("AdminCancelRide on settled ride = %v, want INVALID_TRANSITION", err)
	}
}

func TestDeleteRidePrunesHistories(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	rider := f.addUser(t, models.UserTypeRider)

	created, err := f.rides.CreateRide(ctx, validCreateRequest(), customer.ID)
	if err != nil {
		t.Fatal(err)
	}
	f.attach(t, created, rider)

	if err := f.rides.DeleteRide(ctx, created.ID); err != nil {
		t.Fatalf("DeleteRide: %v", err)
	}

	if _, err := f.rideRepo.GetByID(ctx, created.ID); err == nil {
		t.Error("ride still present after delete")
	}

	customerStored, err := f.userRepo.GetByID(ctx, customer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if customerStored.HasOrder(created.ID) {
		t.Error("ride still in the customer's history")
	}

	riderStored, err := f.userRepo.GetByID(ctx, rider.ID)
	if err != nil {
		t.Fatal(err)
	}
	if riderStored.HasOrder(created.ID) {
		t.Error("ride still in the rider's history")
	}
}

func TestGetMyRides(t *testing.T) {
	f := newRideServiceFixture()
	ctx := context.Background()

	customer := f.addUser(t, models.UserTypeCustomer)
	rider := f.addUser(t, models.UserTypeRider)
	customerActor := Actor{ID: customer.ID, UserType: models.UserTypeCustomer}
	riderActor := Actor{ID: rider.ID, UserType: models.UserTypeRider}

	created, err := f.rides.CreateMyRide(ctx, customerActor, validCreateRequest())
	if err != nil {
		t.Fatal(err)
	}
	f.attach(t, created, rider)

	customerRides, err := f.rides.GetMyRides(ctx, customerActor)
	if err != nil {
		t.Fatal(err)
	}
	if len(customerRides) != 1 || customerRides[0].ID != created.ID {
		t.Errorf("customer rides = %v", customerRides)
	}

	riderRides, err := f.rides.GetMyRides(ctx, riderActor)
	if err != nil {
		t.Fatal(err)
	}
	if len(riderRides) != 1 || riderRides[0].ID != created.ID {
		t.Errorf("rider rides = %v", riderRides)
	}

	staff := Actor{ID: customer.ID, UserType: models.UserTypeEmployee, Role: models.RoleAdmin}
	if _, err := f.rides.GetMyRides(ctx, staff); err == nil {
		t.Error("employees have no own-rides listing")
	}
}
