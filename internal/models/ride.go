package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideState string

const (
	RideStateReceived   RideState = "received"
	RideStateProcessing RideState = "processing"
	RideStateOnTheWay   RideState = "on the way"
	RideStateCompleted  RideState = "completed"
	RideStateCanceled   RideState = "canceled"
	RideStateFailed     RideState = "failed"
)

// Coordinate is a [lat, lng] pair. Index 0 must be in [-90, 90] and
// index 1 in [-180, 180].
type Coordinate []float64

func (c Coordinate) Valid() bool {
	return len(c) == 2 &&
		c[0] >= -90 && c[0] <= 90 &&
		c[1] >= -180 && c[1] <= 180
}

type Ride struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Customer       primitive.ObjectID  `json:"customer" bson:"customer" validate:"required"`
	Rider          *primitive.ObjectID `json:"rider" bson:"rider"`
	Note           string              `json:"note" bson:"note"`
	Origin         Coordinate          `json:"origin" bson:"origin" validate:"required"`
	Destiny        Coordinate          `json:"destiny" bson:"destiny" validate:"required"`
	Price          float64             `json:"price" bson:"price"`
	RideState      RideState           `json:"ride_state" bson:"ride_state" default:"received"`
	CustomerRating *float64            `json:"customer_rating" bson:"customer_rating"`
	RideRegistry   []string            `json:"ride_registry" bson:"ride_registry"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	FinishedAt     *time.Time          `json:"finished_at" bson:"finished_at"`
}

// IsActive reports whether the ride still occupies its rider.
func (s RideState) IsActive() bool {
	switch s {
	case RideStateReceived, RideStateProcessing, RideStateOnTheWay:
		return true
	}
	return false
}

func (s RideState) IsTerminal() bool {
	switch s {
	case RideStateCompleted, RideStateCanceled, RideStateFailed:
		return true
	}
	return false
}

func (s RideState) Valid() bool {
	return s.IsActive() || s.IsTerminal()
}

// CanTransition encodes the ride lifecycle:
// received -> processing -> on the way -> completed|failed, with
// cancellation possible from received and processing only. A
// processing ride may also finish directly, since short deliveries are
// often closed without the on-the-way step ever being recorded.
// Terminal states have no outgoing edges.
func CanTransition(from, to RideState) bool {
	switch from {
	case RideStateReceived:
		return to == RideStateProcessing || to == RideStateCanceled
	case RideStateProcessing:
		return to == RideStateOnTheWay || to == RideStateCanceled ||
			to == RideStateCompleted || to == RideStateFailed
	case RideStateOnTheWay:
		return to == RideStateCompleted || to == RideStateFailed
	}
	return false
}

func (r *Ride) HasRider() bool {
	return r.Rider != nil && !r.Rider.IsZero()
}

// Registry line formats, matching the wording customers see in the app.
func ReceivedRegistryLine(at time.Time) string {
	return "Your ride was received at: " + at.Format(time.RFC1123)
}

func ProcessingRegistryLine(at time.Time) string {
	return "Your ride is processing at: " + at.Format(time.RFC1123)
}

func OnTheWayRegistryLine(at time.Time) string {
	return "Your ride is on the way at: " + at.Format(time.RFC1123)
}

func CompletedRegistryLine(at time.Time) string {
	return "Your ride was completed at: " + at.Format(time.RFC1123)
}

func FailedRegistryLine(at time.Time) string {
	return "Your ride failed at: " + at.Format(time.RFC1123) + ". Please contact customer support."
}

func CanceledRegistryLine(at time.Time, byAdmin bool) string {
	if byAdmin {
		return "Your ride was canceled by Admin at: " + at.Format(time.RFC1123)
	}
	return "Your ride was canceled at: " + at.Format(time.RFC1123)
}

// ApplyTransition moves the ride to the target state and applies the
// side effects of the edge: registry lines and finishedAt on terminal
// states. The processing line fills registry index 1 when a slot is
// already there, so a re-assigned ride does not accumulate duplicates.
func (r *Ride) ApplyTransition(to RideState, byAdmin bool, now time.Time) error {
	if r.RideState.IsTerminal() {
		return NewAppError(ErrKindInvalidTransition,
			fmt.Sprintf("ride is already %s and cannot change state", r.RideState))
	}
	if !CanTransition(r.RideState, to) {
		return NewAppError(ErrKindInvalidTransition,
			fmt.Sprintf("cannot move ride from %s to %s", r.RideState, to))
	}

	switch to {
	case RideStateProcessing:
		line := ProcessingRegistryLine(now)
		if len(r.RideRegistry) > 1 {
			r.RideRegistry[1] = line
		} else {
			r.RideRegistry = append(r.RideRegistry, line)
		}
	case RideStateOnTheWay:
		r.RideRegistry = append(r.RideRegistry, OnTheWayRegistryLine(now))
	case RideStateCompleted:
		r.RideRegistry = append(r.RideRegistry, CompletedRegistryLine(now))
		r.FinishedAt = &now
	case RideStateFailed:
		r.RideRegistry = append(r.RideRegistry, FailedRegistryLine(now))
		r.FinishedAt = &now
	case RideStateCanceled:
		r.RideRegistry = append(r.RideRegistry, CanceledRegistryLine(now, byAdmin))
		r.FinishedAt = &now
	}

	r.RideState = to
	return nil
}

// ResetToReceived is the rider-unassignment transition: the ride goes
// back to the pending pool with a fresh registry.
func (r *Ride) ResetToReceived(now time.Time) {
	r.Rider = nil
	r.RideState = RideStateReceived
	r.RideRegistry = []string{ReceivedRegistryLine(now)}
	r.FinishedAt = nil
}
