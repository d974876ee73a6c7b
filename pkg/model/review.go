package model

import (
	"math"
	"time"
)

type Review struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID   string    `json:"booking_id" bson:"booking_id"`
	CraftsmanID string    `json:"craftsman_id" bson:"craftsman_id"`
	CustomerID  string    `json:"customer_id" bson:"customer_id"`
	Rating      int       `json:"rating" bson:"rating"`
	Comment     string    `json:"comment" bson:"comment"`
	Response    string    `json:"response,omitempty" bson:"response"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type CraftsmanSummary struct {
	ID        string `json:"id" bson:"_id"`
	Specialty string `json:"specialty" bson:"specialty"`
}

// ReviewView is a review joined with its author and the reviewed craftsman.
type ReviewView struct {
	Review    `bson:",inline"`
	Customer  *UserSummary      `json:"customer,omitempty" bson:"customer,omitempty"`
	Craftsman *CraftsmanSummary `json:"craftsman,omitempty" bson:"craftsman,omitempty"`
}

type ReviewRequest struct {
	BookingID string `json:"booking_id" validate:"required,mongodb"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required,min=10,max=500"`
}

type ReviewResponseRequest struct {
	Response string `json:"response" validate:"required,max=500"`
}

type ReviewFilter struct {
	CraftsmanID string
	CustomerID  string
	Limit       int
}

// AverageRating is the mean rating rounded to one decimal place, or 0 when
// there are no reviews.
func AverageRating(sum, count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}
