package model

import "time"

const (
	SpecialtyPlumber     = "plumber"
	SpecialtyElectrician = "electrician"
	SpecialtyCarpenter   = "carpenter"
	SpecialtyPainter     = "painter"
	SpecialtyMason       = "mason"
	SpecialtyGardener    = "gardener"
	SpecialtyCleaner     = "cleaner"
	SpecialtyOther       = "other"
)

var Specialties = []string{
	SpecialtyPlumber,
	SpecialtyElectrician,
	SpecialtyCarpenter,
	SpecialtyPainter,
	SpecialtyMason,
	SpecialtyGardener,
	SpecialtyCleaner,
	SpecialtyOther,
}

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" bson:"lng" validate:"min=-180,max=180"`
}

type Location struct {
	City        string       `json:"city" bson:"city" validate:"required,min=2,max=100"`
	Address     string       `json:"address" bson:"address" validate:"required,min=5,max=300"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty" validate:"omitempty"`
}

type Availability struct {
	Day       string `json:"day" bson:"day" validate:"required,weekday"`
	StartTime string `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" bson:"end_time" validate:"required,clock"`
}

type PortfolioItem struct {
	Title       string   `json:"title" bson:"title" validate:"required,max=120"`
	Description string   `json:"description" bson:"description" validate:"max=1000"`
	Images      []string `json:"images" bson:"images" validate:"max=20,dive,url"`
}

type Craftsman struct {
	ID             string          `json:"id,omitempty" bson:"_id,omitempty"`
	UserID         string          `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	Specialty      string          `json:"specialty" bson:"specialty" validate:"required,specialty"`
	Bio            string          `json:"bio" bson:"bio" validate:"max=500"`
	Experience     int             `json:"experience" bson:"experience" validate:"min=0,max=80"`
	HourlyRate     float64         `json:"hourly_rate" bson:"hourly_rate" validate:"min=0"`
	Availability   []Availability  `json:"availability" bson:"availability" validate:"dive"`
	Portfolio      []PortfolioItem `json:"portfolio" bson:"portfolio" validate:"dive"`
	Location       Location        `json:"location" bson:"location"`
	Certifications []string        `json:"certifications" bson:"certifications" validate:"dive,max=200"`
	Rating         float64         `json:"rating" bson:"rating"`
	RatingSum      int             `json:"-" bson:"rating_sum"`
	ReviewCount    int             `json:"review_count" bson:"review_count"`
	Verified       bool            `json:"verified" bson:"verified"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" bson:"updated_at"`
}

// CraftsmanProfile is a craftsman with its owning user joined in.
type CraftsmanProfile struct {
	Craftsman `bson:",inline"`
	User      *UserSummary `json:"user,omitempty" bson:"user,omitempty"`
}

type CraftsmanUpdate struct {
	Bio            *string          `json:"bio,omitempty" validate:"omitempty,min=50,max=500"`
	Experience     *int             `json:"experience,omitempty" validate:"omitempty,min=0,max=80"`
	HourlyRate     *float64         `json:"hourly_rate,omitempty" validate:"omitempty,min=0"`
	Availability   *[]Availability  `json:"availability,omitempty" validate:"omitempty,dive"`
	Portfolio      *[]PortfolioItem `json:"portfolio,omitempty" validate:"omitempty,dive"`
	Certifications *[]string        `json:"certifications,omitempty" validate:"omitempty,dive,max=200"`
	Location       *Location        `json:"location,omitempty" validate:"omitempty"`
}

const (
	SortByRating     = "rating"
	SortByPriceLow   = "price-low"
	SortByPriceHigh  = "price-high"
	SortByExperience = "experience"
	SortByReviews    = "reviews"
	SortByNewest     = "newest"
)

// CraftsmanFilter carries every listing and search criterion. Zero values
// mean "no constraint".
type CraftsmanFilter struct {
	Query         string `validate:"max=100"`
	Specialty     string `validate:"omitempty,specialty"`
	City          string `validate:"max=100"`
	CityExact     bool
	MinRating     float64 `validate:"min=0,max=5"`
	MinRate       float64 `validate:"min=0"`
	MaxRate       float64 `validate:"min=0"`
	MinExperience int     `validate:"min=0"`
	Verified      *bool
	SortBy        string `validate:"omitempty,oneof=rating price-low price-high experience reviews newest"`
	Limit         int
	Offset        int64
}

type CraftsmanSearchResult struct {
	Craftsmen  []CraftsmanProfile `json:"craftsmen"`
	TotalCount int64              `json:"total_count"`
	Limit      int                `json:"limit"`
	Offset     int64              `json:"offset"`
	Cities     []string           `json:"cities,omitempty"`
}

type CraftsmanDetail struct {
	Craftsman CraftsmanProfile `json:"craftsman"`
	Reviews   []ReviewView     `json:"reviews"`
}

type VerifyRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}
