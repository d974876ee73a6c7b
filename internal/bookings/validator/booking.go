package validator

import (
	"time"

	"hirfa/pkg/locale"
	"hirfa/pkg/model"
	"hirfa/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewBookingValidator() *BookingValidator {
	return &BookingValidator{
		validate: validation.New(),
		now:      time.Now,
	}
}

// ValidateRequest checks a new booking and returns its start time in the
// market timezone.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) (time.Time, error) {
	if err := v.validate.Struct(req); err != nil {
		return time.Time{}, validation.Translate(err)
	}

	scheduledAt, err := locale.ScheduledAt(req.ScheduledDate, req.ScheduledTime, locale.Market())
	if err != nil {
		return time.Time{}, validation.ValidationErrors{{Field: "scheduled_date", Message: "must be a valid date and time"}}
	}
	if scheduledAt.Before(v.now()) {
		return time.Time{}, validation.ValidationErrors{{Field: "scheduled_date", Message: "must be in the future"}}
	}
	return scheduledAt, nil
}

func (v *BookingValidator) ValidateAction(action *model.BookingAction) error {
	return validation.Translate(v.validate.Struct(action))
}
