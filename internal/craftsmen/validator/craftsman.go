package validator

import (
	"hirfa/pkg/model"
	"hirfa/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type CraftsmanValidator struct {
	validate *validator.Validate
}

func NewCraftsmanValidator() *CraftsmanValidator {
	return &CraftsmanValidator{validate: validation.New()}
}

func (v *CraftsmanValidator) ValidateFilter(filter *model.CraftsmanFilter) error {
	if err := v.validate.Struct(filter); err != nil {
		return validation.Translate(err)
	}
	if filter.MinRate > 0 && filter.MaxRate > 0 && filter.MinRate > filter.MaxRate {
		return validation.ValidationErrors{{Field: "min_rate", Message: "must not exceed max_rate"}}
	}
	return nil
}

func (v *CraftsmanValidator) ValidateUpdate(update *model.CraftsmanUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		return validation.Translate(err)
	}

	if update.Availability == nil {
		return nil
	}
	var errs validation.ValidationErrors
	for _, slot := range *update.Availability {
		if slot.StartTime >= slot.EndTime {
			errs = append(errs, validation.ValidationError{
				Field:   "availability",
				Message: slot.Day + " must start before it ends",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
