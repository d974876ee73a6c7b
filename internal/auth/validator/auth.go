package validator

import (
	"hirfa/pkg/model"
	"hirfa/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type AuthValidator struct {
	validate *validator.Validate
}

func NewAuthValidator() *AuthValidator {
	return &AuthValidator{validate: validation.New()}
}

func (v *AuthValidator) ValidateRegister(req *model.RegisterRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return validation.Translate(err)
	}
	if req.Role != model.RoleCraftsman && req.Craftsman != nil {
		return validation.ValidationErrors{{Field: "craftsman", Message: "only allowed when role is craftsman"}}
	}
	return nil
}

func (v *AuthValidator) ValidateLogin(req *model.LoginRequest) error {
	return validation.Translate(v.validate.Struct(req))
}

func (v *AuthValidator) ValidateCreateUser(req *model.CreateUserRequest) error {
	return validation.Translate(v.validate.Struct(req))
}
