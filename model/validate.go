package model

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/theplant/helix"
)

// TagName is the struct tag holding validation rules, shared with gin's binding.
const TagName = "binding"

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// RegisterValidations installs the custom rules used by the entity tags.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("enum", isEnumValue)
}

// isEnumValue reports whether a string-backed enum holds one of its declared names.
// Matching is exact so stored values stay canonical.
func isEnumValue(fl validator.FieldLevel) bool {
	e, ok := fl.Field().Interface().(helix.Enum)
	if !ok {
		return false
	}
	return lo.Contains(e.EnumValues(), fl.Field().String())
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName(TagName)
		if err := RegisterValidations(validate); err != nil {
			panic(err)
		}
	})
	return validate
}

// Validate checks entity against its binding tags.
func Validate(entity any) error {
	return validatorInstance().Struct(entity)
}
