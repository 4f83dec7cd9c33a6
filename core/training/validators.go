package training

import (
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ecurie/core"
)

var (
	weekdayTag  = "weekday"
	weekdayText = "days must be weekday names (monday..sunday)"

	clockTimeTag  = "clocktime"
	clockTimeText = "time must be a 24-hour HH:MM time"

	performanceTag  = "performance"
	performanceText = "performance must be one of excellent, good, satisfactory or needs_improvement"
)

// InitValidators registers the training validations. core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterCustomTypeFunc(nullStringValue, null.String{})

	_ = validate.RegisterValidation(weekdayTag, func(fl validator.FieldLevel) bool {
		return IsWeekday(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText)

	_ = validate.RegisterValidation(clockTimeTag, func(fl validator.FieldLevel) bool {
		return IsClockTime(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, clockTimeTag, clockTimeText)

	_ = validate.RegisterValidation(performanceTag, func(fl validator.FieldLevel) bool {
		return IsPerformance(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, performanceTag, performanceText)
}

// nullStringValue lets tags apply to the wrapped string; unset values are omitted.
func nullStringValue(field reflect.Value) interface{} {
	if ns, ok := field.Interface().(null.String); ok && ns.Valid {
		return ns.String
	}
	return nil
}
