package req

import (
	"errors"
	"reflect"
	"strings"

	v10 "github.com/go-playground/validator/v10"
	"github.com/xy-planning-network/signpost"
)

// fieldTags are consulted in order for the name a field is reported under.
var fieldTags = []string{"json", "schema"}

type validator struct {
	valid *v10.Validate
}

// newValidator constructs a validator reporting fields by their payload names
// and understanding the "enum" rule.
func newValidator() validator {
	v := v10.New()
	v.RegisterValidation("enum", validateEnumerable)
	v.RegisterTagNameFunc(payloadName)

	return validator{v}
}

// payloadName is the name a payload uses for field.
func payloadName(field reflect.StructField) string {
	for _, tag := range fieldTags {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}

	return ""
}

// validate checks structPtr against its "validate" struct tags,
// returning every failure as ValidationErrors.
func (v validator) validate(structPtr any) error {
	err := v.valid.Struct(structPtr)

	var errs v10.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	out := make(ValidationErrors, 0, len(errs))
	for _, fe := range errs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}

		out = append(out, ValidationError{
			Field: field,
			Got:   fe.Value(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
			Type:  fe.Type().String(),
		})
	}

	return out
}

// validateEnumerable passes a valid Enumerable, or a non-empty slice of them.
func validateEnumerable(fl v10.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return validEnum(field)
	}

	if field.Len() == 0 {
		return false
	}

	for i := 0; i < field.Len(); i++ {
		if !validEnum(field.Index(i)) {
			return false
		}
	}

	return true
}

func validEnum(item reflect.Value) bool {
	enum, ok := item.Interface().(signpost.Enumerable)
	return ok && enum.Valid() == nil
}
