package validation

import (
	"reflect"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
)

// registerNullTypes учит валидатор "смотреть внутрь" null-типов.
// Невалидное значение отдается как nil, чтобы сработал `omitempty`.
func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(nullValue, null.String{}, null.Int{}, null.Uint64{}, null.Time{})
}

func nullValue(field reflect.Value) interface{} {
	switch val := field.Interface().(type) {
	case null.String:
		if val.Valid {
			return val.String
		}
	case null.Int:
		if val.Valid {
			return val.Int
		}
	case null.Uint64:
		if val.Valid {
			return val.Uint64
		}
	case null.Time:
		if val.Valid {
			return val.Time
		}
	}
	return nil
}
