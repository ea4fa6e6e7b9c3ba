package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	phone10Regex = regexp.MustCompile(`^\d{10}$`)
	clockRegex   = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("phone10", isPhone10); err != nil {
		return err
	}
	if err := v.RegisterValidation("hhmm", isClock); err != nil {
		return err
	}
	if err := v.RegisterValidation("notblank", isNotBlank); err != nil {
		return err
	}
	return nil
}

// isPhone10 - контактный телефон ровно из 10 цифр
func isPhone10(fl validator.FieldLevel) bool {
	return phone10Regex.MatchString(fl.Field().String())
}

// isClock - время в формате "HH:MM"
func isClock(fl validator.FieldLevel) bool {
	return clockRegex.MatchString(fl.Field().String())
}

func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
