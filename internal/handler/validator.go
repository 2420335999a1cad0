package handler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator plugs go-playground/validator into echo's c.Validate
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// validationMessage renders the first failing field for API clients
func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Requête invalide"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Le champ '%s' est requis.", fe.Field())
	case "email":
		return fmt.Sprintf("Le champ '%s' doit être un email valide.", fe.Field())
	case "numeric":
		return fmt.Sprintf("Le champ '%s' doit être numérique.", fe.Field())
	case "len":
		return fmt.Sprintf("Le champ '%s' doit contenir %s caractères.", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("Le champ '%s' doit valoir l'une des valeurs: %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Le champ '%s' est invalide.", fe.Field())
	}
}
