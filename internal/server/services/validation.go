package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("itemtype", func(fl validator.FieldLevel) bool {
		_, err := models.ParseItemType(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// validateRequest checks req's struct tags and returns a
// *common.ValidationError keyed by JSON field path.
func validateRequest(ctx context.Context, req any) error {
	err := validate.StructCtx(ctx, req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	ve := &common.ValidationError{}
	for _, fe := range fieldErrs {
		ve.Add(fieldPath(fe), fieldMessage(fe))
	}
	return ve
}

// fieldPath drops the top-level struct name from the namespace, so
// "CreateItemRequest.payload.iv" becomes "payload.iv".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "cannot be empty"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "itemtype":
		return "must be one of password, secure_note, credit_card, identity, document"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
