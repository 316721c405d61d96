package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate は全フォームで共有する validator インスタンス（スレッドセーフ）
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// エラーのフィールド名を JSON タグ名にする
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages maps "<field>.<tag>" to the message shown under the form field.
var fieldMessages = map[string]string{
	"name.min":     "Name must be at least 2 characters",
	"name.max":     "Name cannot exceed 100 characters",
	"email.email":  "Invalid email address",
	"email.max":    "Email cannot exceed 254 characters",
	"message.min":  "Message must be at least 10 characters",
	"message.max":  "Message cannot exceed 5000 characters",
	"password.min": "Password must be at least 6 characters",
	"password.max": "Password cannot exceed 72 characters",

	"package_cost.gte":   "Cost cannot be negative",
	"package_cost.lte":   "Cost cannot exceed $100,000",
	"time_spent.gte":     "Time cannot be negative",
	"time_spent.lte":     "Time cannot exceed 24 hours",
	"sales_price.gte":    "Sales price cannot be negative",
	"sales_price.lte":    "Sales price cannot exceed $1,000,000",
	"buyer.min":          "Buyer name must be at least 2 characters",
	"buyer.max":          "Buyer name cannot exceed 100 characters",
	"payment_method.min": "Payment method is required",
	"payment_method.max": "Payment method cannot exceed 50 characters",
}

// errorToString は FieldError を表示用メッセージに変換する
func errorToString(e validator.FieldError) string {
	if msg, ok := fieldMessages[e.Field()+"."+e.Tag()]; ok {
		return msg
	}
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("Cannot exceed %s characters", e.Param())
	case "email":
		return "Invalid email address"
	default:
		return fmt.Sprintf("%s is not valid", e.Field())
	}
}

// validateStruct runs the struct's validate tags and converts failures into a
// *ValidationError. Only the first failure per field is kept.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = errorToString(fe)
	}
	return out
}
