// Package validator checks request parameters and configuration before
// anything is sent over the wire.
package validator

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
	"github.com/guregu/null/v6"

	"github.com/beanbocchi/deta/pkg/model"
)

var (
	once     sync.Once
	validate *CustomValidator
)

type CustomValidator struct {
	trans     ut.Translator
	validator *validator.Validate
}

func New() (*CustomValidator, error) {
	en := en.New()
	uni := ut.New(en, en)
	validate := validator.New(
		validator.WithRequiredStructEnabled(),
	)

	trans, _ := uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register translations: %w", err)
	}

	// Optional parameters are null.* types; validate their underlying value.
	validate.RegisterCustomTypeFunc(
		ParseNullable,
		null.Bool{},
		null.Float{},
		null.Int32{},
		null.Int64{},
		null.String{},
		null.Time{},
		uuid.NullUUID{},
	)

	return &CustomValidator{
		trans:     trans,
		validator: validate,
	}, nil
}

// Validate checks a struct and returns a model.ErrValidation listing every
// failed field.
func (cv *CustomValidator) Validate(i any) error {
	return cv.translate(cv.validator.Struct(i))
}

// ValidateVar checks a single value against a tag, e.g. "required,url".
func (cv *CustomValidator) ValidateVar(name string, v any, tag string) error {
	err := cv.validator.Var(v, tag)
	if valErr, ok := err.(validator.ValidationErrors); ok {
		msgs := make([]string, 0, len(valErr))
		for _, fe := range valErr {
			msgs = append(msgs, name+fe.Translate(cv.trans))
		}
		text, mErr := sonic.ConfigStd.MarshalToString(msgs)
		if mErr != nil {
			return valErr
		}
		return model.ErrValidation.Fmt(text)
	}
	return err
}

func (cv *CustomValidator) translate(err error) error {
	if valErr, ok := err.(validator.ValidationErrors); ok {
		text, err := sonic.ConfigStd.MarshalToString(valErr.Translate(cv.trans))
		if err != nil {
			// Fallback to the original validation error if JSON marshaling fails
			return valErr
		}

		return model.ErrValidation.Fmt(text)
	}

	return err
}

type Nullable interface {
	driver.Valuer
}

// Workaround for omitnil not working with "untyped nil"
// https://github.com/go-playground/validator/issues/1209#issuecomment-1892359649
var nilValue *struct{}

// ParseNullable implements validator.CustomTypeFunc
func ParseNullable(field reflect.Value) any {
	if nullValue, ok := field.Interface().(Nullable); ok {
		if val, err := nullValue.Value(); err == nil {
			if val == nil {
				return nilValue
			}
			return val
		}
	}

	return nil
}

func instance() *CustomValidator {
	once.Do(func() {
		var err error
		validate, err = New()
		if err != nil {
			panic(fmt.Sprintf("failed to create validator: %v", err))
		}
	})
	return validate
}

// Validate validates a struct with the shared validator.
func Validate(i any) error {
	return instance().Validate(i)
}

// ValidateVar validates a single value with the shared validator.
func ValidateVar(name string, v any, tag string) error {
	return instance().ValidateVar(name, v, tag)
}
