// Package validate checks form input before any remote call is made.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"firelist/internal/service"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Blank means whitespace-only, the same check the input fields apply.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// TaskForm is the task input field.
type TaskForm struct {
	Text string `validate:"notblank"`
}

// ProductForm holds the three product input fields as typed by the user.
type ProductForm struct {
	Name  string `validate:"notblank"`
	Type  string `validate:"notblank"`
	Price string `validate:"notblank"`
}

var (
	// ErrBlank is returned when a required field is empty or whitespace.
	ErrBlank = errors.New("blank field")

	// ErrInvalidPrice is returned when the price field is not a number.
	ErrInvalidPrice = errors.New("price must be a number")
)

// Task reports whether the task input is usable.
func Task(f TaskForm) error {
	return blank(validate.Struct(f))
}

// Product validates the form and converts it to product fields.
// Blank fields are reported before the price is parsed.
func Product(f ProductForm) (service.ProductFields, error) {
	if err := validate.Struct(f); err != nil {
		return service.ProductFields{}, blank(err)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return service.ProductFields{}, fmt.Errorf("%w: %s", ErrInvalidPrice, f.Price)
	}

	return service.ProductFields{
		Name:  f.Name,
		Type:  f.Type,
		Price: price,
	}, nil
}

// blank wraps validator errors for whitespace-only fields as ErrBlank,
// naming the fields in lower case.
func blank(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var fields []string
	for _, fe := range verrs {
		if fe.Tag() == "notblank" {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
	}
	if len(fields) == 0 {
		return err
	}
	return fmt.Errorf("%w: %s", ErrBlank, strings.Join(fields, ", "))
}
