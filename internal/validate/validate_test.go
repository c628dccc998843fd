package validate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firelist/internal/service"
	"firelist/internal/validate"
)

func TestTask(t *testing.T) {
	require.NoError(t, validate.Task(validate.TaskForm{Text: "Buy milk"}))

	for _, text := range []string{"", "   ", "\t\n"} {
		err := validate.Task(validate.TaskForm{Text: text})
		assert.ErrorIs(t, err, validate.ErrBlank, "text %q", text)
	}
}

func TestProduct_Valid(t *testing.T) {
	fields, err := validate.Product(validate.ProductForm{Name: "Pho", Type: "Food", Price: " 45000.5 "})
	require.NoError(t, err)
	assert.Equal(t, service.ProductFields{Name: "Pho", Type: "Food", Price: 45000.5}, fields)
}

func TestProduct_BlankFields(t *testing.T) {
	_, err := validate.Product(validate.ProductForm{Name: "Pho", Type: " ", Price: ""})
	require.ErrorIs(t, err, validate.ErrBlank)
	assert.Equal(t, "blank field: type, price", err.Error())
}

func TestProduct_InvalidPrice(t *testing.T) {
	_, err := validate.Product(validate.ProductForm{Name: "Pho", Type: "Food", Price: "cheap"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, validate.ErrInvalidPrice))
	assert.False(t, errors.Is(err, validate.ErrBlank))
}

func TestProduct_NonFinitePrice(t *testing.T) {
	for _, price := range []string{"NaN", "Inf", "-inf"} {
		_, err := validate.Product(validate.ProductForm{Name: "Pho", Type: "Food", Price: price})
		assert.ErrorIs(t, err, validate.ErrInvalidPrice, price)
	}
}
