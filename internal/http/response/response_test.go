package response_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/library-management/internal/http/response"
)

func TestStatusOKWithData(t *testing.T) {
	resp := response.StatusOKWithData(map[string]any{"count": 3})

	assert.Equal(t, response.StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, map[string]any{"count": 3}, resp.Data)
}

func TestError(t *testing.T) {
	resp := response.Error("book not found")

	assert.Equal(t, response.StatusError, resp.Status)
	assert.Equal(t, "book not found", resp.Error)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Username string `validate:"required,min=3,max=50"`
		Email    string `validate:"omitempty,email"`
		BookID   int64  `validate:"required,gt=0"`
		Days     int    `validate:"omitempty,gte=1,lte=30"`
	}

	validate := validator.New()

	tests := []struct {
		name     string
		input    payload
		expected string
	}{
		{
			name:     "обязательное поле отсутствует",
			input:    payload{Username: "reader"},
			expected: "field BookID is a required field",
		},
		{
			name:     "слишком короткое имя",
			input:    payload{Username: "ab", BookID: 1},
			expected: "field Username must be at least 3 characters long",
		},
		{
			name:     "некорректный email",
			input:    payload{Username: "reader", Email: "not-an-email", BookID: 1},
			expected: "field Email must be a valid email address",
		},
		{
			name:     "значение выше предела",
			input:    payload{Username: "reader", BookID: 1, Days: 99},
			expected: "field Days must be 30 or less",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.input)
			require.Error(t, err)

			resp := response.ValidationError(err.(validator.ValidationErrors))

			assert.Equal(t, response.StatusError, resp.Status)
			assert.Contains(t, resp.Error, tt.expected)
		})
	}
}

func TestValidationError_JoinsMultiple(t *testing.T) {
	type payload struct {
		Username string `validate:"required"`
		Password string `validate:"required"`
	}

	err := validator.New().Struct(payload{})
	require.Error(t, err)

	resp := response.ValidationError(err.(validator.ValidationErrors))

	assert.Contains(t, resp.Error, "field Username is a required field")
	assert.Contains(t, resp.Error, "field Password is a required field")
	assert.Contains(t, resp.Error, ", ")
}
