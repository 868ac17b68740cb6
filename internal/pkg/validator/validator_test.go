package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

var validate = validator.New()

type sample struct {
	Type  string `validate:"required,oneof=computer room"`
	Email string `validate:"omitempty,email"`
}

func TestFields(t *testing.T) {
	assert.Nil(t, Fields(validate.Struct(sample{Type: "room"})))
	assert.Nil(t, Fields(assert.AnError))

	errs := Fields(validate.Struct(sample{Type: "desk", Email: "nope"}))
	assert.Equal(t, map[string]string{"Type": "oneof", "Email": "email"}, errs)
}

func TestMessage(t *testing.T) {
	err := validate.Struct(sample{})
	assert.Equal(t, "Type is required", Message(err))
	assert.Equal(t, "invalid payload", Message(assert.AnError))
}
