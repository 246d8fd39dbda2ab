package serverutils

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required,min=2"`
}

func TestValidateRequestPasses(t *testing.T) {
	err := ValidateRequest(sampleRequest{Email: "a@b.com", Name: "ok"})
	assert.NoError(t, err)
}

func TestValidateRequestReturnsBadRequest(t *testing.T) {
	err := ValidateRequest(sampleRequest{Email: "not-an-email", Name: ""})
	require.Error(t, err)

	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusBadRequest, fiberErr.Code)
	assert.Contains(t, fiberErr.Message, "Email")
	assert.Contains(t, fiberErr.Message, "Name")
}
