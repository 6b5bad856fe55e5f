package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestMenuItemRequestAllowsFreeItems(t *testing.T) {
	v := validator.New()

	req := MenuItemRequest{CategoryID: 1, Name: "Tap Water", Price: 0}
	assert.NoError(t, v.Struct(req))

	req.Price = -500
	assert.Error(t, v.Struct(req))
}
