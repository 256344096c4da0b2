package lib

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveImageURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test/a.png", ResolveImageURL("https://shop.test", "https://cdn.test/a.png"))
	assert.Equal(t, "https://shop.test/uploads/a.png", ResolveImageURL("https://shop.test/", "/uploads/a.png"))
	assert.Equal(t, "https://shop.test/uploads/a.png", ResolveImageURL("https://shop.test", "uploads/a.png"))
	assert.Equal(t, "", ResolveImageURL("https://shop.test", ""))
}

type statusBody struct {
	Status  string  `json:"status" validate:"required,oneof=pending confirmed"`
	Comment *string `json:"comment"`
}

func TestExtractAndValidateBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"status":"confirmed","comment":"ok"}`))
	body, err := ExtractAndValidateBody[statusBody](req)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", body.Status)
	require.NotNil(t, body.Comment)
	assert.Equal(t, "ok", *body.Comment)
}

func TestExtractAndValidateBody_ValidationError(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"status":"lost"}`))
	_, err := ExtractAndValidateBody[statusBody](req)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, "status", ve.Errors[0].Field)
	assert.Equal(t, "must be one of: pending confirmed", ve.Errors[0].Message)
}

func TestExtractAndValidateBody_UnknownField(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"status":"pending","extra":1}`))
	_, err := ExtractAndValidateBody[statusBody](req)
	assert.Error(t, err)
}
