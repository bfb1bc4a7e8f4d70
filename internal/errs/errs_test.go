package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"productapi/internal/errs"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, errs.KindNotFound, errs.KindOf(errs.NotFound("find product", "1")))
	assert.Equal(t, errs.KindValidation, errs.KindOf(errs.Validation("create product")))
	assert.Equal(t, errs.KindGateway, errs.KindOf(errs.Gateway("create product", errors.New("boom"))))
	assert.Equal(t, errs.KindGateway, errs.KindOf(errors.New("plain")))

	wrapped := fmt.Errorf("handler: %w", errs.NotFound("find product", "1"))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(wrapped))
	assert.True(t, errs.IsNotFound(wrapped))
	assert.False(t, errs.IsNotFound(nil))
}

func TestError_MessagesAndUnwrap(t *testing.T) {
	verr := errs.Validation("create product",
		errs.FieldViolation{Field: "name", Message: "Product name is required"},
		errs.FieldViolation{Field: "price", Message: "Product price is required"},
	)
	assert.Equal(t, []string{"Product name is required", "Product price is required"}, verr.Messages())
	assert.Contains(t, verr.Error(), "validation failed")

	cause := errors.New("socket closed")
	gerr := errs.Gateway("find all products", cause)
	assert.ErrorIs(t, gerr, cause)
	assert.Equal(t, "find all products: socket closed", gerr.Error())
	assert.Equal(t, "gateway", errs.KindGateway.String())
}
