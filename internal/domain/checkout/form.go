package checkout

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

// OrderForm holds the shipping details collected after payment.
// Only presence is checked; email and address formats are not validated.
type OrderForm struct {
	Name    string `json:"name" form:"name" validate:"required" jsonschema:"title=Full name,minLength=1"`
	Email   string `json:"email" form:"email" validate:"required" jsonschema:"title=Email,minLength=1"`
	Address string `json:"address" form:"address" validate:"required" jsonschema:"title=Shipping address,minLength=1"`
}

// Normalize returns the form with every field trimmed.
func (f OrderForm) Normalize() OrderForm {
	return OrderForm{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Address: strings.TrimSpace(f.Address),
	}
}

// IsZero reports whether no field carries any input.
func (f OrderForm) IsZero() bool {
	return f == OrderForm{}
}

var formValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidateForm trims the form and checks that name, email and address are present.
// The returned error matches ErrMissingField and lists the missing fields.
func ValidateForm(ctx context.Context, form OrderForm) (OrderForm, error) {
	normalized := form.Normalize()
	err := formValidator.StructCtx(ctx, normalized)
	if err == nil {
		return normalized, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return normalized, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "validate order form")
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, strings.ToLower(fe.Field()))
	}
	sort.Strings(missing)

	return normalized, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
		platformerrors.ErrorTypeValidation, ErrMissingField.Message, nil, ErrMissingField.UUID,
		map[string]any{"missing": missing})
}
