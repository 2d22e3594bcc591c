package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suteetoe/krist-shop/pkg/apperror"
)

type signUp struct {
	FirstName  string `json:"firstName" validate:"required,min=2,max=30"`
	Identifier string `json:"identifier" validate:"required,identifier"`
	Slug       string `json:"slug" validate:"omitempty,slug"`
	Color      string `json:"hexCode" validate:"omitempty,hexcolor_code"`
	Role       string `json:"role" validate:"omitempty,oneof=customer seller admin"`
}

func TestValidateMessages(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   signUp
		message string
	}{
		{"valid email", signUp{FirstName: "Ann", Identifier: "ann@example.com"}, ""},
		{"valid phone", signUp{FirstName: "Ann", Identifier: "+998901234567"}, ""},
		{"short name", signUp{FirstName: "A", Identifier: "ann@example.com"}, "firstName must be at least 2 characters long"},
		{"missing name", signUp{Identifier: "ann@example.com"}, "firstName is required"},
		{"bad identifier", signUp{FirstName: "Ann", Identifier: "ann@"}, "Invalid Identifier provided!"},
		{"bad slug", signUp{FirstName: "Ann", Identifier: "12345678", Slug: "Mens Fashion"}, "Slug can only contain lowercase letters, numbers, and hyphens (e.g., \"mens-fashion\")"},
		{"bad color", signUp{FirstName: "Ann", Identifier: "12345678", Color: "red"}, "hexCode must be a hex color like #ff0000"},
		{"bad role", signUp{FirstName: "Ann", Identifier: "12345678", Role: "root"}, "role must be one of [customer seller admin]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindBadRequest))
			assert.Equal(t, tt.message, err.(*apperror.Error).Message)
		})
	}
}

func TestIdentifierAndSlugHelpers(t *testing.T) {
	assert.True(t, IsIdentifier("user@example.com"))
	assert.True(t, IsIdentifier("901234567"))
	assert.False(t, IsIdentifier("12ab"))
	assert.False(t, IsIdentifier("   "))

	assert.True(t, IsSlug("mens-fashion"))
	assert.True(t, IsSlug("t-shirts-2024"))
	assert.False(t, IsSlug("-leading"))
	assert.False(t, IsSlug("double--dash"))
	assert.False(t, IsSlug("Upper"))
}
