package inputval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidNationalID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"12345678901", true},
		{"00000000000", true},
		{"", false},
		{"1234567890", false},
		{"123456789012", false},
		{"1234567890a", false},
		{" 2345678901", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidNationalID(tt.id))
		})
	}
}

type sample struct {
	NationalID string `json:"national_id" validate:"required,nationalid"`
	Week       string `json:"week" validate:"omitempty,weeklabel"`
	Name       string `json:"name" validate:"notblank"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(sample{NationalID: "12345678901", Week: "2026-W03", Name: "Ayşe"})
	assert.NoError(t, err)

	// empty week is allowed by omitempty
	err = Struct(sample{NationalID: "12345678901", Name: "Ayşe"})
	assert.NoError(t, err)
}

func TestStruct_ReportsFieldsByJSONName(t *testing.T) {
	err := Struct(sample{NationalID: "123", Week: "2026-3", Name: "  "})
	require.Error(t, err)

	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
	assert.Contains(t, verrs["national_id"], "national ID")
	assert.Contains(t, verrs["week"], "2026-W03")
	assert.Contains(t, verrs["name"], "blank")
}

func TestStruct_RequiredUsesDefaultTranslation(t *testing.T) {
	err := Struct(sample{Name: "x"})
	require.Error(t, err)
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs["national_id"], "required")
}
