package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRegisterNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normalized", "7376232CB156", "7376232CB156"},
		{"lowercase", "7376232cb156", "7376232CB156"},
		{"with separators", "7376-232 cb/156", "7376232CB156"},
		{"only separators", "--- ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRegisterNumber(tt.input))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"bare ten digits", "9876543210", "+919876543210", true},
		{"leading zero", "09876543210", "+919876543210", true},
		{"country prefix", "919876543210", "+919876543210", true},
		{"plus and spaces", "+91 98765 43210", "+919876543210", true},
		{"landline prefix", "0442345678", "", false},
		{"bad first digit", "5876543210", "", false},
		{"too short", "98765", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhone(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsInstitutionEmail(t *testing.T) {
	assert.True(t, IsInstitutionEmail("jane.doe@bitsathy.ac.in"))
	assert.True(t, IsInstitutionEmail("  jane.doe@bitsathy.ac.in "))
	assert.False(t, IsInstitutionEmail("jane.doe@gmail.com"))
	assert.False(t, IsInstitutionEmail(""))
}

func TestEnumChecks(t *testing.T) {
	assert.True(t, IsValidDepartment("COMPUTER TECHNOLOGY"))
	assert.False(t, IsValidDepartment("MECHANICAL ENGINEERING"))
	assert.Equal(t, "COMPUTER TECHNOLOGY", NormalizeDepartment(" computer technology "))

	assert.True(t, IsValidYear("II"))
	assert.False(t, IsValidYear("V"))
	assert.Equal(t, "II", NormalizeYear(" ii "))

	assert.True(t, IsValidGender("Female"))
	assert.False(t, IsValidGender("female"))
}
