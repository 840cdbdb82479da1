package validation

import (
	"regexp"
	"strings"
)

// Institution-wide field rules. These apply on every write path regardless of
// the backing store.
var (
	// EmailDomain is the required suffix for institutional email addresses.
	EmailDomain = "@bitsathy.ac.in"

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	NonAlphanumeric *regexp.Regexp
	NonDigit        *regexp.Regexp
}{
	NonAlphanumeric: regexp.MustCompile(`[^a-zA-Z0-9]`),
	NonDigit:        regexp.MustCompile(`\D`),
}

// Departments lists the departments students may belong to.
var Departments = []string{
	"COMPUTER SCIENCE ENGINEERING",
	"COMPUTER SCIENCE AND BUSINESS SYSTEMS",
	"ARTIFICIAL INTELLIGENCE AND MACHINE LEARNING",
	"ARTIFICIAL INTELLIGENCE AND DATA SCIENCE",
	"COMPUTER TECHNOLOGY",
	"COMPUTER SCIENCE AND DESIGN",
}

// Years lists the academic years a student may be in.
var Years = []string{"I", "II", "III", "IV"}

// Genders lists the accepted gender values.
var Genders = []string{"Male", "Female"}

// NormalizeRegisterNumber strips non-alphanumeric characters and uppercases
// the result. An empty result means the input was not a usable register number.
func NormalizeRegisterNumber(raw string) string {
	return strings.ToUpper(CompiledPatterns.NonAlphanumeric.ReplaceAllString(raw, ""))
}

// NormalizeName uppercases and trims a student name.
func NormalizeName(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsValidName checks name length bounds after normalization.
func IsValidName(name string) bool {
	return len(name) >= NameMinLength && len(name) <= NameMaxLength
}

// NormalizeDepartment trims and uppercases a department name.
func NormalizeDepartment(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsValidDepartment reports whether the department is one of the known set.
func IsValidDepartment(department string) bool {
	for _, d := range Departments {
		if d == department {
			return true
		}
	}
	return false
}

// NormalizeYear trims and uppercases an academic year value.
func NormalizeYear(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsValidYear reports whether the year is one of I..IV.
func IsValidYear(year string) bool {
	for _, y := range Years {
		if y == year {
			return true
		}
	}
	return false
}

// IsValidGender reports whether the gender is an accepted value.
func IsValidGender(gender string) bool {
	for _, g := range Genders {
		if g == gender {
			return true
		}
	}
	return false
}

// IsInstitutionEmail reports whether the email carries the institution domain.
func IsInstitutionEmail(email string) bool {
	return strings.HasSuffix(strings.TrimSpace(email), EmailDomain)
}

// NormalizePhone normalizes an Indian mobile number to +91XXXXXXXXXX form.
// Accepted inputs after stripping non-digits: a bare 10-digit number, an
// 11-digit number with a leading 0, or a 12-digit number with a 91 country
// prefix. The 10-digit core must start with 6-9.
func NormalizePhone(raw string) (string, bool) {
	digits := CompiledPatterns.NonDigit.ReplaceAllString(raw, "")

	var core string
	switch {
	case len(digits) == 10:
		core = digits
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		core = digits[1:]
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		core = digits[2:]
	default:
		return "", false
	}

	if core[0] < '6' || core[0] > '9' {
		return "", false
	}

	return "+91" + core, true
}
