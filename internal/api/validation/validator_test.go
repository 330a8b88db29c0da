package validation

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPayload() map[string]any {
	return map[string]any{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@example.com",
		"org":       "ACME",
		"country":   "US",
	}
}

func TestValidate_ValidPayload(t *testing.T) {
	res := New().Validate(validPayload())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Reasons)
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	for _, field := range []string{"firstName", "lastName", "email", "org", "country"} {
		t.Run(field, func(t *testing.T) {
			for name, value := range map[string]any{
				"absent":     nil,
				"blank":      "   ",
				"non-string": 42,
			} {
				p := validPayload()
				if name == "absent" {
					delete(p, field)
				} else {
					p[field] = value
				}

				res := New().Validate(p)
				assert.False(t, res.Valid, name)
				assert.Contains(t, res.Reasons, "Missing or invalid field: "+field, name)
			}
		})
	}
}

func TestValidate_OptionalFieldsMayBeAbsent(t *testing.T) {
	p := validPayload()
	p["title"] = ""
	res := New().Validate(p)
	assert.True(t, res.Valid)
}

func TestValidate_EmailFormat(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"jane@example.com", true},
		{"j.doe+tag@mail.example.co.uk", true},
		{"jane", false},
		{"jane@example", false},
		{"@example.com", false},
		{"jane@.com", false},
		{"x@a.b.c", true},
		{"ja ne@example.com", false},
		{"jane@@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			p := validPayload()
			p["email"] = tt.email
			res := New().Validate(p)
			assert.Equal(t, tt.want, !contains(res.Reasons, "Invalid email format"))
		})
	}
}

func TestValidate_MaxLengths(t *testing.T) {
	for _, f := range InquiryFields {
		t.Run(f.Name, func(t *testing.T) {
			reason := f.Name + " exceeds maximum length of " + strconv.Itoa(f.MaxLength)

			atMax := validPayload()
			atMax[f.Name] = fill(f.Name, f.MaxLength)
			res := New().Validate(atMax)
			assert.NotContains(t, res.Reasons, reason)

			over := validPayload()
			over[f.Name] = fill(f.Name, f.MaxLength+1)
			res = New().Validate(over)
			assert.False(t, res.Valid)
			assert.Contains(t, res.Reasons, reason)
		})
	}
}

func TestValidate_LengthCountsCharactersNotBytes(t *testing.T) {
	p := validPayload()
	p["firstName"] = strings.Repeat("é", 100)
	assert.True(t, New().Validate(p).Valid)
}

func TestValidate_ReasonOrdering(t *testing.T) {
	p := map[string]any{
		"firstName": strings.Repeat("a", 101),
		"email":     "not-an-email",
		"org":       "ACME",
		"notes":     strings.Repeat("n", 5001),
	}

	res := New().Validate(p)

	assert.Equal(t, []string{
		"Missing or invalid field: lastName",
		"Missing or invalid field: country",
		"Invalid email format",
		"firstName exceeds maximum length of 100",
		"notes exceeds maximum length of 5000",
	}, res.Reasons)
}

// fill returns a string of length n that stays a valid email for the email field.
func fill(field string, n int) string {
	if field == "email" {
		suffix := "@example.com"
		return strings.Repeat("a", n-len(suffix)) + suffix
	}
	return strings.Repeat("x", n)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
