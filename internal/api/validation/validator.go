package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailRegex is a deliberately permissive shape check (local@domain.tld),
// not an RFC 5322 parser.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Field describes one inquiry form field.
type Field struct {
	Name      string
	Required  bool
	MaxLength int
}

// InquiryFields lists the form fields in declaration order. Reasons are
// reported in this order.
var InquiryFields = []Field{
	{Name: "firstName", Required: true, MaxLength: 100},
	{Name: "lastName", Required: true, MaxLength: 100},
	{Name: "email", Required: true, MaxLength: 255},
	{Name: "org", Required: true, MaxLength: 200},
	{Name: "title", MaxLength: 200},
	{Name: "country", Required: true, MaxLength: 200},
	{Name: "notes", MaxLength: 5000},
}

// Result is the outcome of a validation pass.
type Result struct {
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons,omitempty"`
}

// Validator checks inquiry payloads.
type Validator struct {
	validate *validator.Validate
	fields   []Field
}

// New creates a validator for InquiryFields.
func New() *Validator {
	v := validator.New()
	RegisterValidators(v)
	return &Validator{validate: v, fields: InquiryFields}
}

// RegisterValidators registers custom validators
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("inquiry_email", validateEmail)
}

// validateEmail checks if the email has a local@domain.tld shape
func validateEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

// Validate reports every violated rule: required fields first, then the
// email format, then length limits. It never stops at the first failure.
func (v *Validator) Validate(payload map[string]any) Result {
	var reasons []string

	for _, f := range v.fields {
		if !f.Required {
			continue
		}
		s, ok := payload[f.Name].(string)
		if !ok || v.validate.Var(strings.TrimSpace(s), "required") != nil {
			reasons = append(reasons, fmt.Sprintf("Missing or invalid field: %s", f.Name))
		}
	}

	if email, ok := payload["email"].(string); ok && strings.TrimSpace(email) != "" {
		if v.validate.Var(email, "inquiry_email") != nil {
			reasons = append(reasons, "Invalid email format")
		}
	}

	for _, f := range v.fields {
		if f.MaxLength <= 0 {
			continue
		}
		s, ok := payload[f.Name].(string)
		if !ok {
			continue
		}
		if v.validate.Var(s, fmt.Sprintf("max=%d", f.MaxLength)) != nil {
			reasons = append(reasons, fmt.Sprintf("%s exceeds maximum length of %d", f.Name, f.MaxLength))
		}
	}

	return Result{Valid: len(reasons) == 0, Reasons: reasons}
}
