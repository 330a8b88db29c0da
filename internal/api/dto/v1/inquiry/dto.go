package inquiry

import "time"

// SessionResponse is returned when the form is rendered
type SessionResponse struct {
	SessionID     string    `json:"session_id"`
	CSRFToken     string    `json:"csrf_token"`
	HoneypotField string    `json:"honeypot_field"`
	StartedAt     time.Time `json:"started_at"`
}

// SubmitRequest is the inquiry form as posted by the page. Form fields are
// decoded leniently; the pipeline reports missing or oversized values.
type SubmitRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Org       string `json:"org"`
	Title     string `json:"title"`
	Country   string `json:"country"`
	Notes     string `json:"notes"`

	Website        string `json:"website"`
	RecaptchaToken string `json:"recaptcha_token"`

	Language string `json:"language" binding:"max=64"`
	Timezone string `json:"timezone" binding:"max=64"`
	Screen   string `json:"screen" binding:"max=32"`
}

// Fields returns the form fields keyed by their wire names. Empty optional
// fields are left out.
func (r *SubmitRequest) Fields() map[string]any {
	fields := map[string]any{
		"firstName": r.FirstName,
		"lastName":  r.LastName,
		"email":     r.Email,
		"org":       r.Org,
		"country":   r.Country,
	}
	if r.Title != "" {
		fields["title"] = r.Title
	}
	if r.Notes != "" {
		fields["notes"] = r.Notes
	}
	return fields
}

// SubmitResponse is sent for an accepted inquiry
type SubmitResponse struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	ResetForm    bool   `json:"reset_form"`
	ResetCaptcha bool   `json:"reset_captcha"`
	ClearAfterMS int64  `json:"clear_after_ms"`
}

// RejectionDetails accompanies a failed submission
type RejectionDetails struct {
	Reasons           []string `json:"reasons,omitempty"`
	RetryAfterSeconds int      `json:"retry_after_seconds,omitempty"`
	ResetCaptcha      bool     `json:"reset_captcha,omitempty"`
}
