package models

import "time"

// Inquiry is the document stored for an accepted submission. CreatedAt is
// left zero so the backend assigns its own timestamp.
type Inquiry struct {
	FirstName string `firestore:"firstName" json:"firstName"`
	LastName  string `firestore:"lastName" json:"lastName"`
	Email     string `firestore:"email" json:"email"`
	Org       string `firestore:"org" json:"org"`
	Title     string `firestore:"title,omitempty" json:"title,omitempty"`
	Country   string `firestore:"country" json:"country"`
	Notes     string `firestore:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt         time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	UserAgent         string    `firestore:"userAgent" json:"userAgent"`
	Timestamp         int64     `firestore:"timestamp" json:"timestamp"`
	ClientFingerprint string    `firestore:"clientFingerprint" json:"clientFingerprint"`
}

// NewInquiry copies the known string fields out of a sanitized field map.
func NewInquiry(fields map[string]any) *Inquiry {
	str := func(key string) string {
		s, _ := fields[key].(string)
		return s
	}
	return &Inquiry{
		FirstName: str("firstName"),
		LastName:  str("lastName"),
		Email:     str("email"),
		Org:       str("org"),
		Title:     str("title"),
		Country:   str("country"),
		Notes:     str("notes"),
	}
}
