// Package firebase resolves the public Firebase identifiers used by the
// inquiry form and builds the Admin SDK clients from them.
package firebase

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfigIncomplete is returned when the resolved configuration is missing
// one of the required identifiers.
var ErrConfigIncomplete = errors.New("firebase configuration incomplete")

// UnavailableMessage is what users see when the configuration cannot be loaded.
const UnavailableMessage = "Unable to initialize application. Please contact support."

// Config is the public, credential-free Firebase web configuration.
// It is immutable once returned by the Loader.
type Config struct {
	APIKey            string `json:"apiKey" env:"FIREBASE_API_KEY"`
	AuthDomain        string `json:"authDomain" env:"FIREBASE_AUTH_DOMAIN"`
	DatabaseURL       string `json:"databaseURL,omitempty" env:"FIREBASE_DATABASE_URL"`
	ProjectID         string `json:"projectId" env:"FIREBASE_PROJECT_ID"`
	StorageBucket     string `json:"storageBucket" env:"FIREBASE_STORAGE_BUCKET"`
	MessagingSenderID string `json:"messagingSenderId" env:"FIREBASE_MESSAGING_SENDER_ID"`
	AppID             string `json:"appId" env:"FIREBASE_APP_ID"`
	MeasurementID     string `json:"measurementId,omitempty" env:"FIREBASE_MEASUREMENT_ID"`
}

// requiredFields lists the identifiers that must be present, in report order.
func (c *Config) requiredFields() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"apiKey", c.APIKey},
		{"authDomain", c.AuthDomain},
		{"projectId", c.ProjectID},
		{"storageBucket", c.StorageBucket},
		{"messagingSenderId", c.MessagingSenderID},
		{"appId", c.AppID},
	}
}

// Missing returns the names of required identifiers that are empty.
func (c *Config) Missing() []string {
	var missing []string
	for _, f := range c.requiredFields() {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Validate returns ErrConfigIncomplete naming every missing identifier.
func (c *Config) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfigIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// sanitized returns a trimmed copy. Optional fields that trim to empty stay
// empty and are omitted from JSON.
func (c Config) sanitized() *Config {
	return &Config{
		APIKey:            strings.TrimSpace(c.APIKey),
		AuthDomain:        strings.TrimSpace(c.AuthDomain),
		DatabaseURL:       strings.TrimSpace(c.DatabaseURL),
		ProjectID:         strings.TrimSpace(c.ProjectID),
		StorageBucket:     strings.TrimSpace(c.StorageBucket),
		MessagingSenderID: strings.TrimSpace(c.MessagingSenderID),
		AppID:             strings.TrimSpace(c.AppID),
		MeasurementID:     strings.TrimSpace(c.MeasurementID),
	}
}

// mergeOver fills every empty field of c from base.
func (c Config) mergeOver(base Config) Config {
	pick := func(v, fallback string) string {
		if strings.TrimSpace(v) != "" {
			return v
		}
		return fallback
	}
	return Config{
		APIKey:            pick(c.APIKey, base.APIKey),
		AuthDomain:        pick(c.AuthDomain, base.AuthDomain),
		DatabaseURL:       pick(c.DatabaseURL, base.DatabaseURL),
		ProjectID:         pick(c.ProjectID, base.ProjectID),
		StorageBucket:     pick(c.StorageBucket, base.StorageBucket),
		MessagingSenderID: pick(c.MessagingSenderID, base.MessagingSenderID),
		AppID:             pick(c.AppID, base.AppID),
		MeasurementID:     pick(c.MeasurementID, base.MeasurementID),
	}
}
