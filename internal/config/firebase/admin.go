package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/osa911/waitlist/internal/logging"
)

// Admin bundles the Firebase Admin app and the Firestore client opened from it.
type Admin struct {
	app       *firebase.App
	firestore *firestore.Client
}

// InitializeAdmin initializes the Firebase Admin SDK for the resolved project.
// credentialsFile is optional; without it application default credentials
// (or FIRESTORE_EMULATOR_HOST) are used.
func InitializeAdmin(ctx context.Context, cfg *Config, credentialsFile string) (*Admin, error) {
	logger := logging.GetLogger()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		logger.Info("[Firebase] Using service account key %s", credentialsFile)
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
		DatabaseURL:   cfg.DatabaseURL,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	logger.Info("[Firebase] App initialized: %s", cfg.ProjectID)

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}
	logger.Info("[Firebase] Firestore ready")

	return &Admin{app: app, firestore: client}, nil
}

// Firestore returns the Firestore client.
func (a *Admin) Firestore() *firestore.Client {
	return a.firestore
}
