// infrastructure/firebase_verifier.go
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/vitovidale/ai-animator/domain"
)

// NewFirebaseApp initializes the Admin SDK once for the process. The
// credentials file is optional; without it the SDK falls back to
// application default credentials.
func NewFirebaseApp(ctx context.Context, projectID, credentialsFile string) (*firebase.App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err == nil {
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading firebase credentials: %w", err)
		}
	}
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	return app, nil
}

// IDTokenVerifier is the slice of *auth.Client the verifier needs.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type FirebaseTokenVerifier struct {
	Tokens IDTokenVerifier
}

func NewFirebaseTokenVerifier(ctx context.Context, app *firebase.App) (*FirebaseTokenVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase auth: %w", err)
	}
	return &FirebaseTokenVerifier{Tokens: client}, nil
}

func (v *FirebaseTokenVerifier) Verify(ctx context.Context, idToken string) (*domain.Identity, error) {
	token, err := v.Tokens.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrForbidden, err)
	}
	identity := &domain.Identity{UID: token.UID, Provider: "firebase"}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if token.Firebase.SignInProvider != "" {
		identity.Provider = "firebase/" + token.Firebase.SignInProvider
	}
	return identity, nil
}
