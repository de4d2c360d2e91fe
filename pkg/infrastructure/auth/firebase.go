// Package auth implements email/password accounts on Firebase Authentication.
// Account creation, token verification and revocation go through the Admin
// SDK; password sign-in uses the Identity Toolkit REST API because the Admin
// SDK cannot check passwords.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"

	shared "github.com/risithcha/nutritrack/pkg"
	httputil "github.com/risithcha/nutritrack/pkg/infrastructure/http"
	"github.com/risithcha/nutritrack/pkg/types"
)

const DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
)

// adminClient is the part of the Firebase Admin auth client we use.
type adminClient interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type FirebaseAuthenticator struct {
	admin      adminClient
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewFirebaseAuthenticator(ctx context.Context, app *firebase.App, apiKey string, logger *slog.Logger) (*FirebaseAuthenticator, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}
	return newAuthenticator(client, apiKey, DefaultIdentityToolkitURL, logger), nil
}

func newAuthenticator(admin adminClient, apiKey, baseURL string, logger *slog.Logger) *FirebaseAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FirebaseAuthenticator{
		admin:      admin,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: shared.AuthTimeout},
		logger:     logger.With("component", "auth"),
	}
}

func (a *FirebaseAuthenticator) CreateAccount(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, shared.AuthTimeout)
	defer cancel()

	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	user, err := a.admin.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", ErrEmailExists
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	a.logger.Info("Account created", "user_id", user.UID)
	return user.UID, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (a *FirebaseAuthenticator) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, shared.AuthTimeout)
	defer cancel()

	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, err
	}

	endpoint := a.baseURL + "/accounts:signInWithPassword?key=" + url.QueryEscape(a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	var out signInResponse
	if err := httputil.DecodeJSON(resp, &out); err != nil {
		var httpErr *httputil.HTTPError
		if errors.As(err, &httpErr) && isCredentialError(httpErr.GoogleErrorMessage()) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}

	expires, _ := strconv.Atoi(out.ExpiresIn)
	return &types.Session{
		UserID:       out.LocalID,
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    expires,
	}, nil
}

func isCredentialError(msg string) bool {
	for _, code := range []string{"EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL"} {
		if strings.HasPrefix(msg, code) {
			return true
		}
	}
	return false
}

// SignOut revokes every refresh token of the user.
func (a *FirebaseAuthenticator) SignOut(ctx context.Context, userID string) error {
	if err := a.admin.RevokeRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	a.logger.Info("Refresh tokens revoked", "user_id", userID)
	return nil
}

func (a *FirebaseAuthenticator) VerifyToken(ctx context.Context, idToken string) (string, error) {
	token, err := a.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		a.logger.Debug("Token verification failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return token.UID, nil
}
