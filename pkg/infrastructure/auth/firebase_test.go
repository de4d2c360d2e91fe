package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdmin struct {
	createErr error
	verifyErr error
	revoked   string
}

func (f *fakeAdmin) CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &fbauth.UserRecord{UserInfo: &fbauth.UserInfo{UID: "uid-new"}}, nil
}

func (f *fakeAdmin) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &fbauth.Token{UID: "uid-" + idToken}, nil
}

func (f *fakeAdmin) RevokeRefreshTokens(ctx context.Context, uid string) error {
	f.revoked = uid
	return nil
}

func TestSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req signInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.ReturnSecureToken)

		if req.Password != "correct" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":400,"message":"INVALID_LOGIN_CREDENTIALS"}}`))
			return
		}
		json.NewEncoder(w).Encode(signInResponse{
			LocalID: "uid-1", IDToken: "id-tok", RefreshToken: "ref-tok", ExpiresIn: "3600",
		})
	}))
	defer srv.Close()

	a := newAuthenticator(&fakeAdmin{}, "test-key", srv.URL, nil)

	session, err := a.SignIn(context.Background(), "a@example.com", "correct")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", session.UserID)
	assert.Equal(t, "id-tok", session.IDToken)
	assert.Equal(t, 3600, session.ExpiresIn)

	_, err = a.SignIn(context.Background(), "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newAuthenticator(&fakeAdmin{}, "k", srv.URL, nil)
	_, err := a.SignIn(context.Background(), "a@example.com", "pw")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}

func TestCreateAccount(t *testing.T) {
	a := newAuthenticator(&fakeAdmin{}, "k", "http://unused", nil)
	uid, err := a.CreateAccount(context.Background(), "a@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "uid-new", uid)

	a = newAuthenticator(&fakeAdmin{createErr: errors.New("backend down")}, "k", "http://unused", nil)
	_, err = a.CreateAccount(context.Background(), "a@example.com", "secret1")
	assert.Error(t, err)
}

func TestVerifyAndSignOut(t *testing.T) {
	admin := &fakeAdmin{}
	a := newAuthenticator(admin, "k", "http://unused", nil)

	uid, err := a.VerifyToken(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "uid-abc", uid)

	require.NoError(t, a.SignOut(context.Background(), "uid-abc"))
	assert.Equal(t, "uid-abc", admin.revoked)

	admin.verifyErr = errors.New("expired")
	_, err = a.VerifyToken(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
