package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T, ttl time.Duration) (*Service, *MemoryUserStore) {
	t.Helper()
	users := NewMemoryUserStore()
	if _, err := users.Add("admin", "s3cret-pass"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return NewService(users, "test-signing-key", ttl), users
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestAuth(t, time.Hour)

	session, err := svc.Authenticate(context.Background(), "admin", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "admin", session.Username)
	assert.NotEmpty(t, session.Token)

	userID, err := svc.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, userID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _ := newTestAuth(t, time.Hour)

	_, err := svc.Authenticate(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc, _ := newTestAuth(t, time.Hour)

	_, err := svc.Authenticate(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc, _ := newTestAuth(t, -time.Minute)

	session, err := svc.Authenticate(context.Background(), "admin", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Verify(session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyForgedToken(t *testing.T) {
	svc, users := newTestAuth(t, time.Hour)

	other := NewService(users, "different-key", time.Hour)
	session, err := other.Authenticate(context.Background(), "admin", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Verify(session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	svc, _ := newTestAuth(t, time.Hour)

	var gotUserID int64
	handler := svc.Middleware(func(w http.ResponseWriter, _ *http.Request, _ error) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	session, err := svc.Authenticate(context.Background(), "admin", "s3cret-pass")
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + session.Token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc123", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = 0
			req := httptest.NewRequest(http.MethodGet, "/officers/stats", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, session.UserID, gotUserID)
			}
		})
	}
}
