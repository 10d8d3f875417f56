package handler

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservebite/reservebite-api/internal/config"
)

// stubTokens lets each test script the token store per call.
type stubTokens struct {
	storeRefresh     func(userID uint64, tokenHash string, exp time.Time) error
	validateRefresh  func(tokenHash string) (uint64, error)
	revokeByHash     func(tokenHash string) error
	revokeAllForUser func(userID uint64) error
}

func (s *stubTokens) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return s.storeRefresh(userID, tokenHash, exp)
}
func (s *stubTokens) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	return s.validateRefresh(tokenHash)
}
func (s *stubTokens) RevokeByHash(_ context.Context, tokenHash string) error {
	return s.revokeByHash(tokenHash)
}
func (s *stubTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	return s.revokeAllForUser(userID)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	var revoked []uint64
	tokens := &stubTokens{revokeAllForUser: func(userID uint64) error {
		revoked = append(revoked, userID)
		return nil
	}}
	h := NewAuthHandler(config.Config{}, nil, tokens)

	c, rec := newContext(t, http.MethodPost, "/v1/me/logout-all", "", 7)
	require.NoError(t, h.LogoutAll(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uint64{7}, revoked)
}

func TestLogoutRejectsUnknownToken(t *testing.T) {
	tokens := &stubTokens{validateRefresh: func(string) (uint64, error) {
		return 0, sql.ErrNoRows
	}}
	h := NewAuthHandler(config.Config{}, nil, tokens)

	c, rec := newContext(t, http.MethodPost, "/v1/auth/logout", `{"refresh_token":"bogus"}`, 0)
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesTheToken(t *testing.T) {
	var revokedHashes []string
	tokens := &stubTokens{
		validateRefresh: func(string) (uint64, error) { return 7, nil },
		revokeByHash: func(tokenHash string) error {
			revokedHashes = append(revokedHashes, tokenHash)
			return nil
		},
	}
	h := NewAuthHandler(config.Config{}, nil, tokens)

	c, rec := newContext(t, http.MethodPost, "/v1/auth/logout", `{"refresh_token":"abc"}`, 0)
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, revokedHashes, 1)
}
