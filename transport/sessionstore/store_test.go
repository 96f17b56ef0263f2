package sessionstore

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	store, err := New("test-secret", time.Hour)
	require.NoError(t, err)

	// Given: a request without a cookie
	session, err := store.Get(httptest.NewRequest(http.MethodGet, "/", nil), Name)
	require.NoError(t, err)
	assert.True(t, session.IsNew)
	assert.Empty(t, GameID(session))

	// When: a game is bound and the session saved
	SetGameID(session, "game-1")
	rec := httptest.NewRecorder()
	require.NoError(t, session.Save(httptest.NewRequest(http.MethodGet, "/", nil), rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, Name, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/", cookies[0].Path)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	// Then: a later request carrying the cookie sees the same game
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	restored, err := store.Get(req, Name)
	require.NoError(t, err)
	assert.Equal(t, "game-1", GameID(restored))
}

func TestCookie_MatchesSave(t *testing.T) {
	store, err := New("test-secret", time.Hour)
	require.NoError(t, err)

	session, err := store.New(httptest.NewRequest(http.MethodGet, "/ws", nil), Name)
	require.NoError(t, err)
	SetGameID(session, "game-2")

	cookie, err := Cookie(store, session)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.AddCookie(cookie)
	restored, err := store.Get(req, Name)
	require.NoError(t, err)
	assert.Equal(t, "game-2", GameID(restored))
}

func TestStore_RejectsForeignCookies(t *testing.T) {
	signer, err := New("one-secret", time.Hour)
	require.NoError(t, err)
	verifier, err := New("other-secret", time.Hour)
	require.NoError(t, err)

	session, err := signer.New(httptest.NewRequest(http.MethodGet, "/", nil), Name)
	require.NoError(t, err)
	SetGameID(session, "game-3")
	cookie, err := Cookie(signer, session)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	restored, err := verifier.Get(req, Name)

	require.Error(t, err)
	require.NotNil(t, restored)
	assert.Empty(t, GameID(restored))
}

func TestNew_RandomKey(t *testing.T) {
	store, err := New("", 0)

	require.NoError(t, err)
	assert.Equal(t, 0, store.Options.MaxAge)
}
