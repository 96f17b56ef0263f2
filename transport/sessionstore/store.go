// Package sessionstore binds a browser to its game through a signed
// gorilla/sessions cookie shared by the REST and WebSocket servers.
package sessionstore

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	Name = "game_session"

	gameIDKey = "game_id"
	keyLength = 32
)

var ErrNoSigningKey = errors.New("could not generate session signing key")

// New returns a cookie store signed with secret. An empty secret gets a random
// key, so cookies stop being valid when the process restarts. Cookies live as
// long as ttl; zero makes them last until the browser closes.
func New(secret string, ttl time.Duration) (*sessions.CookieStore, error) {
	key := []byte(secret)
	if secret == "" {
		if key = securecookie.GenerateRandomKey(keyLength); key == nil {
			return nil, ErrNoSigningKey
		}
	}

	store := sessions.NewCookieStore(key)
	store.MaxAge(int(ttl / time.Second))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	return store, nil
}

// GameID returns the game bound to the session, empty when there is none.
func GameID(session *sessions.Session) string {
	id, _ := session.Values[gameIDKey].(string)
	return id
}

func SetGameID(session *sessions.Session, id string) {
	session.Values[gameIDKey] = id
}

// Cookie encodes the session the way CookieStore.Save does, for responses that
// are not written through an http.ResponseWriter, such as a WebSocket upgrade.
func Cookie(store *sessions.CookieStore, session *sessions.Session) (*http.Cookie, error) {
	encoded, err := securecookie.EncodeMulti(session.Name(), session.Values, store.Codecs...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	return sessions.NewCookie(session.Name(), encoded, session.Options), nil
}
