package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
)

const sessionCookie = "speakdoc_session"

// sessions holds per-session settings overrides in memory, keyed by session
// id. Session identity comes from an HMAC-signed cookie so ids cannot be
// forged, but the settings themselves never leave the server.
type sessions struct {
	secret []byte

	mu       sync.RWMutex
	settings map[string]map[string]any
}

func newSessions(secret string) *sessions {
	return &sessions{
		secret:   []byte(secret),
		settings: make(map[string]map[string]any),
	}
}

func (s *sessions) sign(id string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

// id extracts the verified session id from the request, minting a new
// session (and setting the cookie) when absent or tampered with.
func (s *sessions) id(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, sig, ok := strings.Cut(c.Value, "."); ok && hmac.Equal([]byte(sig), []byte(s.sign(id))) {
			return id
		}
	}

	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	id := hex.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id + "." + s.sign(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// get returns a copy of the session's settings overrides.
func (s *sessions) get(id string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.settings[id]))
	for k, v := range s.settings[id] {
		out[k] = v
	}
	return out
}

// merge folds updates into the session's settings overrides.
func (s *sessions) merge(id string, updates map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.settings[id]
	if cur == nil {
		cur = make(map[string]any, len(updates))
		s.settings[id] = cur
	}
	for k, v := range updates {
		cur[k] = v
	}
}
