package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"kickabout/pkg/auth"
)

const (
	sessionTTL = 24 * time.Hour

	nickMinLen = 2
	nickMaxLen = 16
)

type SessionAPI struct{ JWT *auth.JWT }

type sessionReq struct {
	Nickname string `json:"nickname"`
}

type sessionResp struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
}

// Create issues a guest identity: a fresh player id plus a signed token
// carrying the nickname. There are no accounts; the token is the session.
func (a *SessionAPI) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	nick, ok := CleanNickname(req.Nickname)
	if !ok {
		http.Error(w, "nickname must be 2-16 printable characters", http.StatusBadRequest)
		return
	}

	s := auth.Session{PlayerID: uuid.NewString(), Nickname: nick}
	tok, err := a.JWT.Sign(s, sessionTTL)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, sessionResp{Token: tok, PlayerID: s.PlayerID, Nickname: nick})
}

// CleanNickname trims the name and rejects anything outside 2-16
// printable runes.
func CleanNickname(s string) (string, bool) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < nickMinLen || n > nickMaxLen {
		return "", false
	}
	for _, r := range s {
		if r == utf8.RuneError || !unicode.IsPrint(r) {
			return "", false
		}
	}
	return s, true
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
