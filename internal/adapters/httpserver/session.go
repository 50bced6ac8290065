package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
)

// The auth collaborator issues sessions; this engine only reads them. A
// session is an HMAC-signed cookie carrying the user id and email, absent
// for guest checkout.
type sessionUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

func secretKey() []byte {
	k := os.Getenv("SESSION_KEY")
	if k == "" {
		k = "dev-insecure"
	}
	return []byte(k)
}

func readUserSession(r *http.Request) *sessionUser {
	if r == nil {
		return nil
	}
	c, err := r.Cookie("sess")
	if err != nil || c.Value == "" {
		return nil
	}
	parts := strings.SplitN(c.Value, ".", 2)
	if len(parts) != 2 {
		return nil
	}
	sig, _ := base64.RawURLEncoding.DecodeString(parts[0])
	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	h := hmac.New(sha256.New, secretKey())
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return nil
	}
	var u sessionUser
	if err := json.Unmarshal(payload, &u); err != nil {
		return nil
	}
	if u.ID == uuid.Nil || u.Email == "" {
		return nil
	}
	return &u
}

func sessionUserID(r *http.Request) *uuid.UUID {
	if u := readUserSession(r); u != nil {
		id := u.ID
		return &id
	}
	return nil
}

// requireAdmin guards admin endpoints with a shared bearer token, compared in
// constant time.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	tok, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || !secureCompare(tok, string(s.adminToken)) {
		http.Error(w, "unauthorized", 401)
		return false
	}
	return true
}

func secureCompare(a, b string) bool {
	da := sha256.Sum256([]byte(a))
	db := sha256.Sum256([]byte(b))
	return hmac.Equal(da[:], db[:])
}
