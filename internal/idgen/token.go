package idgen

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jwt "github.com/form3tech-oss/jwt-go"
)

// DevSecretSentinel is the well-known development secret that enables
// legacy unsigned-token acceptance (spec §4.1, open question (a)). Any
// other configured secret rejects legacy tokens outright.
const DevSecretSentinel = "dev-insecure-secret-do-not-use-in-production"

// tokenAlg is the only supported signed-token algorithm tag.
const tokenAlg = "v1"

// TokenPayload is the canonical, signed content of a reconnect token.
type TokenPayload struct {
	SessionID  string `json:"sessionId"`
	PlayerID   string `json:"playerId"`
	LobbyID    string `json:"lobbyId"`
	IssuedAtMs int64  `json:"issuedAtMs"`
}

// VerifyError enumerates why token verification failed.
type VerifyError string

const (
	ErrUnsigned      VerifyError = "UNSIGNED"
	ErrBadAlgorithm  VerifyError = "BAD_ALGORITHM"
	ErrBadMAC        VerifyError = "BAD_MAC"
	ErrMalformed     VerifyError = "MALFORMED"
	ErrFieldMismatch VerifyError = "FIELD_MISMATCH"
	ErrExpired       VerifyError = "EXPIRED"
)

func (e VerifyError) Error() string { return string(e) }

// Expected pins the fields a verified token must match; zero-valued fields
// are not checked.
type Expected struct {
	SessionID string
	PlayerID  string
	LobbyID   string
}

// TokenManager issues and verifies reconnect tokens bound to a single HMAC
// secret. The MAC itself is computed with the teacher's own HS256 signing
// primitive (github.com/form3tech-oss/jwt-go), reused here as a bare
// sign/verify function rather than the full three-segment JWT envelope —
// spec §4.1 mandates a "v1." literal in place of a JSON JOSE header.
type TokenManager struct {
	secret    []byte
	maxAgeMs  int64
	signingFn *jwt.SigningMethodHMAC
}

// NewTokenManager constructs a TokenManager with the given HMAC secret and
// maximum token age.
func NewTokenManager(secret string, maxAgeMs int64) *TokenManager {
	return &TokenManager{
		secret:    []byte(secret),
		maxAgeMs:  maxAgeMs,
		signingFn: jwt.SigningMethodHS256,
	}
}

// Issue mints a "v1.<payload>.<mac>" reconnect token for the given fields,
// stamped with the clock-supplied issuedAtMs.
func (m *TokenManager) Issue(sessionID, playerID, lobbyID string, issuedAtMs int64) (string, error) {
	payload := TokenPayload{
		SessionID:  sessionID,
		PlayerID:   playerID,
		LobbyID:    lobbyID,
		IssuedAtMs: issuedAtMs,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("idgen: marshal token payload: %w", err)
	}
	payloadB64 := base64.RawURLEncoding.EncodeToString(raw)
	signingString := tokenAlg + "." + payloadB64
	mac, err := m.signingFn.Sign(signingString, m.secret)
	if err != nil {
		return "", fmt.Errorf("idgen: sign token: %w", err)
	}
	return signingString + "." + mac, nil
}

// Verify validates a reconnect token against the manager's secret, the
// expected bound fields, and the maximum age window relative to nowMs.
//
// A legacy simple identifier (no dots, or two segments) is accepted for
// *parsing* only: Verify on such a token always fails with ErrUnsigned
// unless the manager's secret is DevSecretSentinel.
func (m *TokenManager) Verify(token string, expect Expected, nowMs int64) (TokenPayload, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		if string(m.secret) != DevSecretSentinel {
			return TokenPayload{}, ErrUnsigned
		}
		// Dev-mode only: accept a bare legacy identifier as if it were the
		// session id it names, trusting the caller-supplied expectations.
		if token == "" || !ValidID(token) {
			return TokenPayload{}, ErrMalformed
		}
		return TokenPayload{
			SessionID:  token,
			PlayerID:   expect.PlayerID,
			LobbyID:    expect.LobbyID,
			IssuedAtMs: nowMs,
		}, nil
	}

	alg, payloadB64, macB64 := segments[0], segments[1], segments[2]
	if alg != tokenAlg {
		return TokenPayload{}, ErrBadAlgorithm
	}

	signingString := alg + "." + payloadB64
	if err := m.signingFn.Verify(signingString, macB64, m.secret); err != nil {
		return TokenPayload{}, ErrBadMAC
	}

	raw, err := base64.RawURLEncoding.DecodeString(payloadB64)
	if err != nil {
		return TokenPayload{}, ErrMalformed
	}
	var payload TokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return TokenPayload{}, ErrMalformed
	}
	if payload.SessionID == "" || payload.PlayerID == "" || payload.LobbyID == "" {
		return TokenPayload{}, ErrMalformed
	}

	if expect.SessionID != "" && expect.SessionID != payload.SessionID {
		return TokenPayload{}, ErrFieldMismatch
	}
	if expect.PlayerID != "" && expect.PlayerID != payload.PlayerID {
		return TokenPayload{}, ErrFieldMismatch
	}
	if expect.LobbyID != "" && expect.LobbyID != payload.LobbyID {
		return TokenPayload{}, ErrFieldMismatch
	}

	if m.maxAgeMs > 0 && nowMs-payload.IssuedAtMs > m.maxAgeMs {
		return TokenPayload{}, ErrExpired
	}

	return payload, nil
}

// IsVerifyError reports whether err is one of this package's VerifyError
// sentinels, and returns it.
func IsVerifyError(err error) (VerifyError, bool) {
	var ve VerifyError
	if errors.As(err, &ve) {
		return ve, true
	}
	return "", false
}
