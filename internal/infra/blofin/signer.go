package blofin

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"time"
)

// Fixed components of the websocket login signature.
const (
	loginPath   = "/users/self/verify"
	loginMethod = "GET"
)

// Signer handles Blofin API authentication.
// It stores keys as []byte to allow memory wiping after the run.
type Signer struct {
	apiKey     []byte
	secretKey  []byte
	passphrase []byte
}

// NewSigner creates a new signer.
func NewSigner(apiKey, secretKey, passphrase string) *Signer {
	return &Signer{
		apiKey:     []byte(apiKey),
		secretKey:  []byte(secretKey),
		passphrase: []byte(passphrase),
	}
}

// Wipe clears the keys from memory.
func (s *Signer) Wipe() {
	if s == nil {
		return
	}
	s.wipeSlice(s.apiKey)
	s.wipeSlice(s.secretKey)
	s.wipeSlice(s.passphrase)
}

func (s *Signer) wipeSlice(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Sign computes the Blofin request signature over
// path || method || timestamp || nonce || body.
//
// The MAC is hex-encoded and the hex string's bytes are then base64-encoded.
// The double encoding is what the exchange verifies; base64 of the raw
// digest is not accepted.
func (s *Signer) Sign(path, method, timestamp, nonce, body string) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(path + method + timestamp + nonce + body))
	hexDigest := hex.EncodeToString(mac.Sum(nil))
	return base64.StdEncoding.EncodeToString([]byte(hexDigest))
}

// RESTHeaders builds the signed header set for one REST call. The timestamp
// is taken fresh from now; nonce equals timestamp by protocol convention.
// Never reuse a header set across calls: the exchange treats a repeated
// timestamp+nonce pair as a replay.
func (s *Signer) RESTHeaders(method, path, body string, now time.Time) map[string]string {
	timestamp := strconv.FormatInt(now.UnixMilli(), 10)
	nonce := timestamp

	return map[string]string{
		"ACCESS-KEY":        string(s.apiKey),
		"ACCESS-SIGN":       s.Sign(path, method, timestamp, nonce, body),
		"ACCESS-TIMESTAMP":  timestamp,
		"ACCESS-NONCE":      nonce,
		"ACCESS-PASSPHRASE": string(s.passphrase),
		"Content-Type":      "application/json",
	}
}

// LoginArgs builds the websocket login argument. The login signature is the
// same primitive with fixed method GET, fixed path /users/self/verify and an
// empty body.
func (s *Signer) LoginArgs(now time.Time) loginArg {
	timestamp := strconv.FormatInt(now.UnixMilli(), 10)
	nonce := timestamp

	return loginArg{
		APIKey:     string(s.apiKey),
		Passphrase: string(s.passphrase),
		Timestamp:  timestamp,
		Sign:       s.Sign(loginPath, loginMethod, timestamp, nonce, ""),
		Nonce:      nonce,
	}
}
