package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DownloadSigner mints and checks the tokens that gate export downloads. A token binds
// a job ID to its artifact name and carries its own expiry, so the download route needs
// no session state.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl}
}

// Sign produces a download token for an artifact and the instant it stops working.
func (s *DownloadSigner) Sign(jobID, artifact string) (string, time.Time, error) {
	if jobID == "" || artifact == "" {
		return "", time.Time{}, fmt.Errorf("sign download: job id and artifact are required")
	}
	expiresAt := time.Now().Add(s.ttl)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(artifact))
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	token := strings.Join([]string{jobID, ts, encoded, s.mac(jobID, ts, encoded)}, ".")
	return token, expiresAt, nil
}

// Verify checks a token's signature and expiry and returns the job ID and artifact
// name it was minted for.
func (s *DownloadSigner) Verify(token string) (string, string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", fmt.Errorf("malformed download token")
	}
	jobID, ts, encoded, sig := parts[0], parts[1], parts[2], parts[3]
	if !hmac.Equal([]byte(sig), []byte(s.mac(jobID, ts, encoded))) {
		return "", "", fmt.Errorf("download token signature mismatch")
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", fmt.Errorf("malformed download token timestamp")
	}
	if time.Now().After(time.Unix(unix, 0)) {
		return "", "", fmt.Errorf("download token expired")
	}
	artifact, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", fmt.Errorf("malformed download token artifact")
	}
	return jobID, string(artifact), nil
}

func (s *DownloadSigner) mac(jobID, ts, encoded string) string {
	h := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(h, "%s|%s|%s", jobID, ts, encoded)
	return hex.EncodeToString(h.Sum(nil))
}
