package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadSignerRoundTrip(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)

	token, expiresAt, err := signer.Sign("job-1", "entries-job-1.csv")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	jobID, artifact, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "entries-job-1.csv", artifact)
}

func TestDownloadSignerRejectsExpiredTokens(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Nanosecond)

	token, _, err := signer.Sign("job-1", "entries-job-1.csv")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, _, err = signer.Verify(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestDownloadSignerRejectsTampering(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)

	token, _, err := signer.Sign("job-1", "entries-job-1.csv")
	require.NoError(t, err)

	tampered := strings.Replace(token, "job-1", "job-2", 1)
	_, _, err = signer.Verify(tampered)
	require.Error(t, err)

	other := NewDownloadSigner("different-secret", time.Hour)
	_, _, err = other.Verify(token)
	require.Error(t, err)
}

func TestDownloadSignerRejectsMalformedTokens(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)

	for _, token := range []string{"", "a.b", "a.b.c.d.e", "job.notanumber.YQ.deadbeef"} {
		_, _, err := signer.Verify(token)
		assert.Error(t, err, token)
	}
}

func TestDownloadSignerRequiresJobAndArtifact(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)

	_, _, err := signer.Sign("", "file.csv")
	require.Error(t, err)
	_, _, err = signer.Sign("job-1", "")
	require.Error(t, err)
}
