package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutBucket(t *testing.T) {
	t.Setenv("AWS_BUCKET_NAME", "")

	client, err := New()
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestPresignUrl(t *testing.T) {
	t.Setenv("AWS_BUCKET_NAME", "voice-notes")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_ENDPOINT", "http://localhost:9000")

	client, err := New()
	require.NoError(t, err)
	require.NotNil(t, client)

	link, err := client.PresignUrl("notes/room-1.json")
	require.NoError(t, err)
	assert.Contains(t, link, "http://localhost:9000/voice-notes/notes/room-1.json")
	assert.Contains(t, link, "X-Amz-Signature=")
}
