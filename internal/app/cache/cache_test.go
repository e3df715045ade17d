package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ramble/internal/app/transcription"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)

	c, err := NewRedisCache(Config{Addr: mini.Addr(), TTL: time.Hour}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mini
}

func sampleTranscript() *transcription.Transcript {
	return &transcription.Transcript{
		Text:            "Hello. How are you?",
		Language:        "en",
		DurationSeconds: 6.5,
		Segments: []transcription.LabeledSegment{
			{Speaker: "Speaker 1", Text: "Hello.", Start: 0, End: 1},
			{Speaker: "Speaker 1", Text: "How are you?", Start: 1, End: 2},
		},
		Model:            "whisper-tiny",
		Task:             "transcribe",
		SpeakersDetected: 1,
	}
}

func TestSetThenGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	key := transcription.CacheKey("abc123", "tiny", "transcribe", "en", true)
	require.NoError(t, c.Set(ctx, key, sampleTranscript()))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Hello. How are you?", got.Text)
	assert.Equal(t, 6.5, got.DurationSeconds)
	require.Len(t, got.Segments, 2)
	assert.Equal(t, "Speaker 1", got.Segments[0].Speaker)
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	got, err := c.Get(context.Background(), "ramble:result:missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetAppliesTTL(t *testing.T) {
	c, mini := newTestCache(t)

	key := "ramble:result:ttl-check"
	require.NoError(t, c.Set(context.Background(), key, sampleTranscript()))
	assert.Equal(t, time.Hour, mini.TTL(key))
}

func TestEntryExpires(t *testing.T) {
	c, mini := newTestCache(t)
	ctx := context.Background()

	key := "ramble:result:expiring"
	require.NoError(t, c.Set(ctx, key, sampleTranscript()))

	mini.FastForward(2 * time.Hour)

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCorruptEntry(t *testing.T) {
	c, mini := newTestCache(t)

	key := "ramble:result:corrupt"
	require.NoError(t, mini.Set(key, "{not json"))

	_, err := c.Get(context.Background(), key)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache entry corrupt")
}

func TestNewRedisCacheConnectFailure(t *testing.T) {
	_, err := NewRedisCache(Config{Addr: "127.0.0.1:0"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}
