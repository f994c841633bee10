package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/models"
	"github.com/jason-s-yu/monopoly/internal/testsuite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionLogRoundTrip(t *testing.T) {
	ctx, client := testsuite.Redis(t)
	log := New(client, "test_actions")

	rec := models.ActionRecord{
		GameID:        uuid.New(),
		ActionIndex:   3,
		ActorID:       uuid.New(),
		ActionType:    "roll",
		ActionPayload: json.RawMessage(`{"d1":2,"d2":5}`),
		Timestamp:     time.Now().UnixMilli(),
	}
	require.NoError(t, log.Record(ctx, rec))

	n, err := log.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, ok, err := log.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec.GameID, got.GameID)
	assert.Equal(t, rec.ActionIndex, got.ActionIndex)
	assert.Equal(t, "roll", got.ActionType)
	assert.JSONEq(t, `{"d1":2,"d2":5}`, string(got.ActionPayload))
}

func TestPopTimesOutOnEmptyQueue(t *testing.T) {
	ctx, client := testsuite.Redis(t)
	log := New(client, "")
	assert.Equal(t, DefaultQueueName, log.Queue())

	_, ok, err := log.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPopRejectsGarbage(t *testing.T) {
	ctx, client := testsuite.Redis(t)
	log := New(client, "garbage")
	require.NoError(t, client.RPush(ctx, "garbage", "not json").Err())

	_, ok, err := log.Pop(ctx, time.Second)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "invalid action record")
}
