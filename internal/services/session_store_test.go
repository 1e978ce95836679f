package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(&SessionData{
		Authenticated: true,
		UserID:        "u1",
		Username:      "alice",
		DisplayName:   "Alice",
	})
	require.NoError(t, err)
	return payload
}

func TestSessionStore_CreateAppliesTTL(t *testing.T) {
	var created *models.Session
	repo := &MockSessionRepository{
		CreateFunc: func(ctx context.Context, session *models.Session) error {
			created = session
			return nil
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	userID := "u1"
	err := store.Create(context.Background(), "sess-abc", &userID, &SessionData{Authenticated: true, UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "sess-abc", created.SessionID)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), created.ExpiresAt, 5*time.Second)

	var data SessionData
	require.NoError(t, json.Unmarshal(created.Payload, &data))
	assert.True(t, data.Authenticated)
}

func TestSessionStore_CreateConflictSurfaces(t *testing.T) {
	repo := &MockSessionRepository{
		CreateFunc: func(ctx context.Context, session *models.Session) error {
			return models.ErrConflict
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	err := store.Create(context.Background(), "sess-abc", nil, &SessionData{})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestSessionStore_ReadRoundTrip(t *testing.T) {
	userID := "u1"
	repo := &MockSessionRepository{
		GetFunc: func(ctx context.Context, sessionID string) (*models.Session, error) {
			return &models.Session{
				SessionID: sessionID,
				UserID:    &userID,
				ExpiresAt: time.Now().UTC().Add(30 * time.Minute),
				Payload:   validPayload(t),
			}, nil
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	record, err := store.Read(context.Background(), "sess-abc")
	require.NoError(t, err)
	assert.Equal(t, "sess-abc", record.SessionID)
	assert.Equal(t, "alice", record.Data.Username)
	assert.True(t, record.Data.Authenticated)
}

func TestSessionStore_ReadExpiredBehavesAbsent(t *testing.T) {
	deleted := ""
	repo := &MockSessionRepository{
		GetFunc: func(ctx context.Context, sessionID string) (*models.Session, error) {
			return &models.Session{
				SessionID: sessionID,
				ExpiresAt: time.Now().UTC().Add(-time.Minute),
				Payload:   validPayload(t),
			}, nil
		},
		DeleteFunc: func(ctx context.Context, sessionID string) error {
			deleted = sessionID
			return nil
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	_, err := store.Read(context.Background(), "sess-abc")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "sess-abc", deleted, "expired row should be purged opportunistically")
}

func TestSessionStore_ReadExpiredDeleteFailureStillNotFound(t *testing.T) {
	repo := &MockSessionRepository{
		GetFunc: func(ctx context.Context, sessionID string) (*models.Session, error) {
			return &models.Session{
				SessionID: sessionID,
				ExpiresAt: time.Now().UTC().Add(-time.Minute),
				Payload:   validPayload(t),
			}, nil
		},
		DeleteFunc: func(ctx context.Context, sessionID string) error {
			return errors.New("connection refused")
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	_, err := store.Read(context.Background(), "sess-abc")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSessionStore_ReadMalformedPayloadForcesReauth(t *testing.T) {
	deleted := ""
	repo := &MockSessionRepository{
		GetFunc: func(ctx context.Context, sessionID string) (*models.Session, error) {
			return &models.Session{
				SessionID: sessionID,
				ExpiresAt: time.Now().UTC().Add(time.Hour),
				Payload:   []byte(`{not json`),
			}, nil
		},
		DeleteFunc: func(ctx context.Context, sessionID string) error {
			deleted = sessionID
			return nil
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	_, err := store.Read(context.Background(), "sess-abc")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "sess-abc", deleted)
}

func TestSessionStore_ReadUnknownPayloadFieldsIgnored(t *testing.T) {
	repo := &MockSessionRepository{
		GetFunc: func(ctx context.Context, sessionID string) (*models.Session, error) {
			return &models.Session{
				SessionID: sessionID,
				ExpiresAt: time.Now().UTC().Add(time.Hour),
				Payload:   []byte(`{"authenticated":true,"username":"alice","theme":"dark","flags":[1,2]}`),
			}, nil
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	record, err := store.Read(context.Background(), "sess-abc")
	require.NoError(t, err)
	assert.Equal(t, "alice", record.Data.Username)
}

func TestSessionStore_TouchRefreshWithoutPayload(t *testing.T) {
	var gotPayload []byte
	var gotExpiry time.Time
	repo := &MockSessionRepository{
		TouchFunc: func(ctx context.Context, sessionID string, payload []byte, newExpiry time.Time) error {
			gotPayload = payload
			gotExpiry = newExpiry
			return nil
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	require.NoError(t, store.Touch(context.Background(), "sess-abc", nil))
	assert.Nil(t, gotPayload, "nil data must leave the payload alone")
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), gotExpiry, 5*time.Second)
}

func TestSessionStore_TouchAbsentSessionNotFound(t *testing.T) {
	repo := &MockSessionRepository{
		TouchFunc: func(ctx context.Context, sessionID string, payload []byte, newExpiry time.Time) error {
			return models.ErrNotFound
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	err := store.Touch(context.Background(), "sess-gone", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSessionStore_DestroyIdempotent(t *testing.T) {
	calls := 0
	repo := &MockSessionRepository{
		DeleteFunc: func(ctx context.Context, sessionID string) error {
			calls++
			return nil
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	require.NoError(t, store.Destroy(context.Background(), "sess-abc"))
	require.NoError(t, store.Destroy(context.Background(), "sess-abc"))
	assert.Equal(t, 2, calls)
}

func TestSessionStore_SweepExpiredReturnsCount(t *testing.T) {
	repo := &MockSessionRepository{
		DeleteExpiredFunc: func(ctx context.Context) (int64, error) {
			return 3, nil
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	count, err := store.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSessionStore_StorageErrorsWrapped(t *testing.T) {
	repo := &MockSessionRepository{
		GetFunc: func(ctx context.Context, sessionID string) (*models.Session, error) {
			return nil, errors.New("connection refused")
		},
	}
	store := NewSessionStore(repo, time.Hour, testLogger())

	_, err := store.Read(context.Background(), "sess-abc")
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
}
