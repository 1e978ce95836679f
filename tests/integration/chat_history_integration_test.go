package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatHistoryReturnsNewestMessages(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	user, err := SeedUser(ctx, db.Pool, "alice", "hunter2!")
	require.NoError(t, err)

	// Six messages one minute apart. A limit of three must return the
	// newest three, not the first three ever written.
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 6; i++ {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO messages (id, user_id, body, created_at) VALUES (gen_random_uuid(), $1, $2, $3)`,
			user.ID, fmt.Sprintf("message-%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	repo := repositories.NewMessageRepository(db.DB)

	messages, err := repo.ListHistory(ctx, 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Newest three, oldest first for rendering.
	assert.Equal(t, "message-3", messages[0].Body)
	assert.Equal(t, "message-4", messages[1].Body)
	assert.Equal(t, "message-5", messages[2].Body)
	assert.True(t, messages[0].CreatedAt.Before(messages[1].CreatedAt))
	assert.True(t, messages[1].CreatedAt.Before(messages[2].CreatedAt))
	assert.Equal(t, "alice", messages[0].DisplayName)
}
