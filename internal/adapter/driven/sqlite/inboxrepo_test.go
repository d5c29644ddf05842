package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

func newMessage(id, accountID, content string) model.Message {
	return model.Message{ID: id, AccountID: accountID, Content: content, CreatedAt: testTime}
}

func TestInboxRepo_AppendAndListInInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepo(db)
	inbox := NewInboxRepo(db)
	ctx := context.Background()
	require.NoError(t, accounts.Create(ctx, newTestAccount("a1", "alice")))

	for i, id := range []string{"m-c", "m-a", "m-b"} {
		msg := newMessage(id, "a1", fmt.Sprintf("message body %d", i))
		msg.CreatedAt = testTime.Add(time.Duration(i) * time.Second)
		require.NoError(t, inbox.Append(ctx, msg))
	}

	msgs, err := inbox.List(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m-c", msgs[0].ID)
	assert.Equal(t, "m-a", msgs[1].ID)
	assert.Equal(t, "m-b", msgs[2].ID)
	assert.Less(t, msgs[0].Seq, msgs[1].Seq)
	assert.Less(t, msgs[1].Seq, msgs[2].Seq)
	assert.Equal(t, testTime.Add(2*time.Second), msgs[2].CreatedAt)
	assert.Equal(t, "message body 0", msgs[0].Content)
}

func TestInboxRepo_AppendRechecksRecipient(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepo(db)
	inbox := NewInboxRepo(db)
	ctx := context.Background()

	closed := newTestAccount("b1", "bob")
	closed.AcceptingMessages = false
	pending := newTestAccount("p1", "pat")
	pending.Verification = model.VerificationPending
	require.NoError(t, accounts.Create(ctx, closed))
	require.NoError(t, accounts.Create(ctx, pending))

	tests := []struct {
		name      string
		accountID string
	}{
		{name: "not accepting", accountID: "b1"},
		{name: "pending verification", accountID: "p1"},
		{name: "missing account", accountID: "ghost"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := inbox.Append(ctx, newMessage("m-"+tc.accountID, tc.accountID, "hello there friend"))
			assert.ErrorIs(t, err, driven.ErrRecipientClosed)

			msgs, err := inbox.List(ctx, tc.accountID)
			require.NoError(t, err)
			assert.Empty(t, msgs)
		})
	}
}

func TestInboxRepo_ToggleTakesEffectOnNextAppend(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepo(db)
	inbox := NewInboxRepo(db)
	ctx := context.Background()
	require.NoError(t, accounts.Create(ctx, newTestAccount("a1", "alice")))

	require.NoError(t, inbox.Append(ctx, newMessage("m1", "a1", "first message body")))
	require.NoError(t, accounts.SetAccepting(ctx, "a1", false))
	assert.ErrorIs(t, inbox.Append(ctx, newMessage("m2", "a1", "second message body")), driven.ErrRecipientClosed)
	require.NoError(t, accounts.SetAccepting(ctx, "a1", true))
	require.NoError(t, inbox.Append(ctx, newMessage("m3", "a1", "third message body")))

	msgs, err := inbox.List(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m3", msgs[1].ID)
}

func TestInboxRepo_ConcurrentAppends(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepo(db)
	inbox := NewInboxRepo(db)
	ctx := context.Background()
	require.NoError(t, accounts.Create(ctx, newTestAccount("a1", "alice")))

	const n = 25
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = inbox.Append(ctx, newMessage(fmt.Sprintf("m-%02d", i), "a1", fmt.Sprintf("concurrent message %d", i)))
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	msgs, err := inbox.List(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, msgs, n)

	seen := make(map[string]string, n)
	for _, m := range msgs {
		seen[m.ID] = m.Content
	}
	assert.Len(t, seen, n)
	for i := range n {
		assert.Equal(t, fmt.Sprintf("concurrent message %d", i), seen[fmt.Sprintf("m-%02d", i)])
	}
}

func TestInboxRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepo(db)
	inbox := NewInboxRepo(db)
	ctx := context.Background()
	require.NoError(t, accounts.Create(ctx, newTestAccount("a1", "alice")))
	require.NoError(t, accounts.Create(ctx, newTestAccount("b1", "bob")))

	for _, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, inbox.Append(ctx, newMessage(id, "a1", "some message body")))
	}
	require.NoError(t, inbox.Append(ctx, newMessage("bob-1", "b1", "bob's message body")))

	require.NoError(t, inbox.Delete(ctx, "a1", "m2"))
	assert.ErrorIs(t, inbox.Delete(ctx, "a1", "m2"), driven.ErrMessageNotFound)
	assert.ErrorIs(t, inbox.Delete(ctx, "a1", "bob-1"), driven.ErrMessageNotFound)

	msgs, err := inbox.List(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m3", msgs[1].ID)

	bobs, err := inbox.List(ctx, "b1")
	require.NoError(t, err)
	assert.Len(t, bobs, 1)

	// Appends after a delete keep growing the log.
	require.NoError(t, inbox.Append(ctx, newMessage("m4", "a1", "after the delete")))
	msgs, err = inbox.List(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m4", msgs[2].ID)
}

func TestInboxRepo_CancelledContextWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepo(db)
	inbox := NewInboxRepo(db)
	require.NoError(t, accounts.Create(context.Background(), newTestAccount("a1", "alice")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, inbox.Append(ctx, newMessage("m1", "a1", "never stored body")))

	msgs, err := inbox.List(context.Background(), "a1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
