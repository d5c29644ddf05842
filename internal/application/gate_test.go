package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
)

func TestCanReceive(t *testing.T) {
	ctx := context.Background()
	s := newServices()
	s.store.seed("a1", "alice", true)
	s.store.seed("b1", "bob", false)
	require.NoError(t, s.store.Create(ctx, model.Account{
		ID: "p1", Handle: "pending", ContactAddress: "p@example.com",
		AcceptingMessages: true, Verification: model.VerificationPending,
	}))

	tests := []struct {
		name   string
		handle string
		want   bool
	}{
		{name: "accepting verified", handle: "alice", want: true},
		{name: "not accepting", handle: "bob", want: false},
		{name: "pending verification", handle: "pending", want: false},
		{name: "unknown handle", handle: "nobody", want: false},
		{name: "empty handle", handle: "", want: false},
		{name: "case differs", handle: "Alice", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.gate.CanReceive(ctx, tc.handle))
		})
	}
}

func TestCanReceive_StoreFailureFailsClosed(t *testing.T) {
	s := newServices()
	s.store.seed("a1", "alice", true)
	s.store.err = errBoom

	assert.False(t, s.gate.CanReceive(context.Background(), "alice"))
}

func TestToggle_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newServices()
	s.store.seed("a1", "alice", true)
	owner := Identity{AccountID: "a1", Handle: "alice"}

	got, err := s.gate.Toggle(ctx, owner, "a1", true)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = s.gate.Toggle(ctx, owner, "a1", true)
	require.NoError(t, err)
	assert.True(t, got)

	state, err := s.gate.Status(ctx, owner, "a1")
	require.NoError(t, err)
	assert.True(t, state)
}

func TestToggle_ImmediatelyVisible(t *testing.T) {
	ctx := context.Background()
	s := newServices()
	s.store.seed("a1", "alice", true)
	owner := Identity{AccountID: "a1", Handle: "alice"}

	_, err := s.gate.Toggle(ctx, owner, "a1", false)
	require.NoError(t, err)
	assert.False(t, s.gate.CanReceive(ctx, "alice"))

	_, err = s.gate.Toggle(ctx, owner, "a1", true)
	require.NoError(t, err)
	assert.True(t, s.gate.CanReceive(ctx, "alice"))
}

func TestToggle_Forbidden(t *testing.T) {
	ctx := context.Background()
	s := newServices()
	s.store.seed("a1", "alice", true)
	s.store.seed("m1", "mallory", true)

	_, err := s.gate.Toggle(ctx, Identity{AccountID: "m1", Handle: "mallory"}, "a1", false)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.True(t, s.gate.CanReceive(ctx, "alice"))

	_, err = s.gate.Toggle(ctx, Identity{}, "", false)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.gate.Status(ctx, Identity{AccountID: "m1"}, "a1")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestToggle_StorageFailure(t *testing.T) {
	s := newServices()
	s.store.seed("a1", "alice", true)
	s.store.err = errBoom

	_, err := s.gate.Toggle(context.Background(), Identity{AccountID: "a1"}, "a1", false)
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, CodeStorageFailure, ReasonCode(err))
}
