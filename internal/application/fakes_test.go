package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

// --- In-memory store implementing both AccountStore and InboxStore ---

type memStore struct {
	mu       sync.Mutex
	accounts map[string]model.Account
	messages []model.Message
	seq      int64
	err      error // returned from every call when set
}

var (
	_ driven.AccountStore = (*memStore)(nil)
	_ driven.InboxStore   = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]model.Account)}
}

func (m *memStore) Create(_ context.Context, a model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.accounts {
		if existing.Handle == a.Handle {
			return driven.ErrHandleExists
		}
		if existing.ContactAddress == a.ContactAddress {
			return driven.ErrContactExists
		}
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *memStore) find(match func(model.Account) bool) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.accounts {
		if match(a) {
			return &a, nil
		}
	}
	return nil, driven.ErrAccountNotFound
}

func (m *memStore) GetByHandle(_ context.Context, handle string) (*model.Account, error) {
	return m.find(func(a model.Account) bool { return a.Handle == handle })
}

func (m *memStore) GetByID(_ context.Context, id string) (*model.Account, error) {
	return m.find(func(a model.Account) bool { return a.ID == id })
}

func (m *memStore) GetByContact(_ context.Context, contact string) (*model.Account, error) {
	return m.find(func(a model.Account) bool { return a.ContactAddress == contact })
}

func (m *memStore) update(id string, fn func(*model.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	a, ok := m.accounts[id]
	if !ok {
		return driven.ErrAccountNotFound
	}
	fn(&a)
	m.accounts[id] = a
	return nil
}

func (m *memStore) SetAccepting(_ context.Context, id string, accepting bool) error {
	return m.update(id, func(a *model.Account) { a.AcceptingMessages = accepting })
}

func (m *memStore) SetVerification(_ context.Context, id string, state model.VerificationState) error {
	return m.update(id, func(a *model.Account) { a.Verification = state })
}

func (m *memStore) ReplaceCredential(_ context.Context, id, hash string) error {
	return m.update(id, func(a *model.Account) { a.CredentialHash = hash })
}

func (m *memStore) Append(_ context.Context, msg model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	a, ok := m.accounts[msg.AccountID]
	if !ok || !a.Summary().CanReceive() {
		return driven.ErrRecipientClosed
	}
	m.seq++
	msg.Seq = m.seq
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memStore) List(_ context.Context, accountID string) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Message
	for _, msg := range m.messages {
		if msg.AccountID == accountID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, accountID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i, msg := range m.messages {
		if msg.AccountID == accountID && msg.ID == messageID {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			return nil
		}
	}
	return driven.ErrMessageNotFound
}

func (m *memStore) inboxSize(accountID string) int {
	msgs, _ := m.List(context.Background(), accountID)
	return len(msgs)
}

// seed inserts a verified account directly.
func (m *memStore) seed(id, handle string, accepting bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[id] = model.Account{
		ID:                id,
		Handle:            handle,
		ContactAddress:    handle + "@example.com",
		AcceptingMessages: accepting,
		Verification:      model.VerificationVerified,
	}
}

// --- Helpers ---

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// services wires the core services over one memStore.
type services struct {
	store  *memStore
	dir    *Directory
	gate   *AcceptanceGate
	intake *IntakeService
	inbox  *InboxService
}

func newServices() *services {
	store := newMemStore()
	dir := NewDirectory(store)
	gate := NewAcceptanceGate(dir, store, discardLogger())
	return &services{
		store:  store,
		dir:    dir,
		gate:   gate,
		intake: NewIntakeService(dir, gate, store, discardLogger()),
		inbox:  NewInboxService(store),
	}
}
