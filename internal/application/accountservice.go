package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

// handlePattern is the accepted handle shape: 2-20 letters, digits or underscores.
var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{2,20}$`)

const minPasswordLength = 6

// TokenIssuer signs identity claims for authenticated owners.
type TokenIssuer interface {
	Issue(accountID, handle string) (string, error)
}

// SignUpRequest is the input of AccountService.SignUp.
type SignUpRequest struct {
	Handle   string
	Contact  string
	Password string
}

// Session is the result of a successful sign-in.
type Session struct {
	AccountID string
	Handle    string
	Token     string
}

// AccountService registers accounts, drives them through verification, and
// authenticates owners.
type AccountService struct {
	accounts driven.AccountStore
	verifier driven.Verifier
	issuer   TokenIssuer
	hashCost int
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewAccountService creates an AccountService. hashCost is the bcrypt cost
// used for new credential hashes.
func NewAccountService(
	accounts driven.AccountStore,
	verifier driven.Verifier,
	issuer TokenIssuer,
	hashCost int,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		verifier: verifier,
		issuer:   issuer,
		hashCost: hashCost,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// SignUp registers a new account, or refreshes the credential of a pending
// account registered under the same contact address, then runs verification.
func (s *AccountService) SignUp(ctx context.Context, req SignUpRequest) (*model.Account, error) {
	contact, err := validateSignUp(req)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}

	existing, err := s.accounts.GetByContact(ctx, contact)
	switch {
	case err == nil && existing.IsVerified():
		return nil, ErrContactTaken
	case err == nil:
		if err := s.accounts.ReplaceCredential(ctx, existing.ID, string(hash)); err != nil {
			return nil, storageFailure("replace credential", err)
		}
		existing.CredentialHash = string(hash)
		return s.verify(ctx, *existing)
	case !errors.Is(err, driven.ErrAccountNotFound):
		return nil, storageFailure("lookup contact", err)
	}

	account := model.Account{
		ID:                s.newID(),
		Handle:            req.Handle,
		ContactAddress:    contact,
		CredentialHash:    string(hash),
		AcceptingMessages: true,
		Verification:      model.VerificationPending,
		CreatedAt:         s.now(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, driven.ErrHandleExists):
			return nil, ErrHandleTaken
		case errors.Is(err, driven.ErrContactExists):
			return nil, ErrContactTaken
		}
		return nil, storageFailure("create account", err)
	}

	s.logger.Info("account registered", "account_id", account.ID, "handle", account.Handle)
	return s.verify(ctx, account)
}

// verify asks the verifier about a pending account and records the transition.
func (s *AccountService) verify(ctx context.Context, account model.Account) (*model.Account, error) {
	if account.IsVerified() {
		return &account, nil
	}

	ok, err := s.verifier.Verify(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("verify account: %w", err)
	}
	if !ok {
		return &account, nil
	}

	if err := s.accounts.SetVerification(ctx, account.ID, model.VerificationVerified); err != nil {
		return nil, storageFailure("mark verified", err)
	}
	account.Verification = model.VerificationVerified
	return &account, nil
}

// SignIn authenticates by handle or contact address and issues a token.
func (s *AccountService) SignIn(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		account *model.Account
		err     error
	)
	if strings.Contains(identifier, "@") {
		account, err = s.accounts.GetByContact(ctx, strings.ToLower(identifier))
	} else {
		account, err = s.accounts.GetByHandle(ctx, identifier)
	}
	if errors.Is(err, driven.ErrAccountNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageFailure("lookup account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.CredentialHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !account.IsVerified() {
		return nil, ErrNotVerified
	}

	token, err := s.issuer.Issue(account.ID, account.Handle)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &Session{AccountID: account.ID, Handle: account.Handle, Token: token}, nil
}

// validateSignUp checks the request shape and returns the normalised contact address.
func validateSignUp(req SignUpRequest) (string, error) {
	if !handlePattern.MatchString(req.Handle) {
		return "", fmt.Errorf("%w: handle must be 2-20 letters, digits or underscores", ErrInvalidSignUp)
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(req.Contact))
	if err != nil || addr.Name != "" {
		return "", fmt.Errorf("%w: invalid contact address", ErrInvalidSignUp)
	}

	if len(req.Password) < minPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidSignUp, minPasswordLength)
	}

	return strings.ToLower(addr.Address), nil
}
