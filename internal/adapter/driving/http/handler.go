package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/anonbox/internal/application"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 16 << 10

// Reason codes for outcomes outside the application taxonomy.
const (
	codeBadRequest         = "bad_request"
	codeUnauthorized       = "unauthorized"
	codeInvalidSignUp      = "invalid_sign_up"
	codeHandleTaken        = "handle_taken"
	codeContactTaken       = "contact_taken"
	codeInvalidCredentials = "invalid_credentials"
	codeNotVerified        = "not_verified"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	accounts    *application.AccountService
	directory   *application.Directory
	gate        *application.AcceptanceGate
	intake      *application.IntakeService
	inbox       *application.InboxService
	suggestions *application.SuggestionService
	tokens      TokenVerifier
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	accounts *application.AccountService,
	directory *application.Directory,
	gate *application.AcceptanceGate,
	intake *application.IntakeService,
	inbox *application.InboxService,
	suggestions *application.SuggestionService,
	tokens TokenVerifier,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		accounts:    accounts,
		directory:   directory,
		gate:        gate,
		intake:      intake,
		inbox:       inbox,
		suggestions: suggestions,
		tokens:      tokens,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("POST /api/v1/sign-up", h.SignUp)
	mux.HandleFunc("POST /api/v1/sign-in", h.SignIn)
	mux.HandleFunc("GET /api/v1/u/{handle}", h.Profile)
	mux.HandleFunc("POST /api/v1/send-message", h.SendMessage)
	mux.HandleFunc("POST /api/v1/suggest-messages", h.SuggestMessages)

	mux.HandleFunc("GET /api/v1/accounts/{handle}/accept-messages", requireOwner(h.tokens, h.GetAcceptMessages))
	mux.HandleFunc("PUT /api/v1/accounts/{handle}/accept-messages", requireOwner(h.tokens, h.SetAcceptMessages))
	mux.HandleFunc("GET /api/v1/accounts/{handle}/messages", requireOwner(h.tokens, h.ListMessages))
	mux.HandleFunc("DELETE /api/v1/accounts/{handle}/messages/{id}", requireOwner(h.tokens, h.DeleteMessage))

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		envelope: ok("ok"),
		Status:   "ok",
		Time:     time.Now().UTC().Format(time.RFC3339),
	})
}

// SignUp registers a new account.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, err := h.accounts.SignUp(r.Context(), application.SignUpRequest{
		Handle:   req.Handle,
		Contact:  req.Contact,
		Password: req.Password,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	msg := "User registered successfully"
	if !account.IsVerified() {
		msg = "User registered successfully. Please verify your account"
	}
	writeJSON(w, http.StatusCreated, SignUpResponse{
		envelope: ok(msg),
		Account:  toAccountResponse(*account),
	})
}

// SignIn authenticates an owner and returns a bearer token.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.accounts.SignIn(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SignInResponse{
		envelope: ok("Signed in"),
		Token:    session.Token,
		Handle:   session.Handle,
	})
}

// Profile returns the public view of a recipient.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	recipient, err := h.directory.Resolve(r.Context(), r.PathValue("handle"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		envelope:            ok(""),
		Handle:              recipient.Handle,
		IsAcceptingMessages: h.gate.Admits(*recipient),
	})
}

// SendMessage runs the anonymous intake pipeline.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.intake.Submit(r.Context(), req.Handle, req.Content); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ok("Message sent successfully"))
}

// SuggestMessages returns a batch of draft prompts. It always succeeds,
// substituting the default batch when live suggestions are unavailable.
func (h *Handler) SuggestMessages(w http.ResponseWriter, r *http.Request) {
	batch, fallback := h.suggestions.SuggestOrDefault(r.Context())

	writeJSON(w, http.StatusOK, SuggestionsResponse{
		envelope:    ok(""),
		Suggestions: batch,
		Fallback:    fallback,
	})
}

// GetAcceptMessages reports the owner's acceptance latch.
func (h *Handler) GetAcceptMessages(w http.ResponseWriter, r *http.Request) {
	who, accountID, found := h.ownerTarget(w, r)
	if !found {
		return
	}

	accepting, err := h.gate.Status(r.Context(), who, accountID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AcceptMessagesResponse{
		envelope:            envelope{Success: true},
		IsAcceptingMessages: accepting,
	})
}

// SetAcceptMessages flips the owner's acceptance latch.
func (h *Handler) SetAcceptMessages(w http.ResponseWriter, r *http.Request) {
	who, accountID, found := h.ownerTarget(w, r)
	if !found {
		return
	}

	var req AcceptMessagesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AcceptMessages == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "accept_messages is required")
		return
	}

	accepting, err := h.gate.Toggle(r.Context(), who, accountID, *req.AcceptMessages)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AcceptMessagesResponse{
		envelope:            envelope{Success: true, Message: "Message acceptance status updated successfully"},
		IsAcceptingMessages: accepting,
	})
}

// ListMessages returns the owner's inbox, newest first.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	who, accountID, found := h.ownerTarget(w, r)
	if !found {
		return
	}

	msgs, err := h.inbox.List(r.Context(), who, accountID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, toMessageResponse(m))
	}

	writeJSON(w, http.StatusOK, MessagesResponse{
		envelope: envelope{Success: true},
		Messages: resp,
	})
}

// DeleteMessage removes one message from the owner's inbox.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	who, accountID, found := h.ownerTarget(w, r)
	if !found {
		return
	}

	if err := h.inbox.Delete(r.Context(), who, accountID, r.PathValue("id")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Message deleted"})
}

// ownerTarget resolves the {handle} path value to an account ID and returns
// it with the caller's identity. Ownership itself is checked by the service.
func (h *Handler) ownerTarget(w http.ResponseWriter, r *http.Request) (application.Identity, string, bool) {
	who, found := identityFrom(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "not authenticated")
		return application.Identity{}, "", false
	}

	recipient, err := h.directory.Resolve(r.Context(), r.PathValue("handle"))
	if err != nil {
		h.writeServiceError(w, err)
		return application.Identity{}, "", false
	}

	return who, recipient.AccountID, true
}

// decodeBody decodes a bounded JSON body into v. On failure it writes a 400
// and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeServiceError maps application errors to HTTP responses. Storage and
// other infrastructure faults are logged and reported generically.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidContent):
		writeError(w, http.StatusBadRequest, application.CodeInvalidContent,
			"Message must be between 10 and 300 characters")
	case errors.Is(err, application.ErrUnknownRecipient):
		writeError(w, http.StatusNotFound, application.CodeUnknownRecipient, "User not found")
	case errors.Is(err, application.ErrNotAccepting):
		writeError(w, http.StatusForbidden, application.CodeNotAccepting, "User is not accepting messages")
	case errors.Is(err, application.ErrForbidden):
		writeError(w, http.StatusForbidden, application.CodeForbidden, "forbidden")
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, application.CodeNotFound, "Message not found or already deleted")
	case errors.Is(err, application.ErrInvalidSignUp):
		writeError(w, http.StatusBadRequest, codeInvalidSignUp, err.Error())
	case errors.Is(err, application.ErrHandleTaken):
		writeError(w, http.StatusConflict, codeHandleTaken, "Username is already taken")
	case errors.Is(err, application.ErrContactTaken):
		writeError(w, http.StatusConflict, codeContactTaken, "User already exists with this email")
	case errors.Is(err, application.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "Incorrect handle or password")
	case errors.Is(err, application.ErrNotVerified):
		writeError(w, http.StatusForbidden, codeNotVerified, "Please verify your account before signing in")
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, application.CodeStorageFailure, "internal server error")
	}
}
