package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code, reason
// code, and message.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		envelope: envelope{Success: false, Message: message},
		Code:     code,
	})
}

// envelope is embedded in every response body.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(message string) envelope {
	return envelope{Success: true, Message: message}
}

// errorResponse is the standard error response body.
type errorResponse struct {
	envelope
	Code string `json:"code,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	envelope
	Status string `json:"status"`
	Time   string `json:"time"`
}

// SignUpRequest is the JSON body for the sign-up endpoint.
type SignUpRequest struct {
	Handle   string `json:"handle"`
	Contact  string `json:"contact"`
	Password string `json:"password"`
}

// AccountResponse is the owner-facing representation of an account. It never
// carries the credential hash.
type AccountResponse struct {
	ID                  string `json:"id"`
	Handle              string `json:"handle"`
	Contact             string `json:"contact"`
	Verified            bool   `json:"verified"`
	IsAcceptingMessages bool   `json:"is_accepting_messages"`
	CreatedAt           string `json:"created_at"`
}

// SignUpResponse wraps the created account.
type SignUpResponse struct {
	envelope
	Account AccountResponse `json:"account"`
}

// SignInRequest is the JSON body for the sign-in endpoint. Identifier is a
// handle or a contact address.
type SignInRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SignInResponse carries the bearer token for owner routes.
type SignInResponse struct {
	envelope
	Token  string `json:"token"`
	Handle string `json:"handle"`
}

// ProfileResponse is the public view of a recipient.
type ProfileResponse struct {
	envelope
	Handle              string `json:"handle"`
	IsAcceptingMessages bool   `json:"is_accepting_messages"`
}

// SendMessageRequest is the JSON body for the anonymous send endpoint.
type SendMessageRequest struct {
	Handle  string `json:"handle"`
	Content string `json:"content"`
}

// SuggestionsResponse carries a prompt batch. Fallback is true when the
// default batch was substituted.
type SuggestionsResponse struct {
	envelope
	Suggestions []string `json:"suggestions"`
	Fallback    bool     `json:"fallback"`
}

// AcceptMessagesRequest is the JSON body for the toggle endpoint.
type AcceptMessagesRequest struct {
	AcceptMessages *bool `json:"accept_messages"`
}

// AcceptMessagesResponse reports the acceptance latch.
type AcceptMessagesResponse struct {
	envelope
	IsAcceptingMessages bool `json:"is_accepting_messages"`
}

// MessageResponse is the JSON representation of a received message.
type MessageResponse struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	ContentHTML string `json:"content_html"`
	CreatedAt   string `json:"created_at"`
}

// MessagesResponse lists an inbox, newest first.
type MessagesResponse struct {
	envelope
	Messages []MessageResponse `json:"messages"`
}

// toAccountResponse converts a domain Account to its JSON representation.
func toAccountResponse(a model.Account) AccountResponse {
	return AccountResponse{
		ID:                  a.ID,
		Handle:              a.Handle,
		Contact:             a.ContactAddress,
		Verified:            a.IsVerified(),
		IsAcceptingMessages: a.AcceptingMessages,
		CreatedAt:           a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toMessageResponse converts a domain Message to its JSON representation,
// rendering the content as sanitized HTML alongside the raw text.
func toMessageResponse(m model.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		Content:     m.Content,
		ContentHTML: RenderMarkdown(m.Content),
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
