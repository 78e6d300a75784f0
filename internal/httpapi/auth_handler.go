package httpapi

import (
	"errors"
	"net/http"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/identity"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	SignedIn bool   `json:"signedIn"`
	UserID   string `json:"userId,omitempty"`
	Email    string `json:"email,omitempty"`
	Token    string `json:"token,omitempty"`
}

func (h *handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, err := h.app.SignUp(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, identity.ErrInvalidEmail), errors.Is(err, identity.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, "invalid_credentials", err.Error())
		return
	case errors.Is(err, identity.ErrEmailInUse):
		respondError(w, http.StatusConflict, "email_in_use", err.Error())
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("sign up failed")
		respondError(w, http.StatusInternalServerError, "internal", "error creating account")
		return
	}

	respondJSON(w, http.StatusCreated, newSessionResponse(&session))
}

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, err := h.app.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("sign in failed")
		respondError(w, http.StatusInternalServerError, "internal", "error signing in")
		return
	}

	respondJSON(w, http.StatusOK, newSessionResponse(&session))
}

func (h *handler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.app.SignOut(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("sign out failed")
		respondError(w, http.StatusInternalServerError, "internal", "error signing out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getSession(w http.ResponseWriter, _ *http.Request) {
	session := h.app.CurrentSession()

	resp := newSessionResponse(session)
	resp.Token = ""

	respondJSON(w, http.StatusOK, resp)
}

func newSessionResponse(session *domain.Session) sessionResponse {
	if session == nil {
		return sessionResponse{}
	}
	return sessionResponse{
		SignedIn: true,
		UserID:   session.UserID,
		Email:    session.Email,
		Token:    session.Token,
	}
}
