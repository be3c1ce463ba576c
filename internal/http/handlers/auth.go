package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-library-catalog/internal/errors"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := readObject(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if _, err := h.svc.Register(r.Context(), in.Email, in.Password); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteMessage(w, http.StatusCreated, "User registered successfully!")
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := readObject(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	token, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	apierrors.WriteMessage(w, http.StatusOK, "Welcome, "+id.Email+"!")
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	if err := h.svc.Logout(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteMessage(w, http.StatusOK, "Logout successful!")
}
