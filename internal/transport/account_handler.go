package transport

import (
	"net/http"

	"storefront/internal/feedback"
	"storefront/internal/user"
	"storefront/internal/utils"
)

func (h *Handler) createFeedback(w http.ResponseWriter, r *http.Request) {
	var input feedback.Feedback
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := h.feedback.Submit(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, saved)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var input user.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    u,
	})
}

type loginUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var input user.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	token, u, err := h.users.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    loginUser{ID: u.ID, Name: u.Name, Email: u.Email},
	})
}
