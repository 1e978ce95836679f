package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/McKadeW/COS498-FinalForum/internal/auth"
	"github.com/McKadeW/COS498-FinalForum/internal/models"
	pkghttp "github.com/McKadeW/COS498-FinalForum/pkg/http"
)

// ProfileServiceInterface defines the interface for profile operations
type ProfileServiceInterface interface {
	UpdateProfile(ctx context.Context, userID, sessionID, displayName, profileColor string) (*models.User, error)
}

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	service ProfileServiceInterface
}

func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// UpdateProfileRequest represents the request body for profile updates
type UpdateProfileRequest struct {
	DisplayName  string `json:"display_name" validate:"omitempty,max=64"`
	ProfileColor string `json:"profile_color" validate:"omitempty,hexcolor"`
}

// Me returns the profile attributes held in the caller's session
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	record, ok := auth.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"user_id":       record.Data.UserID,
		"username":      record.Data.Username,
		"display_name":  record.Data.DisplayName,
		"profile_color": record.Data.ProfileColor,
	})
}

// Update changes the caller's display name and profile color. The session
// payload is refreshed in the same call so open pages pick up the change.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	record, ok := auth.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(r.Context(),
		record.Data.UserID, record.SessionID,
		strings.TrimSpace(req.DisplayName), strings.TrimSpace(req.ProfileColor))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Display name cannot match a username")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Account not found")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	})
}
