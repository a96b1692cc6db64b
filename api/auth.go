package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/skillfolio/backend/internal/token"
	"github.com/skillfolio/backend/internal/validation"
	"github.com/skillfolio/backend/pkg/models"
	"github.com/skillfolio/backend/pkg/repository"
)

type AuthHandler struct {
	userRepo  repository.UserRepo
	tokenRepo repository.TokenRepo
	tokens    *token.Manager
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, tr repository.TokenRepo, tm *token.Manager) *AuthHandler {
	return &AuthHandler{userRepo: ur, tokenRepo: tr, tokens: tm}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register creates an account from email+password. The username is
// derived from the email local part and disambiguated with -2, -3, ...
// suffixes when taken.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		fieldError(w, "email", "This field is required.")
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		fieldError(w, "email", "Enter a valid email address.")
		return
	}
	if req.Password == "" {
		fieldError(w, "password", "This field is required.")
		return
	}
	if len(req.Password) < 4 {
		fieldError(w, "password", "Ensure this field has at least 4 characters.")
		return
	}

	ctx := r.Context()

	if _, err := h.userRepo.GetUserByEmail(ctx, req.Email); err == nil {
		fieldError(w, "email", "A user with this email already exists.")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		errorDetail(w, http.StatusInternalServerError, "Error creating user.")
		return
	}

	username, err := h.availableUsername(r, validation.UsernameFromEmail(req.Email))
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error creating user.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error hashing password.")
		return
	}

	user := models.User{
		Username:     username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	id, err := h.userRepo.CreateUser(ctx, &user)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error creating user.")
		return
	}

	writeJSON(w, registerResponse{ID: id, Username: username, Email: req.Email}, http.StatusCreated)
}

// availableUsername resolves collisions case-insensitively: base, then
// base-2, base-3, ...
func (h *AuthHandler) availableUsername(r *http.Request, base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		taken, err := h.userRepo.UsernameExists(r.Context(), candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

type loginRequest struct {
	EmailOrUsername string `json:"email_or_username"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
}

type loginResponse struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Login accepts an email or a username under any of the three request
// keys and returns a fresh token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	identity := strings.TrimSpace(req.EmailOrUsername)
	if identity == "" {
		identity = strings.TrimSpace(req.Email)
	}
	if identity == "" {
		identity = strings.TrimSpace(req.Username)
	}
	if identity == "" || req.Password == "" {
		fieldErrorsForLogin(w, identity, req.Password)
		return
	}

	ctx := r.Context()

	var user *models.User
	var err error
	if strings.Contains(identity, "@") {
		user, err = h.userRepo.GetUserByEmail(ctx, identity)
		if errors.Is(err, repository.ErrNotFound) {
			user, err = h.userRepo.GetUserByUsername(ctx, identity)
		}
	} else {
		user, err = h.userRepo.GetUserByUsername(ctx, identity)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error signing in.")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		errorDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	access, err := h.tokens.Access(user.ID, user.Username)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error signing token.")
		return
	}
	refresh, err := h.tokens.Refresh(user.ID)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error signing token.")
		return
	}

	writeJSON(w, loginResponse{
		Access:   access,
		Refresh:  refresh,
		Username: user.Username,
		Email:    user.Email,
	}, http.StatusOK)
}

func fieldErrorsForLogin(w http.ResponseWriter, identity, password string) {
	missing := map[string]string{}
	if identity == "" {
		missing["email_or_username"] = "This field is required."
	}
	if password == "" {
		missing["password"] = "This field is required."
	}
	fieldErrors(w, http.StatusBadRequest, missing)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh exchanges a valid, non-blacklisted refresh token for a new
// access token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Refresh == "" {
		fieldError(w, "refresh", "This field is required.")
		return
	}

	claims, err := h.tokens.ParseOfType(req.Refresh, token.TypeRefresh)
	if err != nil {
		errorDetail(w, http.StatusUnauthorized, "Token is invalid or expired.")
		return
	}

	black, err := h.tokenRepo.IsTokenBlacklisted(r.Context(), claims.JTI)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error checking token.")
		return
	}
	if black {
		errorDetail(w, http.StatusUnauthorized, "Token is blacklisted.")
		return
	}

	user, err := h.userRepo.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		errorDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	access, err := h.tokens.Access(user.ID, user.Username)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error signing token.")
		return
	}

	writeJSON(w, map[string]string{"access": access}, http.StatusOK)
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// Logout blacklists the caller's refresh token. The token must belong to
// the authenticated caller; a mismatch is rejected and leaves the token
// usable.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req logoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Refresh == "" {
		errorDetail(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	claims, err := h.tokens.ParseOfType(req.Refresh, token.TypeRefresh)
	if err != nil {
		errorDetail(w, http.StatusBadRequest, "Invalid refresh token.")
		return
	}
	if claims.UserID != caller {
		errorDetail(w, http.StatusForbidden, "Refresh token does not belong to the authenticated user.")
		return
	}

	if err := h.tokenRepo.BlacklistToken(r.Context(), claims.JTI, caller, claims.ExpiresAt.UnixMilli()); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error revoking token.")
		return
	}

	writeJSON(w, map[string]string{"detail": "Successfully logged out."}, http.StatusResetContent)
}

type meResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	user, err := h.userRepo.GetUserByID(r.Context(), caller)
	if err != nil {
		errorDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	writeJSON(w, meResponse{ID: user.ID, Username: user.Username, Email: user.Email}, http.StatusOK)
}

type updateMeRequest struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
}

// UpdateMe handles PUT and PATCH identically: only supplied fields
// change.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req updateMeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	user, err := h.userRepo.GetUserByID(ctx, caller)
	if err != nil {
		errorDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if err := validation.ValidateEmail(email); err != nil {
			fieldError(w, "email", "Enter a valid email address.")
			return
		}
		if other, err := h.userRepo.GetUserByEmail(ctx, email); err == nil && other.ID != caller {
			fieldError(w, "email", "A user with this email already exists.")
			return
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusInternalServerError, "Error updating user.")
			return
		}
		user.Email = email
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			fieldError(w, "username", "This field may not be blank.")
			return
		}
		if other, err := h.userRepo.GetUserByUsername(ctx, username); err == nil && other.ID != caller {
			fieldError(w, "username", "A user with that username already exists.")
			return
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusInternalServerError, "Error updating user.")
			return
		}
		user.Username = username
	}

	if err := h.userRepo.UpdateUser(ctx, user); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error updating user.")
		return
	}

	writeJSON(w, meResponse{ID: user.ID, Username: user.Username, Email: user.Email}, http.StatusOK)
}

func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	if err := h.userRepo.DeleteUser(r.Context(), caller); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		errorDetail(w, http.StatusInternalServerError, "Error deleting user.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		errorDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" {
		fieldError(w, "current_password", "This field is required.")
		return
	}
	if req.NewPassword == "" {
		fieldError(w, "new_password", "This field is required.")
		return
	}

	ctx := r.Context()
	user, err := h.userRepo.GetUserByID(ctx, caller)
	if err != nil {
		errorDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		fieldError(w, "current_password", "Wrong password.")
		return
	}
	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		fieldError(w, "new_password", err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error hashing password.")
		return
	}
	if err := h.userRepo.UpdatePassword(ctx, caller, string(hash)); err != nil {
		errorDetail(w, http.StatusInternalServerError, "Error updating password.")
		return
	}

	writeJSON(w, map[string]string{"detail": "Password changed successfully."}, http.StatusOK)
}
