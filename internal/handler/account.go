package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/wine-dine/internal/middleware"
	"github.com/iliyamo/wine-dine/internal/model"
	"github.com/iliyamo/wine-dine/internal/queue"
	"github.com/iliyamo/wine-dine/internal/repository"
	"github.com/iliyamo/wine-dine/internal/utils"
)

// resetPath is the front end page that completes a password reset.
const resetPath = "/admin-reset"

// RequestPasswordReset stores a one-time reset token and publishes the reset
// link to the admin notification channel.  Unknown addresses get the same
// 202 so the endpoint does not reveal which accounts exist.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email != "" && !model.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if h.Resets == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "password reset unavailable"})
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	accepted := echo.Map{"status": "accepted"}
	u, err := h.lookup(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusAccepted, accepted)
		}
		return storeFailed(c, h.Log, "load user", err)
	}

	raw, err := utils.RandomHex(32)
	if err != nil {
		return storeFailed(c, h.Log, "generate reset token", err)
	}
	ttl := h.Cfg.ResetTTL
	if err := h.Resets.Save(ctx, utils.HashToken(raw), u.ID, ttl); err != nil {
		return storeFailed(c, h.Log, "save reset token", err)
	}
	_ = h.Events.Publish(ctx, queue.TypePasswordResetRequested, queue.PasswordResetRequested{
		Email:     u.Email,
		ResetURL:  h.resetURL(raw),
		ExpiresAt: time.Now().UTC().Add(ttl),
	})
	return c.JSON(http.StatusAccepted, accepted)
}

func (h *AuthHandler) resetURL(token string) string {
	return strings.TrimRight(h.Cfg.PublicBaseURL, "/") + resetPath + "?token=" + url.QueryEscape(token)
}

// ConfirmPasswordReset consumes a reset token, sets the new password and
// signs out every session of the account.
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var req resetConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}
	if err := utils.CheckPassword(req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if h.Resets == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "password reset unavailable"})
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	userID, err := h.Resets.Consume(ctx, utils.HashToken(req.Token))
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenInvalid) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return storeFailed(c, h.Log, "consume reset token", err)
	}
	if err := h.Users.UpdatePassword(ctx, userID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return storeFailed(c, h.Log, "update password", err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		h.Log.Warn("revoke sessions after reset failed", zap.Uint64("user_id", userID), zap.Error(err))
	}
	return c.NoContent(http.StatusNoContent)
}

// currentUser loads the signed-in account and checks password against it.
// On failure the response has already been written and ok is false.
func (h *AuthHandler) currentUser(c echo.Context, password string) (u model.User, ok bool, err error) {
	id, found := middleware.CurrentIdentity(c)
	if !found {
		return u, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	u, err = h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "please sign in again"})
		}
		return u, false, storeFailed(c, h.Log, "load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return u, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
	}
	return u, true, nil
}

// ChangeEmail moves the admin account to a new address after re-checking
// the current password.
func (h *AuthHandler) ChangeEmail(c echo.Context) error {
	var req changeEmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.NewEmail = strings.ToLower(strings.TrimSpace(req.NewEmail))
	if !model.ValidEmail(req.NewEmail) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}

	u, ok, err := h.currentUser(c, req.CurrentPassword)
	if !ok {
		return err
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.Users.UpdateEmail(ctx, u.ID, req.NewEmail); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already in use"})
		}
		return storeFailed(c, h.Log, "update email", err)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: req.NewEmail, Role: u.Role})
}

// ChangePassword sets a new password after re-checking the current one and
// revokes the account's refresh tokens.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.NewPassword != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passwords do not match"})
	}
	if err := utils.CheckPassword(req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	u, ok, err := h.currentUser(c, req.CurrentPassword)
	if !ok {
		return err
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return storeFailed(c, h.Log, "update password", err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, u.ID); err != nil {
		h.Log.Warn("revoke sessions after password change failed", zap.Uint64("user_id", u.ID), zap.Error(err))
	}
	return c.NoContent(http.StatusNoContent)
}
