package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/wine-dine/internal/imagehost"
	"github.com/iliyamo/wine-dine/internal/menu"
	"github.com/iliyamo/wine-dine/internal/model"
	"github.com/iliyamo/wine-dine/internal/moderation"
)

// AdminHandler serves the back office: menu management, review moderation
// and the contact inbox.  All routes sit behind the session gate.
type AdminHandler struct {
	Menu      MenuStore
	Moderator *moderation.Moderator
	Images    imagehost.Uploader // nil when no image host is configured
	MaxUpload int64
	Log       *zap.Logger
}

func NewAdminHandler(m MenuStore, mod *moderation.Moderator, images imagehost.Uploader, maxUpload int64, log *zap.Logger) *AdminHandler {
	return &AdminHandler{Menu: m, Moderator: mod, Images: images, MaxUpload: maxUpload, Log: log}
}

// ----- menu -----

// ListMenu returns every menu item grouped by category, unfiltered.
func (h *AdminHandler) ListMenu(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	items, err := h.Menu.List(ctx)
	if err != nil {
		return storeFailed(c, h.Log, "list menu", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"groups": menu.GroupByCategory(items)})
}

// CreateMenuItem validates the form and stores the item.  Invalid input
// never reaches the store.
func (h *AdminHandler) CreateMenuItem(c echo.Context) error {
	var in model.MenuItemInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	it, err := in.Validate()
	if err != nil {
		return fail(c, h.Log, "validate menu item", err)
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.Menu.Create(ctx, &it); err != nil {
		return storeFailed(c, h.Log, "create menu item", err)
	}
	return c.JSON(http.StatusCreated, it)
}

// DeleteMenuItem removes an item.  Deleting a missing item succeeds.
func (h *AdminHandler) DeleteMenuItem(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.Menu.Delete(ctx, c.Param("id")); err != nil {
		return storeFailed(c, h.Log, "delete menu item", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage forwards the multipart "file" to the image host and returns
// the public URL for the menu form.
func (h *AdminHandler) UploadImage(c echo.Context) error {
	if h.Images == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "image uploads are not configured"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	contentType := fh.Header.Get(echo.HeaderContentType)
	if err := imagehost.CheckContentType(contentType); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if h.MaxUpload > 0 && fh.Size > h.MaxUpload {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": imagehost.ErrTooLarge.Error()})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read file"})
	}
	defer f.Close()

	url, err := h.Images.Upload(c.Request().Context(), fh.Filename, contentType, f)
	switch {
	case errors.Is(err, imagehost.ErrNotImage), errors.Is(err, imagehost.ErrTooLarge):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case err != nil:
		h.Log.Error("image upload failed", zap.String("filename", fh.Filename), zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": imagehost.ErrUploadFailed.Error()})
	}
	return c.JSON(http.StatusCreated, echo.Map{"url": url})
}

// ----- reviews -----

// PendingReviews lists reviews awaiting a decision, newest first.
func (h *AdminHandler) PendingReviews(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	reviews, err := h.Moderator.PendingReviews(ctx)
	if err != nil {
		return storeFailed(c, h.Log, "list pending reviews", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": reviews})
}

// ApproveReview publishes a review.  Approving twice is not an error.
func (h *AdminHandler) ApproveReview(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.Moderator.ApproveReview(ctx, c.Param("id")); err != nil {
		return storeFailed(c, h.Log, "approve review", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RejectReview deletes a review whatever its state.
func (h *AdminHandler) RejectReview(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.Moderator.RejectReview(ctx, c.Param("id")); err != nil {
		return storeFailed(c, h.Log, "reject review", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- messages -----

// Messages lists the contact inbox, newest first, with the unread count.
func (h *AdminHandler) Messages(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	msgs, err := h.Moderator.ListMessages(ctx)
	if err != nil {
		return storeFailed(c, h.Log, "list messages", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": msgs, "unread": moderation.UnreadCount(msgs)})
}

// MarkMessageRead flips a message to read.  Repeating it is not an error.
func (h *AdminHandler) MarkMessageRead(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.Moderator.MarkMessageRead(ctx, c.Param("id")); err != nil {
		return storeFailed(c, h.Log, "mark message read", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteMessage removes a message in either state.
func (h *AdminHandler) DeleteMessage(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.Moderator.DeleteMessage(ctx, c.Param("id")); err != nil {
		return storeFailed(c, h.Log, "delete message", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- panel -----

// Dashboard is the admin panel view.  The session gate redirects
// anonymous visitors before this runs.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	pending, err := h.Moderator.PendingReviews(ctx)
	if err != nil {
		return storeFailed(c, h.Log, "list pending reviews", err)
	}
	items, err := h.Menu.List(ctx)
	if err != nil {
		return storeFailed(c, h.Log, "list menu", err)
	}
	msgs, err := h.Moderator.ListMessages(ctx)
	if err != nil {
		return storeFailed(c, h.Log, "list messages", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"pending_reviews": pending,
		"menu":            menu.GroupByCategory(items),
		"messages":        msgs,
		"unread":          moderation.UnreadCount(msgs),
	})
}

// LoginView tells the browser how to sign in.  It is where the session
// gate sends anonymous visitors.
func LoginView(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"login":          "POST /v1/auth/login",
		"fields":         []string{"email", "password"},
		"password_reset": "POST /v1/auth/password-reset",
		"next":           "/admin",
	})
}
