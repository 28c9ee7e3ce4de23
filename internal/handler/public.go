package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/wine-dine/internal/menu"
	"github.com/iliyamo/wine-dine/internal/model"
	"github.com/iliyamo/wine-dine/internal/moderation"
	"github.com/iliyamo/wine-dine/internal/queue"
	"github.com/iliyamo/wine-dine/internal/service"
)

// PublicHandler serves the unauthenticated pages: menu, reviews and the
// contact form.
type PublicHandler struct {
	Menu      MenuStore
	Moderator *moderation.Moderator
	Events    service.Publisher
	Log       *zap.Logger
}

func NewPublicHandler(m MenuStore, mod *moderation.Moderator, events service.Publisher, log *zap.Logger) *PublicHandler {
	if events == nil {
		events = service.NopPublisher{}
	}
	return &PublicHandler{Menu: m, Moderator: mod, Events: events, Log: log}
}

// Categories returns the fixed category enumeration.
func (h *PublicHandler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": model.Categories})
}

// MenuQuery reads ?q= and the repeated or comma separated ?category= values.
// q is passed through untrimmed.
func MenuQuery(c echo.Context) menu.Query {
	q := menu.Query{Search: c.QueryParam("q")}
	for _, raw := range c.QueryParams()["category"] {
		for _, cat := range strings.Split(raw, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				q.Categories = append(q.Categories, cat)
			}
		}
	}
	return q
}

// BrowseMenu returns the filtered menu as an ordered list of category groups.
func (h *PublicHandler) BrowseMenu(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	items, err := h.Menu.List(ctx)
	if err != nil {
		return storeFailed(c, h.Log, "list menu", err)
	}
	groups := menu.Filter(items, MenuQuery(c))
	return c.JSON(http.StatusOK, echo.Map{"groups": groups, "count": groups.Count()})
}

// Reviews lists approved reviews, newest first.
func (h *PublicHandler) Reviews(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	reviews, err := h.Moderator.PublicReviews(ctx)
	if err != nil {
		return storeFailed(c, h.Log, "list reviews", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": reviews})
}

// SubmitReview stores a pending review and notifies the admin.
func (h *PublicHandler) SubmitReview(c echo.Context) error {
	var in model.ReviewInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	r, err := h.Moderator.SubmitReview(ctx, in)
	if err != nil {
		return fail(c, h.Log, "create review", err)
	}
	_ = h.Events.Publish(ctx, queue.TypeReviewSubmitted, queue.ReviewSubmitted{
		ReviewID: r.ID, Name: r.Name, Rating: r.Rating, Comment: r.Comment,
	})
	return c.JSON(http.StatusCreated, echo.Map{"id": r.ID})
}

// SubmitContact stores an unread contact message and notifies the admin.
func (h *PublicHandler) SubmitContact(c echo.Context) error {
	var in model.ContactInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	m, err := h.Moderator.SubmitMessage(ctx, in)
	if err != nil {
		return fail(c, h.Log, "create message", err)
	}
	_ = h.Events.Publish(ctx, queue.TypeContactReceived, queue.ContactReceived{
		MessageID: m.ID, Name: m.Name, Email: m.Email, Message: m.Message,
	})
	return c.JSON(http.StatusCreated, echo.Map{"id": m.ID})
}
