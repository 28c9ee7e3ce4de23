// Package handler exposes the HTTP handlers of the public site and the
// admin back office.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/wine-dine/internal/model"
	"github.com/iliyamo/wine-dine/internal/repository"
)

// storeTimeout bounds every content store round trip made by a handler.
const storeTimeout = 5 * time.Second

// MenuStore is the menu item collection of the content store.  List returns
// items ordered by category.
type MenuStore interface {
	Create(ctx context.Context, it *model.MenuItem) error
	List(ctx context.Context) ([]model.MenuItem, error)
	Delete(ctx context.Context, id string) error
}

func storeCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// invalid answers 400 with the per-field messages of a validation error.
// It returns false when err is not a validation error.
func invalid(c echo.Context, err error) (bool, error) {
	var verrs model.ValidationErrors
	if !errors.As(err, &verrs) {
		return false, nil
	}
	return true, c.JSON(http.StatusBadRequest, echo.Map{
		"error":  "validation failed",
		"fields": verrs.Fields(),
	})
}

// storeFailed logs a failed store call and answers with the generic error.
// A missing record is reported as 404.
func storeFailed(c echo.Context, log *zap.Logger, op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	log.Error("store operation failed",
		zap.String("op", op),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
}

// fail routes err to invalid or storeFailed.
func fail(c echo.Context, log *zap.Logger, op string, err error) error {
	if ok, rerr := invalid(c, err); ok {
		return rerr
	}
	return storeFailed(c, log, op, err)
}
