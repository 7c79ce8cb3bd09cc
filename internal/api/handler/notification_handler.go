package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/core/ports"
	"github.com/cmips/portal-gateway/internal/infrastructure/poller"
)

// NotificationHandler serves the notification center and the unread badge.
type NotificationHandler struct {
	client ports.NotificationClient
	poll   poller.Config
	log    zerolog.Logger
}

func NewNotificationHandler(client ports.NotificationClient, poll poller.Config, log zerolog.Logger) *NotificationHandler {
	poll.Name = "notifications"
	return &NotificationHandler{client: client, poll: poll, log: log}
}

type unreadCountResponse struct {
	Count int `json:"count"`
}

// List handles GET /api/notifications.
//
// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {array}   object
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	body, err := h.client.ListNotifications(c.Request().Context(), sess.Token, sess.User.UserID)
	if err != nil {
		return err
	}
	return rawJSON(c, http.StatusOK, body)
}

// UnreadCount handles GET /api/notifications/unread-count.
//
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  unreadCountResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	n, err := h.client.UnreadCount(c.Request().Context(), sess.Token, sess.User.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unreadCountResponse{Count: n})
}

// MarkRead handles PUT /api/notifications/:id/read.
//
// @Summary      Mark one notification as read
// @Tags         notifications
// @Param        id   path  string  true  "Notification id"
// @Success      204
// @Router       /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}
	if err := h.client.MarkRead(c.Request().Context(), sess.Token, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles PUT /api/notifications/read-all.
//
// @Summary      Mark every notification as read
// @Tags         notifications
// @Success      204
// @Router       /api/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.client.MarkAllRead(c.Request().Context(), sess.Token, sess.User.UserID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stream handles GET /api/notifications/stream. It pushes an "unread-count"
// event whenever the count changes, polling until the client disconnects or
// the backend rejects the request, which ends the stream with an "error" event.
//
// @Summary      Stream the unread notification count
// @Tags         notifications
// @Produce      text/event-stream
// @Router       /api/notifications/stream [get]
func (h *NotificationHandler) Stream(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	stream := openEventStream(c)
	last := -1
	err = poller.New(h.poll, h.log).Run(c.Request().Context(), func(ctx context.Context) error {
		n, err := h.client.UnreadCount(ctx, sess.Token, sess.User.UserID)
		if se, ok := rejected(err); ok {
			if err := stream.fail(se); err != nil {
				return err
			}
			return poller.ErrStop
		}
		if err != nil {
			return err
		}
		if n == last {
			return nil
		}
		last = n
		return stream.send("unread-count", unreadCountResponse{Count: n})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.log.Warn().Err(err).Str("user", sess.User.Username).Msg("notification stream ended")
	}
	return nil
}
