package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cmips/portal-gateway/internal/infrastructure/upstream"
)

// eventStream writes server-sent events to an echo response.
type eventStream struct {
	res *echo.Response
}

func openEventStream(c echo.Context) *eventStream {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()
	return &eventStream{res: c.Response()}
}

// send writes one event. data is marshalled compactly so it fits on a single
// data line.
func (s *eventStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(s.res, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.res.Flush()
	return nil
}

type streamError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// rejected returns the upstream answer when polling again cannot change it:
// any 4xx except 408 and 429. Transport faults and 5xx answers are retried.
func rejected(err error) (*upstream.StatusError, bool) {
	var se *upstream.StatusError
	if !errors.As(err, &se) {
		return nil, false
	}
	switch {
	case se.Status == http.StatusRequestTimeout, se.Status == http.StatusTooManyRequests:
		return nil, false
	case se.Status >= 400 && se.Status < 500:
		return se, true
	}
	return nil, false
}

// fail writes a terminal "error" event for a rejected upstream call.
func (s *eventStream) fail(se *upstream.StatusError) error {
	return s.send("error", streamError{Status: se.Status, Message: se.Message})
}
