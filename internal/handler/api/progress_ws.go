package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	xhttp "StockScribe/pkg/http"
	xlogger "StockScribe/pkg/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsEventBuf   = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Progress streams run events over a WebSocket. Past events for the run
// are replayed first, then live ones until the run finishes or the
// client hangs up.
func (h *GenerateEchoHandler) Progress(c echo.Context) error {
	runID := c.QueryParam("run_id")
	if runID == "" {
		return xhttp.BadRequestResponse(c, map[string]string{"run_id": "run_id is required"})
	}
	col, done, ok := h.progress.Get(runID)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("Unknown run ID."))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the handshake error.
		h.logger.Warn("progress ws upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	writeEvent := func(ev xlogger.RunEvent) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(ev)
	}
	closeNormal := func() {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run complete"))
	}

	if done {
		for _, ev := range col.Events() {
			if err := writeEvent(ev); err != nil {
				return nil
			}
		}
		closeNormal()
		return nil
	}

	past, live, cancel := col.Replay(wsEventBuf)
	defer cancel()

	for _, ev := range past {
		if err := writeEvent(ev); err != nil {
			return nil
		}
	}

	// Reader loop detects the client hanging up and feeds the pong handler.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case ev, more := <-live:
			if !more {
				closeNormal()
				return nil
			}
			if err := writeEvent(ev); err != nil {
				return nil
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-clientGone:
			return nil
		}
	}
}
