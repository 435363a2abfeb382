package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"elsahm-admin/apperr"
	"elsahm-admin/threadsync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

type liveMessage struct {
	Action string `json:"action"`
}

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range h.opts.Origins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
}

// ComplaintLive streams thread updates of one complaint over a websocket.
// The client may send {"action":"pause"} or {"action":"resume"}; closing
// the socket stops the underlying source.
func (h *Handler) ComplaintLive(c *gin.Context) {
	complaintID := c.Param("id")

	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade live connection for complaint %s: %v", complaintID, err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	session := threadsync.NewSession(complaintID, h.opts.LiveSource, threadsync.NewSynchronizer(h.opts.AlertDuration))
	h.opts.Hub.Join(session)
	defer h.opts.Hub.Leave(session)

	go func() {
		defer cancel()
		conn.SetReadLimit(maxMessageSize)
		for {
			var msg liveMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("Live connection for complaint %s closed: %v", complaintID, err)
				}
				return
			}
			if !session.Control(msg.Action) {
				log.Printf("Ignoring live action %q for complaint %s", msg.Action, complaintID)
			}
		}
	}()

	err = session.Run(ctx, func(ev threadsync.Event) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(ev)
	})

	code, reason := websocket.CloseNormalClosure, ""
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, threadsync.ErrSourceClosed):
		reason = "complaint not found"
	default:
		log.Printf("Live session for complaint %s ended: %v", complaintID, err)
		code, reason = websocket.CloseInternalServerErr, "live updates unavailable"
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}
