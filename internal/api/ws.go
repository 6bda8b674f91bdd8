package api

import (
	"context"

	"github.com/gofiber/websocket/v2"
)

// chatListSocket streams the viewer's visible chat list. The socket
// authenticates with a token query parameter since browsers cannot set
// headers on WebSocket upgrades.
func (h *Handlers) chatListSocket(v *TokenValidator) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		defer conn.Close()
		uid, err := v.Validate(conn.Query("token"))
		if err != nil {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go watchClose(conn, cancel)

		stream, err := h.visibility.SubscribeChats(ctx, uid)
		if err != nil {
			h.log.Warnw("chat list subscribe", "user", uid, "err", err)
			return
		}
		for chats := range stream {
			if err := conn.WriteJSON(chats); err != nil {
				return
			}
		}
	}
}

// messagesSocket streams one chat's ordered message list.
func (h *Handlers) messagesSocket(v *TokenValidator) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		defer conn.Close()
		if _, err := v.Validate(conn.Query("token")); err != nil {
			return
		}
		chatID := conn.Params("chat_id")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go watchClose(conn, cancel)

		stream, err := h.messages.Subscribe(ctx, chatID)
		if err != nil {
			h.log.Warnw("messages subscribe", "chat", chatID, "err", err)
			return
		}
		for msgs := range stream {
			if err := conn.WriteJSON(msgs); err != nil {
				return
			}
		}
	}
}

// watchClose cancels the stream as soon as the peer goes away, so the hub
// slot is released promptly.
func watchClose(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
