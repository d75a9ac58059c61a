package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	requestKey     = "smpanel.request"
	updateTimeout  = 30 * time.Second
	unexpectedText = "❌ خطای غیرمنتظره‌ای رخ داد. عملیات لغو شد."
)

// request is one inbound update as seen by routers and scenes.
type request struct {
	ctx       context.Context
	out       Responder
	userID    int64
	chatID    int64
	firstName string
	updateID  int
	callback  bool
	answered  bool
}

// answer acknowledges the callback query once; later calls are no-ops.
func (r *request) answer(text string) error {
	if !r.callback || r.answered {
		return nil
	}
	r.answered = true
	if text == "" {
		return r.out.Respond()
	}
	return r.out.Respond(&tele.CallbackResponse{Text: text})
}

// edit replaces the callback message. Re-rendering an unchanged keyboard is not an error.
func (r *request) edit(text string, opts ...interface{}) error {
	err := r.out.Edit(text, opts...)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func (b *Bot) request(c tele.Context) *request {
	if req, ok := c.Get(requestKey).(*request); ok {
		return req
	}
	return newRequest(c)
}

func newRequest(c tele.Context) *request {
	req := &request{ctx: context.Background(), out: c}
	if u := c.Update(); u.ID != 0 {
		req.updateID = u.ID
	}
	if s := c.Sender(); s != nil {
		req.userID = s.ID
		req.firstName = s.FirstName
	}
	if ch := c.Chat(); ch != nil {
		req.chatID = ch.ID
	} else {
		req.chatID = req.userID
	}
	return req
}

// guard serialises updates per user, drops floods and turns handler errors
// and panics into a clean abort of the active scene.
func (b *Bot) guard(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		req := newRequest(c)
		if req.userID == 0 {
			return nil
		}
		req.callback = c.Callback() != nil

		if !b.sessions.Allow(req.userID) {
			b.logger.Debug("update dropped by rate limit", zap.Int64("user_id", req.userID))
			_ = req.answer("")
			return nil
		}

		unlock := b.sessions.Lock(req.userID)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		req.ctx = ctx
		c.Set(requestKey, req)

		return b.protect(req, func() error { return next(c) })
	}
}

// protect runs fn and cleans up after any error or panic it produces.
// The error is consumed here.
func (b *Bot) protect(req *request, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
			b.logger.Error("handler panic", zap.Int64("user_id", req.userID), zap.Any("panic", p), zap.Stack("stack"))
		}
		if err != nil {
			b.abortUpdate(req, err)
			err = nil
		}
	}()
	return fn()
}

func (b *Bot) abortUpdate(req *request, cause error) {
	parent := menuForNav(b.sessions.Nav(req.userID))
	sceneName := ""
	conversationID := ""
	if sess, ok := b.sessions.Get(req.userID); ok {
		sceneName = sess.Scene
		conversationID = sess.ConversationID.String()
		if sc, ok := b.scenes[sess.Scene]; ok {
			parent = sc.parent()
		}
	}
	b.sessions.End(req.userID)

	b.logger.Error("update failed, session cleared",
		zap.Int64("user_id", req.userID),
		zap.String("scene", sceneName),
		zap.String("conversation_id", conversationID),
		zap.Int("update_id", req.updateID),
		zap.Error(cause),
	)

	_ = req.answer("")
	if err := req.out.Send(unexpectedText); err != nil {
		b.logger.Warn("failed to send error notice", zap.Int64("user_id", req.userID), zap.Error(err))
		return
	}
	if err := b.show(req, parent); err != nil {
		b.logger.Warn("failed to show menu after error", zap.Int64("user_id", req.userID), zap.Error(err))
	}
}
