package bot

import (
	"fmt"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"smpanel/internal/pkg/utils"
	"smpanel/internal/session"
)

const (
	cancelCommand  = "/cancel"
	cancelledText  = "❌ عملیات لغو شد."
	useButtonsText = "لطفاً از دکمه‌های ارائه شده استفاده کنید."
)

// scene is one multi-step form. A scene owns the user's session from
// start until it calls endScene; while the session exists every text and
// callback of the user is routed to it.
type scene interface {
	name() string
	// parent is the menu shown when the scene ends.
	parent() MenuKind
	start(req *request) error
	onText(req *request, sess *session.Session, text string) error
	onCallback(req *request, sess *session.Session, data string) error
}

func (b *Bot) begin(req *request, sc scene, step int, form any) *session.Session {
	sess := b.sessions.Begin(req.userID, sc.name(), step, form)
	b.logger.Info("scene started", zap.Int64("user_id", req.userID), zap.String("scene", sc.name()), conversation(sess))
	return sess
}

// conversation tags a log line with the session's conversation id.
func conversation(sess *session.Session) zap.Field {
	return zap.Stringer("conversation_id", sess.ConversationID)
}

// endScene clears the session, sends text when given and shows the parent menu.
// It is used for commits and for aborts alike.
func (b *Bot) endScene(req *request, sc scene, text string) error {
	b.sessions.End(req.userID)
	if text != "" {
		if err := req.out.Send(text); err != nil {
			return err
		}
	}
	return b.show(req, sc.parent())
}

// endSceneEdit is endScene for callback steps: text replaces the inline message.
func (b *Bot) endSceneEdit(req *request, sc scene, text string) error {
	b.sessions.End(req.userID)
	if err := req.edit(text); err != nil {
		return err
	}
	return b.showWithChatID(req, sc.parent())
}

func (b *Bot) show(req *request, kind MenuKind) error {
	return b.menus.Show(req.ctx, req.out, req.userID, kind)
}

func (b *Bot) showWithChatID(req *request, kind MenuKind) error {
	return b.menus.ShowWithChatID(req.ctx, req.chatID, kind, true)
}

// inlineRows builds an inline keyboard from rows of (text, callback data) pairs.
func inlineRows(rows ...[]inlineButton) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	out := make([]tele.Row, 0, len(rows))
	for _, r := range rows {
		btns := make([]tele.Btn, 0, len(r))
		for _, btn := range r {
			btns = append(btns, markup.Data(btn.text, btn.data))
		}
		out = append(out, markup.Row(btns...))
	}
	markup.Inline(out...)
	return markup
}

type inlineButton struct {
	text string
	data string
}

func button(text, data string) []inlineButton {
	return []inlineButton{{text: text, data: data}}
}

func checkbox(selected bool) string {
	if selected {
		return "☑️"
	}
	return "⬜️"
}

func idData(prefix string, id uint) string {
	return fmt.Sprintf("%s%d", prefix, id)
}

// idFrom parses the numeric suffix of callback data such as "dc_item_12".
func idFrom(data, prefix string) (uint, bool) {
	if len(data) <= len(prefix) || data[:len(prefix)] != prefix {
		return 0, false
	}
	return utils.ParseUint(data[len(prefix):])
}

func gbText(v int) string {
	if v > 0 {
		return fmt.Sprintf("%d گیگابایت", v)
	}
	return "نامحدود"
}

func daysText(v int) string {
	if v > 0 {
		return fmt.Sprintf("%d روز", v)
	}
	return "نامحدود"
}

func tomanText(v float64) string {
	return utils.FormatPrice(v) + " تومان"
}
