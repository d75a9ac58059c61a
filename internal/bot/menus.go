package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"smpanel/internal/middleware"
	"smpanel/internal/session"
)

// MenuKind names one reply keyboard.
type MenuKind int

const (
	MenuMain MenuKind = iota
	MenuAdmin
	MenuShop
	// MenuShopBack is the keyboard shown inside shop scenes.
	MenuShopBack
	// MenuAdminBack is the keyboard shown while adding a panel.
	MenuAdminBack
	MenuEditOptions
	MenuExtraVolume
	MenuExtraVolumeBack
)

// MenuDebounce is how long a repeated show of the same menu is suppressed.
const MenuDebounce = time.Second

type menuSpec struct {
	name string
	text string
	rows [][]Action
	// nav is set for the three navigation menus only.
	nav session.Nav
}

var menuSpecs = map[MenuKind]menuSpec{
	MenuMain: {
		name: "main",
		text: "به ربات مدیریت پنل های SMPanel خوش آمدید.\nلطفا یکی از گزینه های زیر را انتخاب کنید:",
		rows: [][]Action{{ActionOpenAdmin}},
		nav:  session.NavMain,
	},
	MenuAdmin: {
		name: "admin",
		text: "👨‍🔧 بخش مدیریت:\nلطفا یکی از گزینه های زیر را انتخاب کنید:",
		rows: [][]Action{
			{ActionStats},
			{ActionManagePanels, ActionAddPanel},
			{ActionTestAccount},
			{ActionFinance, ActionOpenShop},
			{ActionBackToMain},
		},
		nav: session.NavAdmin,
	},
	MenuShop: {
		name: "shop",
		text: "🏪 بخش فروشگاه:\nلطفا یکی از گزینه های زیر را انتخاب کنید:",
		rows: [][]Action{
			{ActionDeleteProduct, ActionAddProduct},
			{ActionDeleteCategory, ActionAddCategory},
			{ActionEditProduct},
			{ActionExtraVolume},
			{ActionDeleteGiftCode, ActionCreateGiftCode},
			{ActionDeleteDiscount, ActionCreateDiscount},
			{ActionBackToAdmin},
		},
		nav: session.NavShop,
	},
	MenuShopBack: {
		name: "shop_back",
		rows: [][]Action{{ActionBackToShop}},
	},
	MenuAdminBack: {
		name: "admin_back",
		rows: [][]Action{{ActionBackToAdminSection}},
	},
	MenuEditOptions: {
		name: "edit_options",
		text: "لطفاً بخش مورد نظر برای ویرایش را انتخاب کنید:",
		rows: [][]Action{
			{ActionEditDuration, ActionEditDataLimit, ActionEditPrice},
			{ActionEditCategory, ActionEditName},
			{ActionBackToAdmin},
		},
	},
	MenuExtraVolume: {
		name: "extra_volume",
		text: "یک عملیات را انتخاب کنید",
		rows: [][]Action{
			{ActionEVPrice},
			{ActionEVMin, ActionEVMax},
			{ActionEVToggle},
			{ActionBackToShopSettings},
		},
	},
	MenuExtraVolumeBack: {
		name: "extra_volume_back",
		rows: [][]Action{{ActionEVBack}},
	},
}

func menuForNav(n session.Nav) MenuKind {
	switch n {
	case session.NavAdmin:
		return MenuAdmin
	case session.NavShop:
		return MenuShop
	default:
		return MenuMain
	}
}

// Responder is the part of tele.Context used to answer the current update.
type Responder interface {
	Send(what interface{}, opts ...interface{}) error
	Edit(what interface{}, opts ...interface{}) error
	Respond(resp ...*tele.CallbackResponse) error
}

// sender delivers messages to an explicit chat. *tele.Bot implements it.
type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// MenuRenderer sends reply keyboards and records the user's navigation tag.
type MenuRenderer struct {
	sender   sender
	sessions *session.Store
	dedup    middleware.Deduper
	logger   *zap.Logger
}

// NewMenuRenderer returns a renderer. A nil dedup disables debouncing.
func NewMenuRenderer(s sender, sessions *session.Store, dedup middleware.Deduper, logger *zap.Logger) *MenuRenderer {
	return &MenuRenderer{sender: s, sessions: sessions, dedup: dedup, logger: logger}
}

// Markup builds the reply keyboard of kind.
func (m *MenuRenderer) Markup(kind MenuKind) *tele.ReplyMarkup {
	spec := menuSpecs[kind]
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	rows := make([]tele.Row, 0, len(spec.rows))
	for _, r := range spec.rows {
		btns := make([]tele.Btn, 0, len(r))
		for _, a := range r {
			btns = append(btns, markup.Text(a.Label()))
		}
		rows = append(rows, markup.Row(btns...))
	}
	markup.Reply(rows...)
	return markup
}

// Text returns the default message of kind.
func (m *MenuRenderer) Text(kind MenuKind) string {
	return menuSpecs[kind].text
}

// Show sends the menu through r and, for navigation menus, records the nav tag.
func (m *MenuRenderer) Show(ctx context.Context, r Responder, userID int64, kind MenuKind) error {
	m.setNav(userID, kind)
	if m.debounced(ctx, userID, kind) {
		return nil
	}
	return r.Send(menuSpecs[kind].text, m.Markup(kind))
}

// ShowWithChatID sends the menu to chatID without an inbound message to
// reply to. In private chats the chat id is the user id, which is what
// the nav tag is stored under.
func (m *MenuRenderer) ShowWithChatID(ctx context.Context, chatID int64, kind MenuKind, setNav bool) error {
	if setNav {
		m.setNav(chatID, kind)
	}
	if m.debounced(ctx, chatID, kind) {
		return nil
	}
	if _, err := m.sender.Send(tele.ChatID(chatID), menuSpecs[kind].text, m.Markup(kind)); err != nil {
		return fmt.Errorf("send %s menu to %d: %w", menuSpecs[kind].name, chatID, err)
	}
	return nil
}

func (m *MenuRenderer) setNav(userID int64, kind MenuKind) {
	if nav := menuSpecs[kind].nav; nav != "" {
		m.sessions.SetNav(userID, nav)
	}
}

func (m *MenuRenderer) debounced(ctx context.Context, userID int64, kind MenuKind) bool {
	if m.dedup == nil {
		return false
	}
	key := fmt.Sprintf("menu:%d:%s", userID, menuSpecs[kind].name)
	seen, err := m.dedup.Seen(ctx, key)
	if err != nil {
		m.logger.Warn("menu dedup failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return seen
}
