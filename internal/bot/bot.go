package bot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"smpanel/internal/config"
	"smpanel/internal/middleware"
	"smpanel/internal/models"
	"smpanel/internal/panel"
	"smpanel/internal/repository"
	"smpanel/internal/session"
)

// Bot wraps the telebot instance and handlers.
type Bot struct {
	tb         *tele.Bot
	webhook    *tele.Webhook
	useWebhook bool
	webhookURL string

	send     sender
	adminID  int64
	repos    *Repos
	panels   PanelService
	sessions *session.Store
	menus    *MenuRenderer
	scenes   map[string]scene
	logger   *zap.Logger
}

// Repos bundles all repositories needed by bot handlers.
type Repos struct {
	Panel       *repository.PanelRepository
	Category    *repository.CategoryRepository
	Product     *repository.ProductRepository
	ExtraVolume *repository.ExtraVolumeRepository
	Order       *repository.OrderRepository
}

// PanelService probes panels and discovers their inbounds. *panel.Service implements it.
type PanelService interface {
	CheckLogin(ctx context.Context, creds panel.Credentials) panel.LoginResult
	Inbounds(ctx context.Context, p *models.Panel) []panel.Inbound
}

// Deps are the collaborators shared by New and tests.
type Deps struct {
	Repos    *Repos
	Panels   PanelService
	Sessions *session.Store
	// MenuDedup debounces repeated menus; nil disables it.
	MenuDedup middleware.Deduper
	Logger    *zap.Logger
}

// New creates and configures a new Bot instance.
func New(cfg *config.Config, deps Deps) (*Bot, error) {
	useWebhook := !cfg.Bot.UsePolling()

	var poller tele.Poller
	var webhook *tele.Webhook
	if useWebhook {
		if strings.TrimSpace(cfg.Bot.WebhookURL) == "" {
			return nil, fmt.Errorf("BOT_WEBHOOK_URL is required when BOT_UPDATE_MODE=webhook")
		}
		webhook = &tele.Webhook{
			Listen:   "", // Empty: we mount on Echo instead of telebot's own server
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Bot.PublicWebhookURL()},
		}
		poller = webhook
	} else {
		poller = &tele.LongPoller{Timeout: 10 * time.Second}
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pref := tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: poller,
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil && c.Sender() != nil {
				fields = append(fields, zap.Int64("user_id", c.Sender().ID))
			}
			logger.Error("telebot error", fields...)
		},
	}

	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telebot: %w", err)
	}

	b := newBot(tb, cfg.Bot.AdminID, deps)
	b.tb = tb
	b.webhook = webhook
	b.useWebhook = useWebhook
	b.webhookURL = cfg.Bot.PublicWebhookURL()

	b.registerHandlers()

	return b, nil
}

func newBot(s sender, adminID int64, deps Deps) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = session.NewStore(1, 20)
	}
	b := &Bot{
		send:     s,
		adminID:  adminID,
		repos:    deps.Repos,
		panels:   deps.Panels,
		sessions: sessions,
		menus:    NewMenuRenderer(s, sessions, deps.MenuDedup, logger),
		logger:   logger,
	}
	b.scenes = map[string]scene{}
	for _, sc := range []scene{
		&addPanelScene{b: b},
		&addCategoryScene{b: b},
		&addProductScene{b: b},
		&editProductScene{b: b},
		newDeleteCategoryScene(b),
		newDeleteProductScene(b),
		&extraVolumeScene{b: b},
	} {
		b.scenes[sc.name()] = sc
	}
	return b
}

// WebhookHandler returns the webhook handler for mounting on Echo.
// Returns nil when running in long-polling mode.
func (b *Bot) WebhookHandler() http.Handler {
	if !b.useWebhook || b.webhook == nil {
		return nil
	}
	return b.webhook
}

// Start begins polling/webhook processing. It blocks until Stop.
func (b *Bot) Start() {
	if b.useWebhook {
		b.logger.Info("Starting Telegram bot", zap.String("mode", "webhook"), zap.String("webhook_url", b.webhookURL))
	} else {
		// Long polling requires webhook to be removed first.
		if err := b.tb.RemoveWebhook(true); err != nil {
			b.logger.Warn("Failed to remove webhook before long polling", zap.Error(err))
		}
		b.logger.Info("Starting Telegram bot", zap.String("mode", "polling"))
	}
	b.tb.Start()
}

// Stop gracefully shuts down the bot.
func (b *Bot) Stop() {
	b.tb.Stop()
}

// NotifyAdmin sends text to the administrator's private chat.
func (b *Bot) NotifyAdmin(text string) error {
	if b.adminID == 0 {
		return nil
	}
	if _, err := b.send.Send(tele.ChatID(b.adminID), text); err != nil {
		return fmt.Errorf("notify admin: %w", err)
	}
	return nil
}

// registerHandlers sets up all bot message and callback handlers.
// The guard runs first for every update.
func (b *Bot) registerHandlers() {
	b.tb.Use(b.guard)
	b.tb.Handle("/start", b.handleStart)
	b.tb.Handle(cancelCommand, b.handleCancel)
	b.tb.Handle(tele.OnText, b.handleText)
	b.tb.Handle(tele.OnCallback, b.handleCallback)
}

// ── Handlers ──────────────────────────────────────────────────────────

func (b *Bot) handleStart(c tele.Context) error {
	req := b.request(c)
	return b.start(req)
}

func (b *Bot) handleCancel(c tele.Context) error {
	return b.routeText(b.request(c), cancelCommand)
}

func (b *Bot) handleText(c tele.Context) error {
	return b.routeText(b.request(c), c.Text())
}

func (b *Bot) handleCallback(c tele.Context) error {
	req := b.request(c)
	req.callback = true
	// Buttons built with ReplyMarkup.Data arrive as "\f<unique>"; TrimSpace drops the \f.
	return b.routeCallback(req, strings.TrimSpace(c.Callback().Data))
}

// ── /start ────────────────────────────────────────────────────────────

func (b *Bot) start(req *request) error {
	greeting := fmt.Sprintf("👋 سلام %s!\n"+
		"به ربات مدیریت پنل های SMPanel خوش آمدید.\n\n"+
		"با استفاده از این ربات می‌توانید پنل‌های VPN خود را مدیریت کنید.", req.firstName)
	if err := req.out.Send(greeting); err != nil {
		return err
	}
	if !b.IsAdmin(req.userID) {
		return nil
	}
	b.sessions.End(req.userID)
	return b.show(req, MenuMain)
}
