package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smpanel/internal/bootstrap"
	"smpanel/internal/middleware"
	"smpanel/internal/models"
	"smpanel/internal/panel"
	"smpanel/internal/repository"
	"smpanel/internal/session"
)

const (
	testAdmin int64 = 1001
	testUser  int64 = 2002
)

type message struct {
	text string
	opts []interface{}
}

// recorder stands in for tele.Context.
type recorder struct {
	sent      []message
	edits     []message
	responses []string
}

func (r *recorder) Send(what interface{}, opts ...interface{}) error {
	r.sent = append(r.sent, message{text: textOf(what), opts: opts})
	return nil
}

func (r *recorder) Edit(what interface{}, opts ...interface{}) error {
	r.edits = append(r.edits, message{text: textOf(what), opts: opts})
	return nil
}

func (r *recorder) Respond(resp ...*tele.CallbackResponse) error {
	text := ""
	if len(resp) > 0 && resp[0] != nil {
		text = resp[0].Text
	}
	r.responses = append(r.responses, text)
	return nil
}

func (r *recorder) texts() []string {
	out := make([]string, 0, len(r.sent))
	for _, m := range r.sent {
		out = append(out, m.text)
	}
	return out
}

func (r *recorder) last() string {
	if len(r.sent) == 0 {
		return ""
	}
	return r.sent[len(r.sent)-1].text
}

func (r *recorder) lastEdit() string {
	if len(r.edits) == 0 {
		return ""
	}
	return r.edits[len(r.edits)-1].text
}

func textOf(what interface{}) string {
	switch v := what.(type) {
	case string:
		return v
	case *tele.Document:
		return "document:" + v.FileName
	default:
		return fmt.Sprintf("%T", what)
	}
}

type fakeSender struct {
	mu   sync.Mutex
	sent []message
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, message{text: to.Recipient() + "|" + textOf(what), opts: opts})
	return &tele.Message{}, nil
}

type fakePanels struct {
	login    panel.LoginResult
	inbounds map[uint][]panel.Inbound
	probes   int
}

func (f *fakePanels) CheckLogin(_ context.Context, _ panel.Credentials) panel.LoginResult {
	f.probes++
	return f.login
}

func (f *fakePanels) Inbounds(_ context.Context, p *models.Panel) []panel.Inbound {
	return f.inbounds[p.ID]
}

type harness struct {
	t      *testing.T
	b      *Bot
	db     *gorm.DB
	sender *fakeSender
	panels *fakePanels
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, bootstrap.Migrate(db))
	return db
}

func reposFor(db *gorm.DB) *Repos {
	return &Repos{
		Panel:       repository.NewPanelRepository(db),
		Category:    repository.NewCategoryRepository(db),
		Product:     repository.NewProductRepository(db),
		ExtraVolume: repository.NewExtraVolumeRepository(db),
		Order:       repository.NewOrderRepository(db),
	}
}

func newHarness(t *testing.T, opts ...func(*Deps)) *harness {
	t.Helper()
	db := newTestDB(t)
	h := &harness{
		t:      t,
		db:     db,
		sender: &fakeSender{},
		panels: &fakePanels{login: panel.LoginResult{Outcome: panel.OutcomeActive}},
	}
	deps := Deps{
		Repos:    reposFor(db),
		Panels:   h.panels,
		Sessions: session.NewStore(1000, 1000),
	}
	for _, o := range opts {
		o(&deps)
	}
	h.b = newBot(h.sender, testAdmin, deps)
	return h
}

func (h *harness) newRequest(userID int64, rec *recorder) *request {
	return &request{
		ctx:       context.Background(),
		out:       rec,
		userID:    userID,
		chatID:    userID,
		firstName: "Sara",
	}
}

func (h *harness) textAs(userID int64, text string) *recorder {
	rec := &recorder{}
	req := h.newRequest(userID, rec)
	require.NoError(h.t, h.b.protect(req, func() error { return h.b.routeText(req, text) }))
	return rec
}

func (h *harness) text(text string) *recorder {
	return h.textAs(testAdmin, text)
}

func (h *harness) callbackAs(userID int64, data string) *recorder {
	rec := &recorder{}
	req := h.newRequest(userID, rec)
	req.callback = true
	require.NoError(h.t, h.b.protect(req, func() error { return h.b.routeCallback(req, data) }))
	return rec
}

func (h *harness) callback(data string) *recorder {
	return h.callbackAs(testAdmin, data)
}

func (h *harness) session() (*session.Session, bool) {
	return h.b.sessions.Get(testAdmin)
}

func (h *harness) seedCategory(name string) *models.Category {
	h.t.Helper()
	cat, err := h.b.repos.Category.Create(name, "", nil, nil)
	require.NoError(h.t, err)
	return cat
}

func (h *harness) seedProduct(name string, categoryID *uint) *models.Product {
	h.t.Helper()
	p := &models.Product{Name: name, DataLimit: 50, Duration: 30, Price: 150000, CategoryID: categoryID}
	require.NoError(h.t, h.b.repos.Product.Create(p))
	return p
}

func (h *harness) seedPanel(name string) *models.Panel {
	h.t.Helper()
	p := &models.Panel{Name: name, URL: "http://" + name, Username: "admin", Password: "pw", Type: models.PanelTypeXUI}
	require.NoError(h.t, h.b.repos.Panel.Create(p))
	return p
}

func TestNonAdminIsDenied(t *testing.T) {
	h := newHarness(t)
	h.b.sessions.SetNav(testUser, session.NavShop)

	rec := h.textAs(testUser, ActionOpenAdmin.Label())
	assert.Equal(t, []string{deniedText}, rec.texts())
	assert.Equal(t, session.NavShop, h.b.sessions.Nav(testUser))
	assert.False(t, h.b.sessions.Active(testUser))

	rec = h.textAs(testUser, ActionAddProduct.Label())
	assert.Equal(t, []string{deniedText}, rec.texts())
	assert.False(t, h.b.sessions.Active(testUser))

	rec = h.callbackAs(testUser, "panel_list")
	assert.Empty(t, rec.sent)
	assert.Equal(t, []string{deniedText}, rec.responses)
}

func TestStartShowsMainMenuForAdmin(t *testing.T) {
	h := newHarness(t)
	rec := &recorder{}
	req := h.newRequest(testAdmin, rec)
	require.NoError(t, h.b.start(req))

	require.Len(t, rec.sent, 2)
	assert.Contains(t, rec.sent[0].text, "سلام Sara")
	assert.Equal(t, menuSpecs[MenuMain].text, rec.sent[1].text)
	assert.Equal(t, session.NavMain, h.b.sessions.Nav(testAdmin))

	rec = &recorder{}
	require.NoError(t, h.b.start(h.newRequest(testUser, rec)))
	assert.Len(t, rec.sent, 1)
}

func TestMenuNavigation(t *testing.T) {
	h := newHarness(t)

	rec := h.text(ActionOpenAdmin.Label())
	assert.Equal(t, menuSpecs[MenuAdmin].text, rec.last())
	assert.Equal(t, session.NavAdmin, h.b.sessions.Nav(testAdmin))

	rec = h.text(ActionOpenShop.Label())
	assert.Equal(t, menuSpecs[MenuShop].text, rec.last())
	assert.Equal(t, session.NavShop, h.b.sessions.Nav(testAdmin))

	rec = h.text("something random")
	assert.Equal(t, menuSpecs[MenuShop].text, rec.last())

	rec = h.text(ActionCreateGiftCode.Label())
	assert.Equal(t, placeholders[ActionCreateGiftCode], rec.last())

	rec = h.text(ActionBackToAdmin.Label())
	assert.Equal(t, []string{menuSpecs[MenuAdmin].text}, rec.texts())
	assert.Equal(t, session.NavAdmin, h.b.sessions.Nav(testAdmin))
}

func TestMenuDebounce(t *testing.T) {
	h := newHarness(t, func(d *Deps) {
		d.MenuDedup = middleware.NewMemoryDeduper(time.Minute)
	})

	first := h.text(ActionOpenAdmin.Label())
	second := h.text(ActionOpenAdmin.Label())
	assert.Len(t, first.sent, 1)
	assert.Empty(t, second.sent)
	assert.Equal(t, session.NavAdmin, h.b.sessions.Nav(testAdmin))

	// A different menu is not affected.
	third := h.text(ActionOpenShop.Label())
	assert.Len(t, third.sent, 1)
}

func TestCancelAndBackEndScene(t *testing.T) {
	h := newHarness(t)
	h.seedCategory("gold")

	h.text(ActionAddProduct.Label())
	_, active := h.session()
	require.True(t, active)

	rec := h.text(cancelCommand)
	assert.Equal(t, []string{cancelledText, menuSpecs[MenuShop].text}, rec.texts())
	_, active = h.session()
	assert.False(t, active)

	h.text(ActionAddProduct.Label())
	rec = h.text(ActionBackToShop.Label())
	assert.Equal(t, []string{cancelledText, menuSpecs[MenuShop].text}, rec.texts())
	_, active = h.session()
	assert.False(t, active)

	// Without a scene /cancel only re-shows the menu.
	rec = h.text(cancelCommand)
	assert.Equal(t, []string{menuSpecs[MenuShop].text}, rec.texts())
}

func TestSceneSwallowsMenuLabels(t *testing.T) {
	h := newHarness(t)
	h.seedCategory("gold")
	h.text(ActionAddProduct.Label())

	// "مدیریت" is a menu label but the scene takes it as the product name.
	h.text(ActionOpenAdmin.Label())
	sess, ok := h.session()
	require.True(t, ok)
	assert.Equal(t, sceneAddProduct, sess.Scene)
}

func TestStorageErrorAbortsScene(t *testing.T) {
	h := newHarness(t)
	h.text(ActionOpenShop.Label())
	h.text(ActionAddProduct.Label())
	require.NoError(t, h.db.Migrator().DropTable(&models.Product{}))

	rec := h.text("1 month")
	assert.Equal(t, []string{unexpectedText, menuSpecs[MenuShop].text}, rec.texts())
	_, active := h.session()
	assert.False(t, active)
}

func TestPanicAbortsScene(t *testing.T) {
	h := newHarness(t)
	h.text(ActionAddProduct.Label())

	rec := &recorder{}
	req := h.newRequest(testAdmin, rec)
	err := h.b.protect(req, func() error { panic("boom") })
	require.NoError(t, err)
	assert.Equal(t, []string{unexpectedText, menuSpecs[MenuShop].text}, rec.texts())
	_, active := h.session()
	assert.False(t, active)
}

func TestActionLabelsAreUnique(t *testing.T) {
	seen := map[string]Action{}
	for a := ActionOpenAdmin; a <= ActionEVBack; a++ {
		label := a.Label()
		require.NotEmpty(t, label, "action %d has no label", a)
		prev, dup := seen[label]
		require.False(t, dup, "label %q used by %d and %d", label, prev, a)
		seen[label] = a
		assert.Equal(t, a, ActionOf(label))
		assert.Equal(t, a, ActionOf("  "+label+" "))
	}
	assert.Equal(t, ActionNone, ActionOf("nope"))

	target, ok := BackTarget(ActionBackToShopSettings.Label())
	assert.True(t, ok)
	assert.Equal(t, MenuShop, target)
	_, ok = BackTarget(ActionEVBack.Label())
	assert.False(t, ok)
}

func TestMenuKeyboardsUseActionLabels(t *testing.T) {
	h := newHarness(t)
	markup := h.b.menus.Markup(MenuEditOptions)
	var labels []string
	for _, row := range markup.ReplyKeyboard {
		for _, btn := range row {
			labels = append(labels, btn.Text)
		}
	}
	assert.Equal(t, []string{"زمان", "حجم", "قیمت", "دسته بندی", "نام محصول", ActionBackToAdmin.Label()}, labels)
}

func TestPanelManagementCallbacks(t *testing.T) {
	h := newHarness(t)
	p := h.seedPanel("de1")

	rec := h.text(ActionManagePanels.Label())
	assert.Equal(t, panelListText, rec.last())

	rec = h.callback(idData(cbPanel, p.ID))
	assert.Contains(t, rec.lastEdit(), "اطلاعات پنل: de1")

	rec = h.callback(idData(cbPanelToggle, p.ID))
	assert.Equal(t, []string{"✅ وضعیت پنل به غیرفعال تغییر یافت."}, rec.responses)
	got, err := h.b.repos.Panel.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PanelStatusInactive, got.Status)

	h.panels.login = panel.LoginResult{Outcome: panel.OutcomeActive}
	h.callback(idData(cbPanelCheck, p.ID))
	got, err = h.b.repos.Panel.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PanelStatusActive, got.Status)

	rec = h.callback(idData(cbPanelAskDel, p.ID))
	assert.True(t, strings.HasPrefix(rec.lastEdit(), "⚠️ آیا از حذف پنل «de1»"))

	rec = h.callback(idData(cbPanelDelete, p.ID))
	assert.Equal(t, []string{"✅ پنل de1 با موفقیت حذف شد."}, rec.responses)
	assert.Equal(t, noPanelsText, rec.lastEdit())

	rec = h.callback(idData(cbPanel, p.ID))
	assert.Equal(t, []string{panelGoneText}, rec.responses)
}

func TestBackToAdminCallbackUsesChatID(t *testing.T) {
	h := newHarness(t)
	h.seedPanel("de1")

	rec := h.callback(cbBackToAdmin)
	assert.NotEmpty(t, rec.edits)
	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, fmt.Sprintf("%d|%s", testAdmin, menuSpecs[MenuAdmin].text), h.sender.sent[0].text)
	assert.Equal(t, session.NavAdmin, h.b.sessions.Nav(testAdmin))
}

func TestStatsSendsCountersAndWorkbook(t *testing.T) {
	h := newHarness(t)
	h.seedPanel("de1")
	cat := h.seedCategory("gold")
	h.seedProduct("p1", &cat.ID)

	rec := h.text(ActionStats.Label())
	require.Len(t, rec.sent, 2)
	assert.Contains(t, rec.sent[0].text, "تعداد پنل‌ها: 1 (فعال: 1)")
	assert.True(t, strings.HasPrefix(rec.sent[1].text, "document:smpanel-"))
}

func TestNotifyAdmin(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.b.NotifyAdmin("panel down"))
	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, fmt.Sprintf("%d|panel down", testAdmin), h.sender.sent[0].text)
}
