package bot

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"smpanel/internal/models"
	"smpanel/internal/panel"
	"smpanel/internal/repository"
)

const (
	cbPanel         = "panel_"
	cbPanelList     = "panel_list"
	cbPanelToggle   = "toggle_panel_"
	cbPanelAskDel   = "confirm_delete_"
	cbPanelDelete   = "delete_panel_"
	cbPanelCheck    = "check_panel_"
	cbBackToAdmin   = "back_to_admin"
	panelListText   = "📋 لیست پنل‌های موجود:\nبرای مدیریت هر پنل، روی آن کلیک کنید."
	noPanelsText    = "❌ هیچ پنلی یافت نشد!\nلطفا ابتدا با استفاده از گزینه 'اضافه کردن پنل' یک پنل جدید اضافه کنید."
	panelGoneText   = "❌ پنل مورد نظر یافت نشد!"
	panelActiveText = "فعال"
)

func statusLabel(status string) (icon, text string) {
	switch status {
	case models.PanelStatusActive:
		return "✅", panelActiveText
	case models.PanelStatusUnknown:
		return "❔", "نامشخص"
	default:
		return "❌", "غیرفعال"
	}
}

func (b *Bot) panelListMarkup(panels []models.Panel) interface{} {
	rows := make([][]inlineButton, 0, len(panels)+1)
	for _, p := range panels {
		icon, _ := statusLabel(p.Status)
		rows = append(rows, button(icon+" "+p.Name, idData(cbPanel, p.ID)))
	}
	rows = append(rows, button("🔙 بازگشت به منوی مدیریت", cbBackToAdmin))
	return inlineRows(rows...)
}

// sendPanelList answers "🖥 مدیریت پنل‌ها" with one inline button per panel.
func (b *Bot) sendPanelList(req *request) error {
	panels, err := b.repos.Panel.FindAll()
	if err != nil {
		return err
	}
	if len(panels) == 0 {
		return req.out.Send(noPanelsText)
	}
	return req.out.Send(panelListText, b.panelListMarkup(panels))
}

func (b *Bot) editPanelList(req *request) error {
	panels, err := b.repos.Panel.FindAll()
	if err != nil {
		return err
	}
	if len(panels) == 0 {
		return req.edit(noPanelsText)
	}
	return req.edit(panelListText, b.panelListMarkup(panels))
}

// routePanelCallback handles the panel management buttons. Unknown data
// is ignored; the caller acknowledges the query.
func (b *Bot) routePanelCallback(req *request, data string) error {
	switch {
	case strings.HasPrefix(data, cbPanelAskDel):
		return b.withPanel(req, data, cbPanelAskDel, b.askDeletePanel)
	case strings.HasPrefix(data, cbPanelToggle):
		return b.withPanel(req, data, cbPanelToggle, b.togglePanel)
	case strings.HasPrefix(data, cbPanelDelete):
		return b.withPanel(req, data, cbPanelDelete, b.deletePanel)
	case strings.HasPrefix(data, cbPanelCheck):
		return b.withPanel(req, data, cbPanelCheck, b.checkPanel)
	case data == cbPanelList:
		return b.editPanelList(req)
	case data == cbBackToAdmin:
		if err := req.edit("🔙 بازگشت به منوی مدیریت"); err != nil {
			return err
		}
		return b.showWithChatID(req, MenuAdmin)
	case strings.HasPrefix(data, cbPanel):
		return b.withPanel(req, data, cbPanel, b.showPanel)
	}
	return nil
}

func (b *Bot) withPanel(req *request, data, prefix string, fn func(*request, *models.Panel) error) error {
	id, ok := idFrom(data, prefix)
	if !ok {
		return req.answer(panelGoneText)
	}
	p, err := b.repos.Panel.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return req.answer(panelGoneText)
	}
	if err != nil {
		return err
	}
	return fn(req, p)
}

func (b *Bot) showPanel(req *request, p *models.Panel) error {
	icon, status := statusLabel(p.Status)
	text := fmt.Sprintf("🖥 اطلاعات پنل: %s\n\n"+
		"🔗 آدرس: %s\n"+
		"👤 نام کاربری: %s\n"+
		"🔐 رمز عبور: %s\n"+
		"📊 وضعیت: %s %s\n\n"+
		"لطفا عملیات مورد نظر را انتخاب کنید:",
		p.Name, p.URL, p.Username, p.Password, icon, status)

	toggle := "✅ فعال کردن پنل"
	if p.IsActive() {
		toggle = "❌ غیرفعال کردن پنل"
	}
	return req.edit(text, inlineRows(
		button(toggle, idData(cbPanelToggle, p.ID)),
		button("🗑️ حذف پنل", idData(cbPanelAskDel, p.ID)),
		button("🔍 بررسی اتصال", idData(cbPanelCheck, p.ID)),
		button("🔙 بازگشت به لیست پنل‌ها", cbPanelList),
	))
}

func (b *Bot) togglePanel(req *request, p *models.Panel) error {
	next := models.PanelStatusActive
	if p.IsActive() {
		next = models.PanelStatusInactive
	}
	if err := b.repos.Panel.UpdateStatus(p.ID, next); err != nil {
		return err
	}
	p.Status = next
	_, status := statusLabel(next)
	b.logger.Info("panel status changed", zap.Uint("panel_id", p.ID), zap.String("status", next))
	if err := req.answer(fmt.Sprintf("✅ وضعیت پنل به %s تغییر یافت.", status)); err != nil {
		return err
	}
	return b.showPanel(req, p)
}

func (b *Bot) askDeletePanel(req *request, p *models.Panel) error {
	return req.edit(fmt.Sprintf("⚠️ آیا از حذف پنل «%s» اطمینان دارید؟\n\nاین عملیات غیرقابل بازگشت است!", p.Name),
		inlineRows([]inlineButton{
			{text: "✅ بله، حذف شود", data: idData(cbPanelDelete, p.ID)},
			{text: "❌ خیر، لغو عملیات", data: idData(cbPanel, p.ID)},
		}))
}

func (b *Bot) deletePanel(req *request, p *models.Panel) error {
	err := b.repos.Panel.Delete(p.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return req.answer(panelGoneText)
	}
	if err != nil {
		return err
	}
	b.logger.Info("panel deleted", zap.Uint("panel_id", p.ID), zap.String("name", p.Name))
	if err := req.answer(fmt.Sprintf("✅ پنل %s با موفقیت حذف شد.", p.Name)); err != nil {
		return err
	}
	return b.editPanelList(req)
}

// checkPanel re-probes the login endpoint and stores the resulting status.
func (b *Bot) checkPanel(req *request, p *models.Panel) error {
	res := b.panels.CheckLogin(req.ctx, panel.CredentialsOf(p))
	status := panel.StatusOf(res)
	if status != p.Status {
		if err := b.repos.Panel.UpdateStatus(p.ID, status); err != nil {
			return err
		}
		p.Status = status
	}
	icon, text := statusLabel(status)
	if err := req.answer(fmt.Sprintf("%s وضعیت اتصال: %s", icon, text)); err != nil {
		return err
	}
	return b.showPanel(req, p)
}
