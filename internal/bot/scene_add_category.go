package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"smpanel/internal/models"
	"smpanel/internal/panel"
	"smpanel/internal/repository"
	"smpanel/internal/session"
)

const sceneAddCategory = "add_category"

const (
	addCategoryName = iota
	addCategoryPanels
	addCategoryInbounds
)

const (
	cbACPanel          = "ac_panel_"
	cbACConfirmPanels  = "ac_confirm_panels"
	cbACHeader         = "ac_hdr_"
	cbACInbound        = "ac_ib_"
	cbACConfirmInbound = "ac_confirm_inbounds"

	addCategoryPanelsText = "📌 پنل های مورد نظر را انتخاب کنید:\nمی‌توانید چندین پنل را انتخاب کنید."
)

type addCategoryForm struct {
	Name   string
	Panels []models.Panel
	// Discovered inbounds per panel id, in Panels order.
	Inbounds map[uint][]panel.Inbound

	selectedPanels   *session.Selection[uint]
	selectedInbounds *session.Selection[string]
}

type addCategoryScene struct {
	b *Bot
}

func (s *addCategoryScene) name() string     { return sceneAddCategory }
func (s *addCategoryScene) parent() MenuKind { return MenuShop }

func (s *addCategoryScene) start(req *request) error {
	s.b.begin(req, s, addCategoryName, &addCategoryForm{
		selectedPanels:   session.NewSelection[uint](),
		selectedInbounds: session.NewSelection[string](),
	})
	return req.out.Send("🛒 اضافه کردن دسته بندی\n\n📌 نام دسته بندی را ارسال کنید", s.b.menus.Markup(MenuShopBack))
}

func (s *addCategoryScene) onText(req *request, sess *session.Session, text string) error {
	form := sess.Form.(*addCategoryForm)
	if sess.Step != addCategoryName {
		return req.out.Send(useButtonsText)
	}

	if text == "" {
		return req.out.Send("❌ نام دسته بندی نمی‌تواند خالی باشد. لطفاً دوباره ارسال کنید.")
	}
	taken, err := s.b.repos.Category.NameTaken(text)
	if err != nil {
		return err
	}
	if taken {
		return req.out.Send("❌ دسته بندی با این نام از قبل وجود دارد. لطفاً نام دیگری ارسال کنید.")
	}

	panels, err := s.b.repos.Panel.FindAll()
	if err != nil {
		return err
	}
	if len(panels) == 0 {
		return s.b.endScene(req, s, "❌ هیچ پنلی یافت نشد. ابتدا یک پنل اضافه کنید.")
	}

	form.Name = text
	form.Panels = panels
	form.selectedPanels.Clear()
	sess.Step = addCategoryPanels
	return req.out.Send(addCategoryPanelsText, s.panelKeyboard(form))
}

func (s *addCategoryScene) onCallback(req *request, sess *session.Session, data string) error {
	form := sess.Form.(*addCategoryForm)

	switch sess.Step {
	case addCategoryPanels:
		if data == cbACConfirmPanels {
			return s.confirmPanels(req, sess, form)
		}
		id, ok := idFrom(data, cbACPanel)
		if !ok {
			return req.answer(useButtonsText)
		}
		form.selectedPanels.Toggle(id)
		return req.edit(addCategoryPanelsText, s.panelKeyboard(form))

	case addCategoryInbounds:
		switch {
		case data == cbACConfirmInbound:
			return s.commit(req, sess, form)
		case strings.HasPrefix(data, cbACHeader):
			return req.edit(s.inboundText(form), s.inboundKeyboard(form))
		case strings.HasPrefix(data, cbACInbound):
			form.selectedInbounds.Toggle(strings.TrimPrefix(data, cbACInbound))
			return req.edit(s.inboundText(form), s.inboundKeyboard(form))
		}
	}
	return req.answer(useButtonsText)
}

func (s *addCategoryScene) panelKeyboard(form *addCategoryForm) interface{} {
	rows := make([][]inlineButton, 0, len(form.Panels)+1)
	for _, p := range form.Panels {
		rows = append(rows, button(checkbox(form.selectedPanels.Contains(p.ID))+" "+p.Name, idData(cbACPanel, p.ID)))
	}
	rows = append(rows, button("✅ تایید پنل ها", cbACConfirmPanels))
	return inlineRows(rows...)
}

func (s *addCategoryScene) confirmPanels(req *request, sess *session.Session, form *addCategoryForm) error {
	if form.selectedPanels.Len() == 0 {
		return s.b.endSceneEdit(req, s, "❌ حداقل یک پنل باید انتخاب شود.\nلطفاً دوباره تلاش کنید.")
	}

	_ = req.answer("⏳ در حال دریافت اینباندها...")
	form.Inbounds = make(map[uint][]panel.Inbound)
	for i := range form.Panels {
		p := &form.Panels[i]
		if !form.selectedPanels.Contains(p.ID) {
			continue
		}
		if inbounds := s.b.panels.Inbounds(req.ctx, p); len(inbounds) > 0 {
			form.Inbounds[p.ID] = inbounds
		}
	}
	if len(form.Inbounds) == 0 {
		return s.b.endSceneEdit(req, s, "❌ هیچ اینباندی در پنل‌های انتخاب شده یافت نشد.\n"+
			"لطفاً پنل‌های دیگری انتخاب کنید یا اینباندها را در پنل بررسی کنید.")
	}

	form.selectedInbounds.Clear()
	sess.Step = addCategoryInbounds
	return req.edit(s.inboundText(form), s.inboundKeyboard(form))
}

func (s *addCategoryScene) selectedPanelNames(form *addCategoryForm) string {
	names := make([]string, 0, form.selectedPanels.Len())
	for _, p := range form.Panels {
		if form.selectedPanels.Contains(p.ID) {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

func (s *addCategoryScene) inboundText(form *addCategoryForm) string {
	return fmt.Sprintf("📌 انتخاب اینباندها برای دسته بندی «%s»\n\n"+
		"پنل های انتخاب شده: %s\n\n"+
		"لطفاً اینباندهای مورد نظر را انتخاب کنید:", form.Name, s.selectedPanelNames(form))
}

// inboundKey addresses an inbound by its position in the panel's list.
// Marzban inbounds carry no numeric id.
func inboundKey(panelID uint, index int) string {
	return strconv.FormatUint(uint64(panelID), 10) + "_" + strconv.Itoa(index)
}

func (s *addCategoryScene) inboundKeyboard(form *addCategoryForm) interface{} {
	var rows [][]inlineButton
	for _, p := range form.Panels {
		inbounds, ok := form.Inbounds[p.ID]
		if !ok {
			continue
		}
		rows = append(rows, button("📌 "+p.Name, idData(cbACHeader, p.ID)))
		for i, ib := range inbounds {
			key := inboundKey(p.ID, i)
			label := fmt.Sprintf("%s پورت: %d | %s | %s", checkbox(form.selectedInbounds.Contains(key)), ib.Port, ib.Protocol, ib.Remark)
			rows = append(rows, button(label, cbACInbound+key))
		}
	}
	rows = append(rows, button("✅ تایید اینباند ها", cbACConfirmInbound))
	return inlineRows(rows...)
}

// selectedInboundList resolves the selected keys in selection order.
func (s *addCategoryScene) selectedInboundList(form *addCategoryForm) []panel.Inbound {
	byKey := make(map[string]panel.Inbound)
	for pid, inbounds := range form.Inbounds {
		for i, ib := range inbounds {
			byKey[inboundKey(pid, i)] = ib
		}
	}
	out := make([]panel.Inbound, 0, form.selectedInbounds.Len())
	for _, key := range form.selectedInbounds.Values() {
		if ib, ok := byKey[key]; ok {
			out = append(out, ib)
		}
	}
	return out
}

func uniquePorts(inbounds []panel.Inbound) []int {
	seen := make(map[int]bool, len(inbounds))
	ports := make([]int, 0, len(inbounds))
	for _, ib := range inbounds {
		if ib.Port == 0 || seen[ib.Port] {
			continue
		}
		seen[ib.Port] = true
		ports = append(ports, ib.Port)
	}
	return ports
}

func (s *addCategoryScene) commit(req *request, sess *session.Session, form *addCategoryForm) error {
	if form.selectedInbounds.Len() == 0 {
		return s.b.endSceneEdit(req, s, "❌ حداقل یک اینباند باید انتخاب شود.\nلطفاً دوباره تلاش کنید.")
	}

	selected := s.selectedInboundList(form)
	cat, err := s.b.repos.Category.Create(form.Name, "", form.selectedPanels.Values(), uniquePorts(selected))
	if errors.Is(err, repository.ErrDuplicateName) {
		sess.Step = addCategoryName
		if err := req.edit("❌ دسته بندی با این نام از قبل وجود دارد."); err != nil {
			return err
		}
		return req.out.Send("📌 نام دیگری برای دسته بندی ارسال کنید", s.b.menus.Markup(MenuShopBack))
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	s.b.logger.Info("category added", zap.Uint("category_id", cat.ID), zap.String("name", cat.Name), zap.Ints("ports", cat.Ports()), conversation(sess))

	details := make([]string, 0, len(selected))
	for _, ib := range selected {
		details = append(details, fmt.Sprintf("پورت %d | %s | %s", ib.Port, ib.Remark, ib.Protocol))
	}
	return s.b.endSceneEdit(req, s, fmt.Sprintf("✅ دسته بندی «%s» با موفقیت اضافه گردید.\n\n"+
		"پنل‌های انتخاب شده: %s\n"+
		"اینباندهای انتخاب شده:\n%s", form.Name, s.selectedPanelNames(form), strings.Join(details, "\n")))
}
