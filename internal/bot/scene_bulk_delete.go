package bot

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"smpanel/internal/session"
)

const (
	sceneDeleteCategory = "delete_category"
	sceneDeleteProduct  = "delete_product"
)

const (
	bulkDeleteSelect = iota
	bulkDeleteConfirm
)

// Callback suffixes; each scene prefixes them with its own tag.
const (
	cbBDItem    = "item_"
	cbBDDelete  = "delete"
	cbBDClear   = "clear"
	cbBDBack    = "back"
	cbBDYes     = "yes"
	cbBDNo      = "no"
	bulkBackTxt = "🔙 بازگشت"
)

type deleteItem struct {
	ID   uint
	Name string
}

type bulkDeleteForm struct {
	Items    []deleteItem
	selected *session.Selection[uint]
}

// bulkDeleteScene lets the admin tick several rows and delete them after
// a confirmation. Categories and products differ only in texts and in
// how rows are loaded and removed.
type bulkDeleteScene struct {
	b       *Bot
	scene   string
	prefix  string
	header  string
	none    string
	load    func() ([]deleteItem, error)
	confirm func(items []deleteItem) string
	remove  func(ids []uint) (string, error)
}

func newDeleteCategoryScene(b *Bot) *bulkDeleteScene {
	return &bulkDeleteScene{
		b:      b,
		scene:  sceneDeleteCategory,
		prefix: "dc_",
		header: "❌ حذف دسته بندی\n\n" +
			"📌 دسته بندی های مورد نظر برای حذف را انتخاب کنید:\n" +
			"می‌توانید چندین دسته بندی را انتخاب کنید.",
		none: "❌ هیچ دسته بندی یافت نشد.",
		load: func() ([]deleteItem, error) {
			cats, err := b.repos.Category.FindAll()
			if err != nil {
				return nil, err
			}
			items := make([]deleteItem, 0, len(cats))
			for _, c := range cats {
				items = append(items, deleteItem{ID: c.ID, Name: c.Name})
			}
			return items, nil
		},
		confirm: func(items []deleteItem) string {
			names := make([]string, 0, len(items))
			for _, it := range items {
				names = append(names, it.Name)
			}
			return fmt.Sprintf("⚠️ آیا از حذف %d دسته بندی زیر اطمینان دارید؟\n\n"+
				"📋 موارد انتخاب شده:\n%s\n\n"+
				"⚠️ توجه: با حذف این دسته‌بندی‌ها، محصولات مرتبط با آنها بدون دسته‌بندی (دسته‌بندی نشده) خواهند شد!",
				len(items), strings.Join(names, ", "))
		},
		remove: func(ids []uint) (string, error) {
			n, err := b.repos.Category.DeleteMany(ids)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ %d دسته‌بندی با موفقیت حذف شد", n), nil
		},
	}
}

func newDeleteProductScene(b *Bot) *bulkDeleteScene {
	return &bulkDeleteScene{
		b:      b,
		scene:  sceneDeleteProduct,
		prefix: "dp_",
		header: "❌ حذف محصول\n\n" +
			"📌 محصولات مورد نظر برای حذف را انتخاب کنید:\n" +
			"می‌توانید چندین محصول را انتخاب کنید.",
		none: "❌ هیچ محصولی یافت نشد.",
		load: func() ([]deleteItem, error) {
			products, err := b.repos.Product.FindAll()
			if err != nil {
				return nil, err
			}
			items := make([]deleteItem, 0, len(products))
			for _, p := range products {
				items = append(items, deleteItem{ID: p.ID, Name: p.Name})
			}
			return items, nil
		},
		confirm: func(items []deleteItem) string {
			var sb strings.Builder
			fmt.Fprintf(&sb, "⚠️ آیا از حذف %d محصول زیر اطمینان دارید؟\n\n📋 محصولات انتخاب شده:", len(items))
			for i, it := range items {
				fmt.Fprintf(&sb, "\n%d. %s", i+1, it.Name)
			}
			return sb.String()
		},
		remove: func(ids []uint) (string, error) {
			deleted, orphaned, err := b.repos.Product.DeleteMany(ids)
			if err != nil {
				return "", err
			}
			text := fmt.Sprintf("✅ %d محصول با موفقیت حذف شد", deleted)
			if orphaned > 0 {
				text += fmt.Sprintf("\n⚠️ %d سفارش مرتبط با این محصولات در سیستم باقی می‌مانند و فقط ارتباط آنها با محصولات قطع شد.", orphaned)
			}
			return text, nil
		},
	}
}

func (s *bulkDeleteScene) name() string     { return s.scene }
func (s *bulkDeleteScene) parent() MenuKind { return MenuShop }

func (s *bulkDeleteScene) start(req *request) error {
	items, err := s.load()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return req.out.Send(s.none)
	}
	form := &bulkDeleteForm{Items: items, selected: session.NewSelection[uint]()}
	s.b.begin(req, s, bulkDeleteSelect, form)
	return req.out.Send(s.header, s.selectKeyboard(form))
}

func (s *bulkDeleteScene) selectKeyboard(form *bulkDeleteForm) interface{} {
	rows := make([][]inlineButton, 0, len(form.Items)+2)
	for _, it := range form.Items {
		rows = append(rows, button(checkbox(form.selected.Contains(it.ID))+" "+it.Name, idData(s.prefix+cbBDItem, it.ID)))
	}
	rows = append(rows,
		[]inlineButton{
			{text: "❌ حذف موارد انتخاب شده", data: s.prefix + cbBDDelete},
			{text: "🔄 پاک کردن انتخاب‌ها", data: s.prefix + cbBDClear},
		},
		button(bulkBackTxt, s.prefix+cbBDBack),
	)
	return inlineRows(rows...)
}

func (s *bulkDeleteScene) confirmKeyboard() interface{} {
	return inlineRows([]inlineButton{
		{text: "✅ بله، حذف شود", data: s.prefix + cbBDYes},
		{text: "❌ خیر، انصراف", data: s.prefix + cbBDNo},
	})
}

func (s *bulkDeleteScene) onText(req *request, _ *session.Session, _ string) error {
	return req.out.Send(useButtonsText)
}

func (s *bulkDeleteScene) onCallback(req *request, sess *session.Session, data string) error {
	form := sess.Form.(*bulkDeleteForm)
	if !strings.HasPrefix(data, s.prefix) {
		return req.answer(useButtonsText)
	}
	action := strings.TrimPrefix(data, s.prefix)

	switch sess.Step {
	case bulkDeleteSelect:
		switch action {
		case cbBDBack:
			return s.b.endSceneEdit(req, s, cancelledText)
		case cbBDClear:
			form.selected.Clear()
			return req.edit(s.header, s.selectKeyboard(form))
		case cbBDDelete:
			chosen := s.chosen(form)
			if len(chosen) == 0 {
				return s.b.endSceneEdit(req, s, "❌ هیچ موردی انتخاب نشده است.")
			}
			sess.Step = bulkDeleteConfirm
			return req.edit(s.confirm(chosen), s.confirmKeyboard())
		}
		if id, ok := idFrom(action, cbBDItem); ok {
			form.selected.Toggle(id)
			return req.edit(s.header, s.selectKeyboard(form))
		}

	case bulkDeleteConfirm:
		switch action {
		case cbBDNo:
			sess.Step = bulkDeleteSelect
			return req.edit(s.header, s.selectKeyboard(form))
		case cbBDYes:
			return s.commit(req, sess, form)
		}
	}
	return req.answer(useButtonsText)
}

// chosen returns the selected rows in list order.
func (s *bulkDeleteScene) chosen(form *bulkDeleteForm) []deleteItem {
	out := make([]deleteItem, 0, form.selected.Len())
	for _, it := range form.Items {
		if form.selected.Contains(it.ID) {
			out = append(out, it)
		}
	}
	return out
}

func (s *bulkDeleteScene) commit(req *request, sess *session.Session, form *bulkDeleteForm) error {
	chosen := s.chosen(form)
	if len(chosen) == 0 {
		return s.b.endSceneEdit(req, s, "❌ هیچ موردی انتخاب نشده است.")
	}
	ids := make([]uint, 0, len(chosen))
	for _, it := range chosen {
		ids = append(ids, it.ID)
	}
	text, err := s.remove(ids)
	if err != nil {
		return fmt.Errorf("%s: %w", s.scene, err)
	}
	s.b.logger.Info("rows deleted", zap.String("scene", s.scene), zap.Int64("user_id", req.userID), zap.Int("count", len(ids)), conversation(sess))
	return s.b.endSceneEdit(req, s, text)
}
