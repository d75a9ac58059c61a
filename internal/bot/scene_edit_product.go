package bot

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"smpanel/internal/models"
	"smpanel/internal/pkg/utils"
	"smpanel/internal/repository"
	"smpanel/internal/session"
)

const sceneEditProduct = "edit_product"

const (
	editProductCategory = iota
	editProductProduct
	editProductOptions
	editProductName
	editProductSetCategory
	editProductDataLimit
	editProductDuration
	editProductPrice
)

const (
	cbEPCategory    = "ep_cat_"
	cbEPProduct     = "ep_prod_"
	cbEPSetCategory = "ep_setcat_"
	cbEPCancel      = "ep_cancel"
	cbEPBackToCats  = "ep_back_cats"
	cbEPBackToOpts  = "ep_back_opts"

	invalidProductNameText = "❌ نام وارد شده نامعتبر است.\nلطفاً یک نام معتبر وارد کنید."

	editProductStartText  = "✏️ ویرایش محصول\n\n📌 ابتدا یک دسته بندی را انتخاب کنید:"
	invalidProductText    = "❌ محصول انتخاب شده معتبر نیست.\nلطفاً دوباره تلاش کنید."
	pickEditOptionText    = "لطفاً یکی از گزینه‌های ارائه شده را انتخاب کنید."
	backToShopPendingText = "در حال بازگشت به منوی فروشگاه..."
)

type editProductForm struct {
	CategoryID   uint
	CategoryName string
	Product      models.Product
}

type editProductScene struct {
	b *Bot
}

func (s *editProductScene) name() string     { return sceneEditProduct }
func (s *editProductScene) parent() MenuKind { return MenuShop }

func (s *editProductScene) start(req *request) error {
	cats, err := s.b.repos.Category.FindAll()
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return req.out.Send(noCategoriesText)
	}
	s.b.begin(req, s, editProductCategory, &editProductForm{})
	return req.out.Send(editProductStartText, s.categoryKeyboard(cats))
}

func (s *editProductScene) categoryKeyboard(cats []models.Category) interface{} {
	rows := make([][]inlineButton, 0, len(cats)+1)
	for _, c := range cats {
		rows = append(rows, button(c.Name, idData(cbEPCategory, c.ID)))
	}
	rows = append(rows, button("🔙 بازگشت", cbEPCancel))
	return inlineRows(rows...)
}

func (s *editProductScene) onCallback(req *request, sess *session.Session, data string) error {
	form := sess.Form.(*editProductForm)

	switch sess.Step {
	case editProductCategory:
		if data == cbEPCancel {
			return s.b.endSceneEdit(req, s, backToShopPendingText)
		}
		if id, ok := idFrom(data, cbEPCategory); ok {
			return s.selectCategory(req, sess, form, id)
		}

	case editProductProduct:
		if data == cbEPBackToCats {
			cats, err := s.b.repos.Category.FindAll()
			if err != nil {
				return err
			}
			if len(cats) == 0 {
				return s.b.endSceneEdit(req, s, noCategoriesText)
			}
			sess.Step = editProductCategory
			return req.edit(editProductStartText, s.categoryKeyboard(cats))
		}
		if id, ok := idFrom(data, cbEPProduct); ok {
			return s.selectProduct(req, sess, form, id)
		}

	case editProductSetCategory:
		if data == cbEPBackToOpts {
			sess.Step = editProductOptions
			if err := req.edit("↩️ تغییر دسته بندی لغو شد."); err != nil {
				return err
			}
			return req.out.Send(s.b.menus.Text(MenuEditOptions), s.b.menus.Markup(MenuEditOptions))
		}
		if id, ok := idFrom(data, cbEPSetCategory); ok {
			return s.setCategory(req, sess, form, id)
		}

	case editProductOptions:
		if err := req.answer(""); err != nil {
			return err
		}
		return req.out.Send("لطفاً از کیبورد ارائه شده استفاده کنید.")
	}
	return req.answer(useButtonsText)
}

func (s *editProductScene) selectCategory(req *request, sess *session.Session, form *editProductForm, id uint) error {
	cat, err := s.b.repos.Category.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return s.b.endSceneEdit(req, s, invalidCategoryText)
	}
	if err != nil {
		return err
	}
	products, err := s.b.repos.Product.FindByCategory(cat.ID)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return s.b.endSceneEdit(req, s, fmt.Sprintf("❌ هیچ محصولی در دسته بندی '%s' یافت نشد.", cat.Name))
	}

	form.CategoryID = cat.ID
	form.CategoryName = cat.Name
	rows := make([][]inlineButton, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, button(p.Name, idData(cbEPProduct, p.ID)))
	}
	rows = append(rows, button("🔙 بازگشت", cbEPBackToCats))
	sess.Step = editProductProduct
	return req.edit(fmt.Sprintf("✏️ ویرایش محصول در دسته بندی: %s\n\n📌 محصول مورد نظر برای ویرایش را انتخاب کنید:", cat.Name), inlineRows(rows...))
}

func (s *editProductScene) selectProduct(req *request, sess *session.Session, form *editProductForm, id uint) error {
	p, err := s.b.repos.Product.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return s.b.endSceneEdit(req, s, invalidProductText)
	}
	if err != nil {
		return err
	}
	form.Product = *p
	sess.Step = editProductOptions

	if err := req.edit(fmt.Sprintf("✅ محصول انتخاب شده: %s", p.Name)); err != nil {
		return err
	}
	return req.out.Send(fmt.Sprintf("🖊️ ویرایش محصول: %s\n\n"+
		"📝 مشخصات فعلی محصول:\n"+
		"🏷️ دسته بندی: %s\n"+
		"📊 حجم: %s\n"+
		"⏱️ مدت زمان: %s\n"+
		"💰 قیمت: %s\n\n"+
		"لطفاً بخش مورد نظر برای ویرایش را انتخاب کنید:",
		p.Name, p.CategoryName, gbText(p.DataLimit), daysText(p.Duration), tomanText(p.Price)),
		s.b.menus.Markup(MenuEditOptions))
}

func (s *editProductScene) onText(req *request, sess *session.Session, text string) error {
	form := sess.Form.(*editProductForm)
	p := &form.Product

	switch sess.Step {
	case editProductOptions:
		return s.chooseOption(req, sess, form, ActionOf(text))

	case editProductName:
		// Option buttons are still on screen; their labels are not names.
		if text == "" || ActionOf(text) != ActionNone {
			return req.out.Send(invalidProductNameText)
		}
		old := p.Name
		return s.update(req, sess, "نام", map[string]interface{}{"name": text}, old, text, func() { p.Name = text })

	case editProductDataLimit:
		v, err := utils.ParseNonNegativeInt(text)
		if err != nil {
			return req.out.Send(invalidIntText)
		}
		old := gbText(p.DataLimit)
		return s.update(req, sess, "حجم", map[string]interface{}{"data_limit": v}, old, gbText(v), func() { p.DataLimit = v })

	case editProductDuration:
		v, err := utils.ParseNonNegativeInt(text)
		if err != nil {
			return req.out.Send(invalidIntText)
		}
		old := daysText(p.Duration)
		return s.update(req, sess, "مدت زمان", map[string]interface{}{"duration": v}, old, daysText(v), func() { p.Duration = v })

	case editProductPrice:
		v, err := utils.ParsePrice(text)
		if err != nil {
			return req.out.Send(invalidPriceText)
		}
		price := float64(v)
		old := tomanText(p.Price)
		return s.update(req, sess, "قیمت", map[string]interface{}{"price": price}, old, tomanText(price), func() { p.Price = price })
	}
	return req.out.Send(useButtonsText)
}

func (s *editProductScene) chooseOption(req *request, sess *session.Session, form *editProductForm, action Action) error {
	p := &form.Product
	switch action {
	case ActionEditName:
		sess.Step = editProductName
		return req.out.Send(fmt.Sprintf("📝 لطفاً نام جدید برای محصول '%s' وارد کنید:", p.Name))

	case ActionEditCategory:
		cats, err := s.b.repos.Category.FindAll()
		if err != nil {
			return err
		}
		if len(cats) == 0 {
			return req.out.Send(noCategoriesText)
		}
		rows := make([][]inlineButton, 0, len(cats)+1)
		for _, c := range cats {
			label := c.Name
			if p.CategoryID != nil && *p.CategoryID == c.ID {
				label = fmt.Sprintf("✅ %s (فعلی)", c.Name)
			}
			rows = append(rows, button(label, idData(cbEPSetCategory, c.ID)))
		}
		rows = append(rows, button("🔙 بازگشت", cbEPBackToOpts))
		sess.Step = editProductSetCategory
		return req.out.Send("🏷️ دسته بندی جدید را انتخاب کنید:", inlineRows(rows...))

	case ActionEditDataLimit:
		sess.Step = editProductDataLimit
		return req.out.Send(fmt.Sprintf("📊 حجم فعلی: %s\n\n"+
			"لطفاً حجم جدید را به گیگابایت وارد کنید (عدد 0 به معنای نامحدود است):", gbText(p.DataLimit)))

	case ActionEditDuration:
		sess.Step = editProductDuration
		return req.out.Send(fmt.Sprintf("⏱️ مدت زمان فعلی: %s\n\n"+
			"لطفاً مدت زمان جدید را به روز وارد کنید (عدد 0 به معنای نامحدود است):", daysText(p.Duration)))

	case ActionEditPrice:
		sess.Step = editProductPrice
		return req.out.Send(fmt.Sprintf("💰 قیمت فعلی: %s\n\n"+
			"لطفاً قیمت جدید را به تومان وارد کنید:", tomanText(p.Price)))
	}
	return req.out.Send(pickEditOptionText)
}

// update writes one field and returns to the edit options. A taken name
// keeps the user at the name step; a vanished product ends the scene.
func (s *editProductScene) update(req *request, sess *session.Session, field string, updates map[string]interface{}, oldText, newText string, apply func()) error {
	form := sess.Form.(*editProductForm)
	err := s.b.repos.Product.Update(form.Product.ID, updates)
	switch {
	case errors.Is(err, repository.ErrDuplicateName):
		return req.out.Send(duplicateProductText)
	case errors.Is(err, repository.ErrNotFound):
		return s.b.endScene(req, s, invalidProductText)
	case err != nil:
		return fmt.Errorf("update product %d: %w", form.Product.ID, err)
	}
	apply()
	sess.Step = editProductOptions
	s.b.logger.Info("product updated", zap.Uint("product_id", form.Product.ID), zap.String("field", field), conversation(sess))
	return req.out.Send(successChangeText(field, oldText, newText), s.b.menus.Markup(MenuEditOptions))
}

func (s *editProductScene) setCategory(req *request, sess *session.Session, form *editProductForm, id uint) error {
	p := &form.Product
	err := s.b.repos.Product.Update(p.ID, map[string]interface{}{"category_id": id})
	switch {
	case errors.Is(err, repository.ErrUnknownCategory):
		return req.answer(strings.ReplaceAll(invalidCategoryText, "\n", " "))
	case errors.Is(err, repository.ErrNotFound):
		return s.b.endSceneEdit(req, s, invalidProductText)
	case err != nil:
		return fmt.Errorf("move product %d: %w", p.ID, err)
	}

	cat, err := s.b.repos.Category.FindByID(id)
	if err != nil {
		return err
	}
	old := p.CategoryName
	p.CategoryID = &cat.ID
	p.CategoryName = cat.Name
	sess.Step = editProductOptions
	s.b.logger.Info("product moved", zap.Uint("product_id", p.ID), zap.Uint("category_id", cat.ID), conversation(sess))

	if err := req.edit("✅ دسته بندی تغییر کرد."); err != nil {
		return err
	}
	return req.out.Send(successChangeText("دسته بندی", old, cat.Name), s.b.menus.Markup(MenuEditOptions))
}

func successChangeText(field, oldText, newText string) string {
	return fmt.Sprintf("✅ %s محصول با موفقیت از '%s' به '%s' تغییر یافت.", field, oldText, newText)
}
