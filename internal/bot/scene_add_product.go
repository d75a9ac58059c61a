package bot

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"smpanel/internal/models"
	"smpanel/internal/pkg/utils"
	"smpanel/internal/repository"
	"smpanel/internal/session"
)

const sceneAddProduct = "add_product"

const (
	addProductName = iota
	addProductCategory
	addProductDataLimit
	addProductDuration
	addProductPrice
)

const (
	cbAPCategory = "apd_cat_"

	addProductStartText = "🛍 اضافه کردن محصول\n\n" +
		"📌 ابتدا نام اشتراک خود را ارسال نمایید\n" +
		"⚠️ نکات هنگام وارد کردن نام محصول:\n" +
		"• در کنار نام اشتراک حتما قیمت اشتراک را هم وارد کنید.\n" +
		"• در کنار نام اشتراک حتما زمان اشتراک را هم وارد کنید.\n\n" +
		"به عنوان مثال: ۱ ماه ۲۰۰ گیگ ۱۵۰ هزار تومان"
	addProductCategoryText = "📌 دسته بندی محصول را انتخاب کنید:"
	invalidIntText         = "❌ مقدار وارد شده معتبر نیست. لطفاً یک عدد صحیح وارد کنید."
	invalidPriceText       = "❌ قیمت وارد شده معتبر نیست. لطفاً فقط اعداد را وارد کنید."
	noCategoriesText       = "❌ هیچ دسته بندی یافت نشد. ابتدا یک دسته بندی اضافه کنید."
	invalidCategoryText    = "❌ دسته بندی انتخاب شده معتبر نیست.\nلطفاً دوباره تلاش کنید."
	duplicateProductText   = "❌ محصولی با این نام از قبل وجود دارد. لطفاً نام دیگری ارسال کنید."
)

type addProductForm struct {
	Name         string
	CategoryID   uint
	CategoryName string
	DataLimit    int
	Duration     int
}

type addProductScene struct {
	b *Bot
}

func (s *addProductScene) name() string     { return sceneAddProduct }
func (s *addProductScene) parent() MenuKind { return MenuShop }

func (s *addProductScene) start(req *request) error {
	s.b.begin(req, s, addProductName, &addProductForm{})
	return req.out.Send(addProductStartText, s.b.menus.Markup(MenuShopBack))
}

func (s *addProductScene) onText(req *request, sess *session.Session, text string) error {
	form := sess.Form.(*addProductForm)

	switch sess.Step {
	case addProductName:
		if text == "" {
			return req.out.Send("❌ نام محصول نمی‌تواند خالی باشد. لطفاً دوباره ارسال کنید.")
		}
		taken, err := s.b.repos.Product.NameTaken(text)
		if err != nil {
			return err
		}
		if taken {
			return req.out.Send(duplicateProductText)
		}
		form.Name = text
		return s.askCategory(req, sess)

	case addProductCategory:
		return req.out.Send(useButtonsText)

	case addProductDataLimit:
		v, err := utils.ParseNonNegativeInt(text)
		if err != nil {
			return req.out.Send(invalidIntText)
		}
		form.DataLimit = v
		sess.Step = addProductDuration
		return req.out.Send(fmt.Sprintf("✅ حجم اشتراک: %d گیگابایت\n\n"+
			"زمان اشتراک را وارد نمایید\n"+
			"توجه واحد زمان اشتراک روز است\n"+
			"اگر می خواهید زمان نامحدود باشد عدد 0 را ارسال کنید", v))

	case addProductDuration:
		v, err := utils.ParseNonNegativeInt(text)
		if err != nil {
			return req.out.Send(invalidIntText)
		}
		form.Duration = v
		sess.Step = addProductPrice
		return req.out.Send(fmt.Sprintf("✅ مدت زمان اشتراک: %d روز\n\n"+
			"قیمت اشتراک را ارسال کنید.\n"+
			"توجه:\n"+
			"محصول براساس تومان است و قیمت را بدون هیچ کاراکتر اضافی ارسال نمایید.", v))

	case addProductPrice:
		price, err := utils.ParsePrice(text)
		if err != nil {
			return req.out.Send(invalidPriceText)
		}
		return s.commit(req, sess, form, float64(price))
	}
	return nil
}

// askCategory lists categories; with none there is nothing to attach a product to.
func (s *addProductScene) askCategory(req *request, sess *session.Session) error {
	cats, err := s.b.repos.Category.FindAll()
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return s.b.endScene(req, s, noCategoriesText)
	}
	rows := make([][]inlineButton, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, button(c.Name, idData(cbAPCategory, c.ID)))
	}
	sess.Step = addProductCategory
	return req.out.Send(addProductCategoryText, inlineRows(rows...))
}

func (s *addProductScene) onCallback(req *request, sess *session.Session, data string) error {
	form := sess.Form.(*addProductForm)
	id, ok := idFrom(data, cbAPCategory)
	if sess.Step != addProductCategory || !ok {
		return req.answer(useButtonsText)
	}

	cat, err := s.b.repos.Category.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return s.b.endSceneEdit(req, s, invalidCategoryText)
	}
	if err != nil {
		return err
	}

	form.CategoryID = cat.ID
	form.CategoryName = cat.Name
	sess.Step = addProductDataLimit
	return req.edit(fmt.Sprintf("✅ دسته بندی انتخاب شده: %s\n\n"+
		"حجم اشتراک را ارسال کنید\n"+
		"توجه واحد حجم گیگابایت است\n\n"+
		"اگر میخواهید حجم نامحدود باشد عدد 0 ارسال کنید", cat.Name))
}

func (s *addProductScene) commit(req *request, sess *session.Session, form *addProductForm, price float64) error {
	categoryID := form.CategoryID
	p := &models.Product{
		Name:       form.Name,
		DataLimit:  form.DataLimit,
		Duration:   form.Duration,
		Price:      price,
		CategoryID: &categoryID,
		UsersLimit: 1,
		Status:     models.ProductStatusActive,
	}
	err := s.b.repos.Product.Create(p)
	switch {
	case errors.Is(err, repository.ErrDuplicateName):
		sess.Step = addProductName
		return req.out.Send(duplicateProductText)
	case errors.Is(err, repository.ErrUnknownCategory):
		if err := req.out.Send(invalidCategoryText); err != nil {
			return err
		}
		return s.askCategory(req, sess)
	case err != nil:
		return fmt.Errorf("create product: %w", err)
	}
	s.b.logger.Info("product added", zap.Uint("product_id", p.ID), zap.String("name", p.Name), zap.Uint("category_id", categoryID), conversation(sess))

	return s.b.endScene(req, s, fmt.Sprintf("✅ محصول با موفقیت ذخیره شد 🥳🎉\n\n"+
		"📝 نام محصول: %s\n"+
		"🏷️ دسته بندی: %s\n"+
		"📊 حجم: %s\n"+
		"⏱️ مدت زمان: %s\n"+
		"💰 قیمت: %s", p.Name, form.CategoryName, gbText(p.DataLimit), daysText(p.Duration), tomanText(p.Price)))
}
