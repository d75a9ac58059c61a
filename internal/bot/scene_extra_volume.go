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

const sceneExtraVolume = "extra_volume"

const (
	extraVolumeCategory = iota
	extraVolumeMenu
	extraVolumePrice
	extraVolumeMin
	extraVolumeMax
	extraVolumeToggle
)

const (
	cbEVCategory = "ev_cat_"
	cbEVCancel   = "ev_cancel"
	cbEVOn       = "ev_on"
	cbEVOff      = "ev_off"
	cbEVBackMenu = "ev_back_menu"

	extraVolumeStartText   = "➕ تنظیمات حجم اضافه\n\n📌 لطفاً یک دسته‌بندی انتخاب کنید:"
	extraVolumeNoCatsText  = "❌ هیچ دسته‌بندی یافت نشد. ابتدا یک دسته‌بندی اضافه کنید."
	extraVolumePickText    = "لطفاً یکی از گزینه‌های منو را انتخاب کنید."
	extraVolumeBadPrice    = "❌ قیمت نامعتبر است. لطفاً یک عدد وارد کنید:"
	extraVolumeNonPositive = "❌ قیمت باید عدد مثبت باشد. لطفاً دوباره تلاش کنید:"
	extraVolumeBadVolume   = "❌ حجم نامعتبر است. لطفاً یک عدد وارد کنید:"
)

type extraVolumeForm struct {
	CategoryID   uint
	CategoryName string
}

type extraVolumeScene struct {
	b *Bot
}

func (s *extraVolumeScene) name() string     { return sceneExtraVolume }
func (s *extraVolumeScene) parent() MenuKind { return MenuShop }

func (s *extraVolumeScene) start(req *request) error {
	cats, err := s.b.repos.Category.FindAll()
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return req.out.Send(extraVolumeNoCatsText)
	}
	rows := make([][]inlineButton, 0, len(cats)+1)
	for _, c := range cats {
		rows = append(rows, button(c.Name, idData(cbEVCategory, c.ID)))
	}
	rows = append(rows, button("🔙 بازگشت", cbEVCancel))
	s.b.begin(req, s, extraVolumeCategory, &extraVolumeForm{})
	return req.out.Send(extraVolumeStartText, inlineRows(rows...))
}

func volumeText(v int) string {
	if v > 0 {
		return fmt.Sprintf("%d گیگابایت", v)
	}
	return "بدون محدودیت"
}

func enabledText(on bool) string {
	if on {
		return "✅ فعال"
	}
	return "❌ غیرفعال"
}

func (s *extraVolumeScene) statusText(form *extraVolumeForm, st *models.ExtraVolumeSetting) string {
	return fmt.Sprintf("➕ تنظیمات حجم اضافه برای: %s\n\n"+
		"تنظیمات فعلی:\n"+
		"💰 قیمت هر گیگابایت: %s تومان\n"+
		"⬇️ حداقل حجم: %s\n"+
		"⬆️ حداکثر حجم: %s\n"+
		"🔄 وضعیت خرید: %s",
		form.CategoryName, utils.FormatNumber(int64(st.PricePerGB)), volumeText(st.MinVolume), volumeText(st.MaxVolume), enabledText(st.IsEnabled))
}

// showMenu sends the current settings with the settings keyboard.
func (s *extraVolumeScene) showMenu(req *request, sess *session.Session) error {
	form := sess.Form.(*extraVolumeForm)
	st, err := s.b.repos.ExtraVolume.FindOrDefault(form.CategoryID)
	if err != nil {
		return err
	}
	sess.Step = extraVolumeMenu
	return req.out.Send(s.statusText(form, st), s.b.menus.Markup(MenuExtraVolume))
}

func (s *extraVolumeScene) onCallback(req *request, sess *session.Session, data string) error {
	form := sess.Form.(*extraVolumeForm)

	switch sess.Step {
	case extraVolumeCategory:
		if data == cbEVCancel {
			return s.b.endSceneEdit(req, s, backToShopPendingText)
		}
		id, ok := idFrom(data, cbEVCategory)
		if !ok {
			break
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
		if err := req.edit(fmt.Sprintf("✅ دسته‌بندی انتخاب شده: %s", cat.Name)); err != nil {
			return err
		}
		return s.showMenu(req, sess)

	case extraVolumeToggle:
		switch data {
		case cbEVBackMenu:
			if err := req.edit("↩️ تغییری اعمال نشد."); err != nil {
				return err
			}
			return s.showMenu(req, sess)
		case cbEVOn, cbEVOff:
			return s.setEnabled(req, sess, data == cbEVOn)
		}
	}
	return req.answer(useButtonsText)
}

func (s *extraVolumeScene) onText(req *request, sess *session.Session, text string) error {
	form := sess.Form.(*extraVolumeForm)

	switch sess.Step {
	case extraVolumeCategory, extraVolumeToggle:
		return req.out.Send(useButtonsText)

	case extraVolumeMenu:
		return s.chooseOption(req, sess, form, ActionOf(text))
	}

	if ActionOf(text) == ActionEVBack {
		return s.showMenu(req, sess)
	}

	switch sess.Step {
	case extraVolumePrice:
		if strings.HasPrefix(strings.TrimSpace(text), "-") {
			return req.out.Send(extraVolumeNonPositive)
		}
		v, err := utils.ParsePrice(text)
		if err != nil {
			return req.out.Send(extraVolumeBadPrice)
		}
		if v <= 0 {
			return req.out.Send(extraVolumeNonPositive)
		}
		return s.set(req, sess, repository.FieldPricePerGB, int(v), "قیمت هر گیگابایت",
			func(st *models.ExtraVolumeSetting) string { return utils.FormatNumber(int64(st.PricePerGB)) + " تومان" })

	case extraVolumeMin, extraVolumeMax:
		field, label, bound := repository.FieldMinVolume, "حداقل حجم", "حداقل"
		get := func(st *models.ExtraVolumeSetting) string { return volumeText(st.MinVolume) }
		if sess.Step == extraVolumeMax {
			field, label, bound = repository.FieldMaxVolume, "حداکثر حجم", "حداکثر"
			get = func(st *models.ExtraVolumeSetting) string { return volumeText(st.MaxVolume) }
		}
		if strings.HasPrefix(strings.TrimSpace(text), "-") {
			return req.out.Send(fmt.Sprintf("❌ %s حجم باید عدد غیرمنفی باشد. لطفاً دوباره تلاش کنید:", bound))
		}
		v, err := utils.ParseNonNegativeInt(text)
		if err != nil {
			return req.out.Send(extraVolumeBadVolume)
		}
		return s.set(req, sess, field, v, label, get)
	}
	return nil
}

func (s *extraVolumeScene) chooseOption(req *request, sess *session.Session, form *extraVolumeForm, action Action) error {
	st, err := s.b.repos.ExtraVolume.FindOrDefault(form.CategoryID)
	if err != nil {
		return err
	}
	back := s.b.menus.Markup(MenuExtraVolumeBack)

	switch action {
	case ActionEVPrice:
		sess.Step = extraVolumePrice
		return req.out.Send(fmt.Sprintf("قیمت فعلی هر گیگابایت: %s تومان\n\n"+
			"لطفاً قیمت جدید هر گیگابایت را به تومان وارد کنید:", utils.FormatNumber(int64(st.PricePerGB))), back)

	case ActionEVMin:
		sess.Step = extraVolumeMin
		return req.out.Send(fmt.Sprintf("حداقل حجم فعلی: %s\n\n"+
			"لطفاً حداقل حجم جدید را به گیگابایت وارد کنید (برای بدون محدودیت عدد 0 را وارد کنید):", volumeText(st.MinVolume)), back)

	case ActionEVMax:
		sess.Step = extraVolumeMax
		return req.out.Send(fmt.Sprintf("حداکثر حجم فعلی: %s\n\n"+
			"لطفاً حداکثر حجم جدید را به گیگابایت وارد کنید (برای بدون محدودیت عدد 0 را وارد کنید):", volumeText(st.MaxVolume)), back)

	case ActionEVToggle:
		sess.Step = extraVolumeToggle
		return req.out.Send(fmt.Sprintf("وضعیت فعلی خرید حجم اضافه: %s\n\nلطفاً وضعیت جدید را انتخاب کنید:", enabledText(st.IsEnabled)),
			inlineRows([]inlineButton{
				{text: "فعال ✅", data: cbEVOn},
				{text: "غیرفعال ❌", data: cbEVOff},
			}, button("🔙 بازگشت", cbEVBackMenu)))
	}
	return req.out.Send(extraVolumePickText)
}

// set upserts one numeric field and reports old and new values.
func (s *extraVolumeScene) set(req *request, sess *session.Session, field repository.ExtraVolumeField, value int, label string, show func(*models.ExtraVolumeSetting) string) error {
	form := sess.Form.(*extraVolumeForm)
	before, err := s.b.repos.ExtraVolume.FindOrDefault(form.CategoryID)
	if err != nil {
		return err
	}
	after, err := s.b.repos.ExtraVolume.Upsert(form.CategoryID, field, value)
	if err != nil {
		return fmt.Errorf("set extra volume %s: %w", field, err)
	}
	s.b.logger.Info("extra volume updated", zap.Uint("category_id", form.CategoryID), zap.String("field", string(field)), zap.Int("value", value), conversation(sess))

	if err := req.out.Send(fmt.Sprintf("✅ %s با موفقیت از %s به %s تغییر یافت.", label, show(before), show(after))); err != nil {
		return err
	}
	return s.showMenu(req, sess)
}

func (s *extraVolumeScene) setEnabled(req *request, sess *session.Session, on bool) error {
	form := sess.Form.(*extraVolumeForm)
	before, err := s.b.repos.ExtraVolume.FindOrDefault(form.CategoryID)
	if err != nil {
		return err
	}
	after, err := s.b.repos.ExtraVolume.Upsert(form.CategoryID, repository.FieldIsEnabled, on)
	if err != nil {
		return fmt.Errorf("set extra volume status: %w", err)
	}
	s.b.logger.Info("extra volume toggled", zap.Uint("category_id", form.CategoryID), zap.Bool("enabled", on), conversation(sess))

	if err := req.edit(fmt.Sprintf("✅ وضعیت خرید حجم اضافه با موفقیت از %s به %s تغییر یافت.",
		enabledText(before.IsEnabled), enabledText(after.IsEnabled))); err != nil {
		return err
	}
	return s.showMenu(req, sess)
}
