package bot

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"smpanel/internal/models"
	"smpanel/internal/panel"
	"smpanel/internal/pkg/utils"
	"smpanel/internal/repository"
	"smpanel/internal/session"
)

const sceneAddPanel = "add_panel"

const (
	addPanelName = iota
	addPanelType
	addPanelURL
	addPanelUsername
	addPanelPassword
)

const (
	cbPanelTypePrefix = "ap_type_"

	addPanelStartText = "برای اضافه کردن پنل به ربات ابتدا یک نام برای پنل خود ارسال کنید\n\n" +
		"⚠️ توجه: نام پنل نامی است که در هنگام انجام عملیات جستجو نشان داده می شود."
	addPanelTypeText = "🧩 نام پنل ذخیره شد. حالا نوع پنل را انتخاب کنید:"
	addPanelURLText  = "🔗 حالا آدرس پنل خود را ارسال کنید.\n" +
		"⚠️ توجه:\n" +
		"🔸 آدرس پنل باید بدون dashboard ارسال شود.\n" +
		"🔹 در صورتی که پورت پنل 443 است، پورت را نباید وارد کنید. (گاهی حتما با پورت باید وارد کنید)\n" +
		"🔸 آخر آدرس نباید / داشته باشد.\n" +
		"🔹 در صورت وارد کردن آیپی، حتما http یا https باید داشته باشد."
	addPanelUsernameText = "👤 آدرس پنل ذخیره شد. حالا نام کاربری را ارسال کنید."
	addPanelPasswordText = "🔑 نام کاربری ذخیره شد. حالا رمز عبور پنل خود را وارد نمایید."
	addPanelCheckingText = "🔄 در حال بررسی اتصال به پنل..."
	addPanelSuccessText  = "🎉 تبریک! پنل شما با موفقیت اضافه گردید و فعال است.\n✅ پنل فعال و در دسترس است"

	addPanelEmptyNameText = "❌ نام پنل نمی‌تواند خالی باشد. لطفاً یک نام ارسال کنید."
	addPanelDuplicateText = "❌ پنلی با این نام قبلاً ثبت شده است. لطفاً نام دیگری ارسال کنید."
	addPanelBadURLText    = "❌ آدرس وارد شده معتبر نیست.\nلطفاً آدرس را به شکل http://host:port یا https://host ارسال کنید."
	addPanelEmptyText     = "❌ مقدار وارد شده نمی‌تواند خالی باشد. لطفاً دوباره ارسال کنید."
	defaultLoginFailure   = "نام کاربری یا رمز عبور نادرست"
)

type addPanelForm struct {
	Name     string
	Type     string
	URL      string
	Username string
}

type addPanelScene struct {
	b *Bot
}

func (s *addPanelScene) name() string     { return sceneAddPanel }
func (s *addPanelScene) parent() MenuKind { return MenuAdmin }

func (s *addPanelScene) start(req *request) error {
	s.b.begin(req, s, addPanelName, &addPanelForm{})
	return req.out.Send(addPanelStartText, s.b.menus.Markup(MenuAdminBack))
}

func (s *addPanelScene) typeKeyboard() interface{} {
	return inlineRows([]inlineButton{
		{text: "3x-ui", data: cbPanelTypePrefix + models.PanelTypeXUI},
		{text: "Marzban", data: cbPanelTypePrefix + models.PanelTypeMarzban},
	})
}

func (s *addPanelScene) onText(req *request, sess *session.Session, text string) error {
	form := sess.Form.(*addPanelForm)

	switch sess.Step {
	case addPanelName:
		if text == "" {
			return req.out.Send(addPanelEmptyNameText)
		}
		n, err := s.b.repos.Panel.CountByName(text)
		if err != nil {
			return fmt.Errorf("check panel name: %w", err)
		}
		if n > 0 {
			return req.out.Send(addPanelDuplicateText)
		}
		form.Name = text
		sess.Step = addPanelType
		return req.out.Send(addPanelTypeText, s.typeKeyboard())

	case addPanelType:
		return req.out.Send(addPanelTypeText, s.typeKeyboard())

	case addPanelURL:
		u, ok := utils.NormalizePanelURL(text)
		if !ok {
			return req.out.Send(addPanelBadURLText)
		}
		form.URL = u
		sess.Step = addPanelUsername
		return req.out.Send(addPanelUsernameText)

	case addPanelUsername:
		if text == "" {
			return req.out.Send(addPanelEmptyText)
		}
		form.Username = text
		sess.Step = addPanelPassword
		return req.out.Send(addPanelPasswordText)

	case addPanelPassword:
		if text == "" {
			return req.out.Send(addPanelEmptyText)
		}
		return s.probe(req, sess, form, text)
	}
	return nil
}

func (s *addPanelScene) onCallback(req *request, sess *session.Session, data string) error {
	form := sess.Form.(*addPanelForm)
	if sess.Step != addPanelType || !strings.HasPrefix(data, cbPanelTypePrefix) {
		return req.answer(useButtonsText)
	}
	switch t := strings.TrimPrefix(data, cbPanelTypePrefix); t {
	case models.PanelTypeXUI, models.PanelTypeMarzban:
		form.Type = t
	default:
		return req.answer(useButtonsText)
	}
	sess.Step = addPanelURL
	if err := req.edit(fmt.Sprintf("✅ نوع پنل: %s", form.Type)); err != nil {
		return err
	}
	return req.out.Send(addPanelURLText)
}

// probe logs in once. Only rejected credentials keep the scene at the
// password step; any other failure ends it.
func (s *addPanelScene) probe(req *request, sess *session.Session, form *addPanelForm, password string) error {
	if err := req.out.Send(addPanelCheckingText); err != nil {
		return err
	}

	res := s.b.panels.CheckLogin(req.ctx, panel.Credentials{
		URL:      form.URL,
		Username: form.Username,
		Password: password,
		Type:     form.Type,
	})

	switch res.Outcome {
	case panel.OutcomeActive:
		p := &models.Panel{
			Name:     form.Name,
			URL:      form.URL,
			Username: form.Username,
			Password: password,
			Type:     form.Type,
			Status:   models.PanelStatusActive,
		}
		err := s.b.repos.Panel.Create(p)
		if errors.Is(err, repository.ErrDuplicateName) {
			sess.Step = addPanelName
			return req.out.Send(addPanelDuplicateText)
		}
		if err != nil {
			return fmt.Errorf("save panel: %w", err)
		}
		s.b.logger.Info("panel added", zap.Uint("panel_id", p.ID), zap.String("name", p.Name), zap.String("type", p.Type), conversation(sess))
		return s.b.endScene(req, s, addPanelSuccessText)

	case panel.OutcomeBadCredentials:
		msg := res.Message
		if msg == "" {
			msg = defaultLoginFailure
		}
		return req.out.Send(loginRejectedText(msg))

	case panel.OutcomeUnverified:
		return s.b.endScene(req, s, "❌ پنل پاسخ داد اما فرمت پاسخ قابل شناسایی نیست.\n"+
			"⚠️ ممکن است آدرس لاگین اشتباه باشد.\n\n"+
			"لطفاً آدرس پنل را بررسی کنید و دوباره تلاش کنید.")

	case panel.OutcomeHTTPError:
		return s.b.endScene(req, s, fmt.Sprintf("❌ اتصال به پنل با خطا مواجه شد (کد %d).\n"+
			"دلایل احتمالی:\n"+
			"• آدرس پنل اشتباه است\n"+
			"• پنل در دسترس نیست\n"+
			"• مسیر لاگین متفاوت است\n\n"+
			"لطفاً آدرس را بررسی کنید و دوباره تلاش کنید.", res.StatusCode))

	default:
		return s.b.endScene(req, s, fmt.Sprintf("❌ خطا در اتصال به پنل: %v\n\n"+
			"دلایل احتمالی:\n"+
			"• آدرس پنل اشتباه است\n"+
			"• پنل در دسترس نیست\n"+
			"• فایروال یا محدودیت دسترسی\n\n"+
			"لطفاً آدرس را بررسی کنید و دوباره تلاش کنید.", res.Err))
	}
}

func loginRejectedText(msg string) string {
	return "❌ اتصال به پنل برقرار شد اما ورود ناموفق بود.\n" +
		"⚠️ " + msg + "\n\n" +
		"دلایل احتمالی:\n" +
		"• نام کاربری یا رمز عبور اشتباه است\n" +
		"• پنل نیاز به تنظیمات بیشتری دارد\n\n" +
		"لطفاً اطلاعات ورودی پنل را بررسی کنید و دوباره تلاش کنید.\n" +
		"🔑 رمز عبور را دوباره ارسال کنید."
}
