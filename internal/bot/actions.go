package bot

import "strings"

// Action is one reply-keyboard button. Labels are resolved through
// actionLabels only, so a button and the code that handles it cannot drift.
type Action int

const (
	ActionNone Action = iota

	// main menu
	ActionOpenAdmin

	// admin menu
	ActionStats
	ActionManagePanels
	ActionAddPanel
	ActionTestAccount
	ActionFinance
	ActionOpenShop
	ActionBackToMain

	// shop menu
	ActionDeleteProduct
	ActionAddProduct
	ActionDeleteCategory
	ActionAddCategory
	ActionEditProduct
	ActionExtraVolume
	ActionDeleteGiftCode
	ActionCreateGiftCode
	ActionDeleteDiscount
	ActionCreateDiscount
	ActionBackToAdmin

	// scene keyboards
	ActionBackToAdminSection
	ActionBackToShop
	ActionBackToShopSettings
	ActionEditDuration
	ActionEditDataLimit
	ActionEditPrice
	ActionEditCategory
	ActionEditName
	ActionEVPrice
	ActionEVMin
	ActionEVMax
	ActionEVToggle
	ActionEVBack
)

var actionLabels = [...]string{
	ActionNone: "",

	ActionOpenAdmin: "مدیریت",

	ActionStats:        "📊 آمار ربات",
	ActionManagePanels: "👥 مدیریت پنل",
	ActionAddPanel:     "🖥 اضافه کردن پنل",
	ActionTestAccount:  "⚙️ تنظیمات اکانت تست",
	ActionFinance:      "💰 مالی",
	ActionOpenShop:     "🏪 بخش فروشگاه",
	ActionBackToMain:   "🔙 بازگشت به منوی اصلی",

	ActionDeleteProduct:  "❌ حذف محصول",
	ActionAddProduct:     "🛍️ اضافه کردن محصول",
	ActionDeleteCategory: "❌ حذف دسته بندی",
	ActionAddCategory:    "🛒 اضافه کردن دسته بندی",
	ActionEditProduct:    "✏️ ویرایش محصول",
	ActionExtraVolume:    "➕ تنظیم قیمت حجم اضافه",
	ActionDeleteGiftCode: "❌ حذف کد هدیه",
	ActionCreateGiftCode: "🎁 ساخت کد هدیه",
	ActionDeleteDiscount: "❌ حذف کد تخفیف",
	ActionCreateDiscount: "🏷️ ساخت کد تخفیف",
	ActionBackToAdmin:    "🔙 بازگشت به منوی مدیریت",

	ActionBackToAdminSection: "🔙 بازگشت به بخش مدیریت",
	ActionBackToShop:         "🔙 بازگشت به بخش فروشگاه",
	ActionBackToShopSettings: "🔙 بازگشت به منوی مدیریت فروشگاه",
	ActionEditDuration:       "زمان",
	ActionEditDataLimit:      "حجم",
	ActionEditPrice:          "قیمت",
	ActionEditCategory:       "دسته بندی",
	ActionEditName:           "نام محصول",
	ActionEVPrice:            "💰 تنظیم قیمت هر گیگابایت",
	ActionEVMin:              "⬇️ تنظیم حداقل حجم خرید",
	ActionEVMax:              "⬆️ تنظیم حداکثر حجم خرید",
	ActionEVToggle:           "🔄 فعال یا غیرفعال کردن خرید حجم اضافه",
	ActionEVBack:             "🔙 بازگشت به منوی تنظیمات حجم اضافه",
}

// backTargets are the global back buttons: they work from any state and
// always end an active scene.
var backTargets = map[Action]MenuKind{
	ActionBackToMain:         MenuMain,
	ActionBackToAdmin:        MenuAdmin,
	ActionBackToAdminSection: MenuAdmin,
	ActionBackToShop:         MenuShop,
	ActionBackToShopSettings: MenuShop,
}

var actionsByLabel = func() map[string]Action {
	m := make(map[string]Action, len(actionLabels))
	for a, label := range actionLabels {
		if label != "" {
			m[label] = Action(a)
		}
	}
	return m
}()

// Label returns the button text of a.
func (a Action) Label() string {
	if a < 0 || int(a) >= len(actionLabels) {
		return ""
	}
	return actionLabels[a]
}

// ActionOf maps a button text back to its action, ActionNone when unknown.
func ActionOf(text string) Action {
	return actionsByLabel[strings.TrimSpace(text)]
}

// BackTarget reports the menu a global back button leads to.
func BackTarget(text string) (MenuKind, bool) {
	kind, ok := backTargets[ActionOf(text)]
	return kind, ok
}

// placeholders are buttons whose sections are not built yet.
var placeholders = map[Action]string{
	ActionTestAccount:    "🚧 بخش تنظیمات اکانت تست در حال توسعه است...",
	ActionFinance:        "🚧 بخش مالی در حال توسعه است...",
	ActionCreateGiftCode: "🚧 بخش ساخت کد هدیه در حال توسعه است...",
	ActionDeleteGiftCode: "🚧 بخش حذف کد هدیه در حال توسعه است...",
	ActionCreateDiscount: "🚧 بخش ساخت کد تخفیف در حال توسعه است...",
	ActionDeleteDiscount: "🚧 بخش حذف کد تخفیف در حال توسعه است...",
}
