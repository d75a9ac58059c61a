package bot

const deniedText = "⛔ شما دسترسی به این بخش را ندارید."

// IsAdmin reports whether userID is the configured administrator.
func (b *Bot) IsAdmin(userID int64) bool {
	return b.adminID != 0 && userID == b.adminID
}
