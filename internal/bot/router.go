package bot

import "strings"

// routeText dispatches a text update in priority order: global back
// buttons and /cancel, the active scene, then the menu table.
func (b *Bot) routeText(req *request, text string) error {
	text = strings.TrimSpace(text)

	if !b.IsAdmin(req.userID) {
		return req.out.Send(deniedText)
	}

	if text == cancelCommand {
		return b.cancel(req)
	}
	if target, ok := BackTarget(text); ok {
		return b.leave(req, target)
	}

	if sess, ok := b.sessions.Get(req.userID); ok {
		sc, ok := b.scenes[sess.Scene]
		if !ok {
			b.sessions.End(req.userID)
			return b.show(req, menuForNav(b.sessions.Nav(req.userID)))
		}
		return sc.onText(req, sess, text)
	}

	return b.routeMenu(req, ActionOf(text))
}

// routeCallback dispatches a callback query. An active scene takes every
// callback; the panel management table only runs outside scenes.
func (b *Bot) routeCallback(req *request, data string) error {
	if !b.IsAdmin(req.userID) {
		return req.answer(deniedText)
	}

	if sess, ok := b.sessions.Get(req.userID); ok {
		if sc, ok := b.scenes[sess.Scene]; ok {
			err := sc.onCallback(req, sess, data)
			if err == nil {
				err = req.answer("")
			}
			return err
		}
		b.sessions.End(req.userID)
	}

	if err := b.routePanelCallback(req, data); err != nil {
		return err
	}
	return req.answer("")
}

// cancel ends the active scene, if any, and returns to its parent menu.
func (b *Bot) cancel(req *request) error {
	target := menuForNav(b.sessions.Nav(req.userID))
	if sess, ok := b.sessions.Get(req.userID); ok {
		if sc, ok := b.scenes[sess.Scene]; ok {
			target = sc.parent()
		}
	}
	return b.leave(req, target)
}

func (b *Bot) leave(req *request, target MenuKind) error {
	if b.sessions.End(req.userID) {
		if err := req.out.Send(cancelledText); err != nil {
			return err
		}
	}
	return b.show(req, target)
}

var sceneEntries = map[Action]string{
	ActionAddPanel:       sceneAddPanel,
	ActionAddCategory:    sceneAddCategory,
	ActionAddProduct:     sceneAddProduct,
	ActionEditProduct:    sceneEditProduct,
	ActionDeleteCategory: sceneDeleteCategory,
	ActionDeleteProduct:  sceneDeleteProduct,
	ActionExtraVolume:    sceneExtraVolume,
}

// routeMenu handles menu buttons pressed outside scenes. Unknown text
// re-shows the menu the user is on.
func (b *Bot) routeMenu(req *request, action Action) error {
	if name, ok := sceneEntries[action]; ok {
		return b.scenes[name].start(req)
	}
	if text, ok := placeholders[action]; ok {
		return req.out.Send(text)
	}

	switch action {
	case ActionOpenAdmin:
		return b.show(req, MenuAdmin)
	case ActionOpenShop:
		return b.show(req, MenuShop)
	case ActionManagePanels:
		return b.sendPanelList(req)
	case ActionStats:
		return b.sendStats(req)
	default:
		return b.show(req, menuForNav(b.sessions.Nav(req.userID)))
	}
}
