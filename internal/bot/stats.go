package bot

import (
	"bytes"
	"fmt"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"smpanel/internal/models"
	"smpanel/internal/report"
)

func (b *Bot) collectStats() (report.Stats, error) {
	var s report.Stats
	var err error
	if s.Panels, err = b.repos.Panel.Count(); err != nil {
		return s, fmt.Errorf("count panels: %w", err)
	}
	if s.ActivePanels, err = b.repos.Panel.CountByStatus(models.PanelStatusActive); err != nil {
		return s, fmt.Errorf("count active panels: %w", err)
	}
	if s.Categories, err = b.repos.Category.Count(); err != nil {
		return s, fmt.Errorf("count categories: %w", err)
	}
	if s.Products, err = b.repos.Product.Count(); err != nil {
		return s, fmt.Errorf("count products: %w", err)
	}
	if s.Orders, err = b.repos.Order.Count(); err != nil {
		return s, fmt.Errorf("count orders: %w", err)
	}
	return s, nil
}

// sendStats sends the counters and, when it can be built, an xlsx export.
func (b *Bot) sendStats(req *request) error {
	stats, err := b.collectStats()
	if err != nil {
		return err
	}
	if err := req.out.Send(stats.Text()); err != nil {
		return err
	}

	buf, err := b.exportWorkbook()
	if err != nil {
		b.logger.Warn("stats export failed", zap.Int64("user_id", req.userID), zap.Error(err))
		return nil
	}
	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(buf)),
		FileName: fmt.Sprintf("smpanel-%s.xlsx", time.Now().Format("20060102-1504")),
		MIME:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Caption:  "📎 خروجی اکسل پنل‌ها، دسته‌بندی‌ها و محصولات",
	}
	return req.out.Send(doc)
}

func (b *Bot) exportWorkbook() ([]byte, error) {
	panels, err := b.repos.Panel.FindAll()
	if err != nil {
		return nil, err
	}
	cats, err := b.repos.Category.FindAll()
	if err != nil {
		return nil, err
	}
	products, err := b.repos.Product.FindAll()
	if err != nil {
		return nil, err
	}
	return report.Workbook(panels, cats, products)
}
