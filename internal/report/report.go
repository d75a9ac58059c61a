// Package report builds the admin statistics summary and its xlsx export.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"smpanel/internal/models"
)

// Stats are the headline counters shown under "📊 آمار ربات".
type Stats struct {
	Panels       int64
	ActivePanels int64
	Categories   int64
	Products     int64
	Orders       int64
}

// Text renders the stats message.
func (s Stats) Text() string {
	var b strings.Builder
	b.WriteString("📊 آمار ربات\n\n")
	fmt.Fprintf(&b, "🖥 تعداد پنل‌ها: %d (فعال: %d)\n", s.Panels, s.ActivePanels)
	fmt.Fprintf(&b, "🛒 تعداد دسته‌بندی‌ها: %d\n", s.Categories)
	fmt.Fprintf(&b, "🛍 تعداد محصولات: %d\n", s.Products)
	fmt.Fprintf(&b, "🧾 تعداد سفارش‌ها: %d", s.Orders)
	return b.String()
}

const (
	SheetPanels     = "پنل‌ها"
	SheetCategories = "دسته‌بندی‌ها"
	SheetProducts   = "محصولات"
)

// Workbook writes panels, categories and products to one sheet each.
// Panel passwords are never exported.
func Workbook(panels []models.Panel, categories []models.Category, products []models.Product) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	panelRows := make([][]interface{}, 0, len(panels))
	for _, p := range panels {
		panelRows = append(panelRows, []interface{}{p.ID, p.Name, p.URL, p.Type, p.Status, p.CreatedAt.Format("2006-01-02 15:04")})
	}
	if err := writeSheet(f, SheetPanels, []string{"ID", "نام", "آدرس", "نوع", "وضعیت", "تاریخ ایجاد"}, panelRows); err != nil {
		return nil, err
	}

	catRows := make([][]interface{}, 0, len(categories))
	for _, c := range categories {
		catRows = append(catRows, []interface{}{c.ID, c.Name, joinUints(c.PanelIDs), joinInts(c.Ports())})
	}
	if err := writeSheet(f, SheetCategories, []string{"ID", "نام", "پنل‌ها", "پورت‌ها"}, catRows); err != nil {
		return nil, err
	}

	prodRows := make([][]interface{}, 0, len(products))
	for _, p := range products {
		prodRows = append(prodRows, []interface{}{p.ID, p.Name, p.CategoryName, p.DataLimit, p.Duration, p.Price, p.Status})
	}
	if err := writeSheet(f, SheetProducts, []string{"ID", "نام", "دسته بندی", "حجم (GB)", "مدت (روز)", "قیمت (تومان)", "وضعیت"}, prodRows); err != nil {
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetPanels); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("new sheet %s: %w", name, err)
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinUints(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
