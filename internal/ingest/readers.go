package ingest

import (
	"sort"
	"strings"

	"github.com/andresuchdata/merchplan/internal/domain"
)

// fieldParser keeps the first parse error so a whole row can be read before checking.
type fieldParser struct {
	r   row
	err error
}

func (p *fieldParser) float(idx int) float64 {
	if p.err != nil {
		return 0
	}
	v, err := p.r.float(idx)
	if err != nil {
		p.err = err
	}
	return v
}

func (p *fieldParser) integer(idx int) int {
	if p.err != nil {
		return 0
	}
	v, err := p.r.integer(idx)
	if err != nil {
		p.err = err
	}
	return v
}

// ReadHistory loads a weekly series. When the file carries a SKU column and sku is not empty,
// only that SKU's rows are kept. Rows sharing a period are summed. Without a period column
// the row order defines periods 1..n.
func ReadHistory(path, sku string) ([]domain.HistoricalPoint, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return historyFromTable(t, sku)
}

func historyFromTable(t *table, sku string) ([]domain.HistoricalPoint, error) {
	idxValue, err := t.requireCol("value", "units_sold", "units", "qty", "sales")
	if err != nil {
		return nil, err
	}
	idxPeriod := t.colIndex("period_index", "period", "week", "minggu")
	idxSKU := t.colIndex("sku_code", "sku")

	totals := make(map[int]float64)
	seq := 0
	err = t.each(func(r row) error {
		if sku != "" && idxSKU >= 0 && !strings.EqualFold(r.str(idxSKU), sku) {
			return nil
		}
		p := fieldParser{r: r}
		seq++
		period := seq
		if idxPeriod >= 0 {
			period = p.integer(idxPeriod)
		}
		value := p.float(idxValue)
		if p.err != nil {
			return p.err
		}
		totals[period] += value
		return nil
	})
	if err != nil {
		return nil, err
	}

	points := make([]domain.HistoricalPoint, 0, len(totals))
	for period, value := range totals {
		points = append(points, domain.HistoricalPoint{PeriodIndex: period, Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].PeriodIndex < points[j].PeriodIndex })
	return points, nil
}

// ReadSnapshots loads SKU snapshots for clearance optimization.
func ReadSnapshots(path string) ([]domain.SKUSnapshot, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return snapshotsFromTable(t)
}

func snapshotsFromTable(t *table) ([]domain.SKUSnapshot, error) {
	idxSKU, err := t.requireCol("sku_code", "sku")
	if err != nil {
		return nil, err
	}
	idxName := t.colIndex("product_name", "nama", "name")
	idxCategory := t.colIndex("category", "kategori")
	idxStore := t.colIndex("store", "toko", "nama store")
	idxStock := t.colIndex("current_stock", "stock", "stok")
	idxPrice := t.colIndex("current_price", "price", "harga")
	idxOriginal := t.colIndex("original_price", "full_price")
	idxCost := t.colIndex("unit_cost", "cost", "hpp")
	idxWeeksOnHand := t.colIndex("weeks_on_hand", "age_weeks")
	idxSellThrough := t.colIndex("sell_through_rate", "sell_through", "str")
	idxSeasonEnd := t.colIndex("weeks_to_season_end", "weeks_remaining")
	idxAvgWeekly := t.colIndex("avg_weekly_sales", "weekly_sales")
	idxStockValue := t.colIndex("stock_value", "inventory_value")

	snapshots := make([]domain.SKUSnapshot, 0, len(t.rows))
	err = t.each(func(r row) error {
		p := fieldParser{r: r}
		s := domain.SKUSnapshot{
			SKUCode:          r.str(idxSKU),
			ProductName:      r.str(idxName),
			Category:         r.str(idxCategory),
			Store:            r.str(idxStore),
			CurrentStock:     p.float(idxStock),
			CurrentPrice:     p.float(idxPrice),
			OriginalPrice:    p.float(idxOriginal),
			UnitCost:         p.float(idxCost),
			WeeksOnHand:      p.float(idxWeeksOnHand),
			SellThroughRate:  p.float(idxSellThrough),
			WeeksToSeasonEnd: p.float(idxSeasonEnd),
			AvgWeeklySales:   p.float(idxAvgWeekly),
			StockValue:       p.float(idxStockValue),
		}
		if p.err != nil {
			return p.err
		}
		if s.SKUCode == "" {
			return nil
		}
		if s.OriginalPrice == 0 {
			s.OriginalPrice = s.CurrentPrice
		}
		if r.str(idxStockValue) == "" {
			s.StockValue = s.CurrentStock * s.CurrentPrice
		}
		snapshots = append(snapshots, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// ReadReplenishmentItems loads per-store stock positions.
func ReadReplenishmentItems(path string) ([]domain.ReplenishmentItem, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return itemsFromTable(t)
}

func itemsFromTable(t *table) ([]domain.ReplenishmentItem, error) {
	idxSKU, err := t.requireCol("sku_code", "sku")
	if err != nil {
		return nil, err
	}
	idxStore := t.colIndex("store", "toko", "nama store")
	idxStock := t.colIndex("current_stock", "stock", "stok")
	idxOnOrder := t.colIndex("on_order", "sedang_po", "sedang po")
	idxDailySales := t.colIndex("avg_daily_sales", "daily_sales", "daily sales")
	idxMaxDailySales := t.colIndex("max_daily_sales", "max. daily sales", "max daily sales")
	idxLeadTime := t.colIndex("lead_time_days", "lead_time", "lead time")
	idxMaxLeadTime := t.colIndex("max_lead_time_days", "max_lead_time", "max. lead time", "max lead time")
	idxMinOrder := t.colIndex("min_order_qty", "min_order", "min. order", "min order")
	idxCost := t.colIndex("unit_cost", "cost", "hpp")

	items := make([]domain.ReplenishmentItem, 0, len(t.rows))
	err = t.each(func(r row) error {
		p := fieldParser{r: r}
		item := domain.ReplenishmentItem{
			SKUCode:         r.str(idxSKU),
			Store:           r.str(idxStore),
			CurrentStock:    p.float(idxStock),
			OnOrder:         p.float(idxOnOrder),
			AvgDailySales:   p.float(idxDailySales),
			MaxDailySales:   p.float(idxMaxDailySales),
			LeadTimeDays:    p.float(idxLeadTime),
			MaxLeadTimeDays: p.float(idxMaxLeadTime),
			MinOrderQty:     p.float(idxMinOrder),
			UnitCost:        p.float(idxCost),
		}
		if p.err != nil {
			return p.err
		}
		if item.SKUCode == "" {
			return nil
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
