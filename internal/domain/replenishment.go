package domain

// ReplenishmentItem is the stock position of one SKU at one store.
type ReplenishmentItem struct {
	SKUCode         string  `json:"sku_code" db:"sku_code"`
	Store           string  `json:"store" db:"store"`
	CurrentStock    float64 `json:"current_stock" db:"current_stock"`
	OnOrder         float64 `json:"on_order" db:"on_order"`
	AvgDailySales   float64 `json:"avg_daily_sales" db:"avg_daily_sales"`
	MaxDailySales   float64 `json:"max_daily_sales" db:"max_daily_sales"`
	LeadTimeDays    float64 `json:"lead_time_days" db:"lead_time_days"`
	MaxLeadTimeDays float64 `json:"max_lead_time_days" db:"max_lead_time_days"`
	MinOrderQty     float64 `json:"min_order_qty" db:"min_order_qty"`
	UnitCost        float64 `json:"unit_cost" db:"unit_cost"`
}

// MOCConfig bounds the months of cover a store should carry.
type MOCConfig struct {
	MinMOC    float64 `json:"min_moc"`
	TargetMOC float64 `json:"target_moc"`
	MaxMOC    float64 `json:"max_moc"`
}

// DefaultMOCConfig returns 1 / 2 / 4 months of cover.
func DefaultMOCConfig() MOCConfig {
	return MOCConfig{MinMOC: 1, TargetMOC: 2, MaxMOC: 4}
}

// Validate enforces 0 <= min <= target <= max.
func (c MOCConfig) Validate() error {
	if c.MinMOC < 0 {
		return configErr("min_moc", "must not be negative, got %v", c.MinMOC)
	}
	if c.TargetMOC < c.MinMOC {
		return configErr("target_moc", "must be >= min_moc (%v), got %v", c.MinMOC, c.TargetMOC)
	}
	if c.MaxMOC < c.TargetMOC {
		return configErr("max_moc", "must be >= target_moc (%v), got %v", c.TargetMOC, c.MaxMOC)
	}
	return nil
}

// StockStatus classifies a replenishment position.
type StockStatus string

const (
	StockStatusStockout  StockStatus = "STOCKOUT"
	StockStatusCritical  StockStatus = "CRITICAL"
	StockStatusReorder   StockStatus = "REORDER"
	StockStatusOverstock StockStatus = "OVERSTOCK"
	StockStatusHealthy   StockStatus = "HEALTHY"
)

// ReplenishmentAlert is the evaluated position of a ReplenishmentItem.
type ReplenishmentAlert struct {
	SKUCode           string      `json:"sku_code"`
	Store             string      `json:"store"`
	Status            StockStatus `json:"status"`
	Priority          int         `json:"priority"`
	SafetyStock       int         `json:"safety_stock"`
	ReorderPoint      int         `json:"reorder_point"`
	MonthsOfCover     float64     `json:"months_of_cover"`
	DaysOfCover       float64     `json:"days_of_cover"`
	SuggestedOrderQty int         `json:"suggested_order_qty"`
	EmergencyOrderQty int         `json:"emergency_order_qty"`
	OrderCost         float64     `json:"order_cost"`
	Message           string      `json:"message"`
}
