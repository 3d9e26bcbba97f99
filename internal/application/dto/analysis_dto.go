package dto

import "github.com/shopspring/decimal"

// CalculateRequest body de POST /api/analysis/{turnover,profit}/calculate.
type CalculateRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Granularity string `json:"granularity" validate:"required,oneof=daily weekly monthly"`
}

// SnapshotListQuery parámetros de los listados de snapshots.
type SnapshotListQuery struct {
	PageRequest
	Scope       string `query:"scope" validate:"omitempty,oneof=overall product category"`
	Key         string `query:"key"`
	Granularity string `query:"granularity" validate:"omitempty,oneof=daily weekly monthly"`
	StartDate   string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`

	// Category sobre alcance product filtra por la categoría del producto.
	Category      string `query:"category"`
	// StockStatus solo aplica a rotación.
	StockStatus   string `query:"stock_status" validate:"omitempty,oneof=stockout overstock normal"`
	// MinProfitRate y MaxProfitRate acotan el margen neto; solo aplican a rentabilidad.
	MinProfitRate string `query:"min_profit_rate" validate:"omitempty,numeric"`
	MaxProfitRate string `query:"max_profit_rate" validate:"omitempty,numeric"`
}

// SummaryQuery parámetros de los resúmenes.
type SummaryQuery struct {
	Granularity string `query:"granularity" validate:"required,oneof=daily weekly monthly"`
	StartDate   string `query:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `query:"end_date" validate:"required,datetime=2006-01-02"`
}

// TurnoverSnapshotDTO snapshot de rotación serializado.
type TurnoverSnapshotDTO struct {
	Scope             string          `json:"scope"`
	ScopeKey          string          `json:"scope_key"`
	Date              string          `json:"date"`
	Granularity       string          `json:"granularity"`
	PeriodStart       string          `json:"period_start"`
	PeriodEnd         string          `json:"period_end"`
	TotalProducts     int             `json:"total_products"`
	ActiveProducts    int             `json:"active_products"`
	InactiveProducts  int             `json:"inactive_products"`
	StockoutProducts  int             `json:"stockout_products"`
	OverstockProducts int             `json:"overstock_products"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	TotalValue        decimal.Decimal `json:"total_value"`
	AverageStock      decimal.Decimal `json:"average_stock"`
	SalesQuantity     decimal.Decimal `json:"sales_quantity"`
	SalesAmount       decimal.Decimal `json:"sales_amount"`
	TurnoverRate      decimal.Decimal `json:"turnover_rate"`
	TurnoverDays      decimal.Decimal `json:"turnover_days"`
	HealthyStockRatio decimal.Decimal `json:"healthy_stock_ratio"`
	StockoutRatio     decimal.Decimal `json:"stockout_ratio"`
	OverstockRatio    decimal.Decimal `json:"overstock_ratio"`
	StockStatus       string          `json:"stock_status,omitempty"`
}

// ProfitSnapshotDTO snapshot de rentabilidad serializado.
type ProfitSnapshotDTO struct {
	Scope                 string          `json:"scope"`
	ScopeKey              string          `json:"scope_key"`
	Date                  string          `json:"date"`
	Granularity           string          `json:"granularity"`
	PeriodStart           string          `json:"period_start"`
	PeriodEnd             string          `json:"period_end"`
	TotalProducts         int             `json:"total_products"`
	TotalOrders           int             `json:"total_orders"`
	SalesQuantity         decimal.Decimal `json:"sales_quantity"`
	SalesAmount           decimal.Decimal `json:"sales_amount"`
	UnitCost              decimal.Decimal `json:"unit_cost"`
	ProductCost           decimal.Decimal `json:"product_cost"`
	ShippingCost          decimal.Decimal `json:"shipping_cost"`
	OperationCost         decimal.Decimal `json:"operation_cost"`
	OtherCost             decimal.Decimal `json:"other_cost"`
	TotalCost             decimal.Decimal `json:"total_cost"`
	GrossProfit           decimal.Decimal `json:"gross_profit"`
	NetProfit             decimal.Decimal `json:"net_profit"`
	GrossProfitRate       decimal.Decimal `json:"gross_profit_rate"`
	NetProfitRate         decimal.Decimal `json:"net_profit_rate"`
	AverageOrderValue     decimal.Decimal `json:"average_order_value"`
	AverageProfitPerOrder decimal.Decimal `json:"average_profit_per_order"`
}

// TurnoverListResponse listado paginado de snapshots de rotación.
type TurnoverListResponse struct {
	Items []TurnoverSnapshotDTO `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ProfitListResponse listado paginado de snapshots de rentabilidad.
type ProfitListResponse struct {
	Items []ProfitSnapshotDTO `json:"items"`
	Page  PageResponse        `json:"page"`
}

// ProductTurnoverRankDTO producto en el ranking de rotación.
type ProductTurnoverRankDTO struct {
	ProductID       string          `json:"product_id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	AvgTurnoverRate decimal.Decimal `json:"avg_turnover_rate"`
	AvgTurnoverDays decimal.Decimal `json:"avg_turnover_days"`
	Snapshots       int             `json:"snapshots"`
}

// CategoryTurnoverDTO promedios de rotación de una categoría.
type CategoryTurnoverDTO struct {
	Category        string          `json:"category"`
	AvgTurnoverRate decimal.Decimal `json:"avg_turnover_rate"`
	AvgTurnoverDays decimal.Decimal `json:"avg_turnover_days"`
	AvgTotalValue   decimal.Decimal `json:"avg_total_value"`
	Snapshots       int             `json:"snapshots"`
}

// StockHealthDTO salud de stock del último snapshot general.
type StockHealthDTO struct {
	Date              string          `json:"date"`
	HealthyStockRatio decimal.Decimal `json:"healthy_stock_ratio"`
	StockoutRatio     decimal.Decimal `json:"stockout_ratio"`
	OverstockRatio    decimal.Decimal `json:"overstock_ratio"`
}

// TurnoverSummaryDTO resumen de rotación de un rango.
type TurnoverSummaryDTO struct {
	StartDate        string                   `json:"start_date"`
	EndDate          string                   `json:"end_date"`
	Granularity      string                   `json:"granularity"`
	Snapshots        int                      `json:"snapshots"`
	AvgTurnoverRate  decimal.Decimal          `json:"avg_turnover_rate"`
	AvgTurnoverDays  decimal.Decimal          `json:"avg_turnover_days"`
	AvgTotalValue    decimal.Decimal          `json:"avg_total_value"`
	TotalSalesAmount decimal.Decimal          `json:"total_sales_amount"`
	LatestHealth     *StockHealthDTO          `json:"latest_health"`
	TopProducts      []ProductTurnoverRankDTO `json:"top_products"`
	BottomProducts   []ProductTurnoverRankDTO `json:"bottom_products"`
	Categories       []CategoryTurnoverDTO    `json:"categories"`
}

// ProfitTrendPointDTO punto de la tendencia de utilidad.
type ProfitTrendPointDTO struct {
	Date        string          `json:"date"`
	SalesAmount decimal.Decimal `json:"sales_amount"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	TotalOrders int             `json:"total_orders"`
}

// ProductProfitRankDTO producto en el ranking de utilidad.
type ProductProfitRankDTO struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	SalesQuantity decimal.Decimal `json:"sales_quantity"`
	SalesAmount   decimal.Decimal `json:"sales_amount"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	NetProfitRate decimal.Decimal `json:"net_profit_rate"`
}

// CategoryProfitDTO totales de utilidad de una categoría.
type CategoryProfitDTO struct {
	Category      string          `json:"category"`
	TotalOrders   int             `json:"total_orders"`
	SalesAmount   decimal.Decimal `json:"sales_amount"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	NetProfitRate decimal.Decimal `json:"net_profit_rate"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// ProfitSummaryDTO resumen de rentabilidad de un rango.
type ProfitSummaryDTO struct {
	StartDate       string                 `json:"start_date"`
	EndDate         string                 `json:"end_date"`
	Granularity     string                 `json:"granularity"`
	TotalOrders     int                    `json:"total_orders"`
	TotalSales      decimal.Decimal        `json:"total_sales"`
	TotalCost       decimal.Decimal        `json:"total_cost"`
	GrossProfit     decimal.Decimal        `json:"gross_profit"`
	NetProfit       decimal.Decimal        `json:"net_profit"`
	GrossProfitRate decimal.Decimal        `json:"gross_profit_rate"`
	NetProfitRate   decimal.Decimal        `json:"net_profit_rate"`
	Trend           []ProfitTrendPointDTO  `json:"trend"`
	TopProducts     []ProductProfitRankDTO `json:"top_products"`
	BottomProducts  []ProductProfitRankDTO `json:"bottom_products"`
	Categories      []CategoryProfitDTO    `json:"categories"`
}
