package models

type DashboardStats struct {
	TotalSales    float64 `json:"total_sales"`
	TotalOrders   int     `json:"total_orders"`
	TotalProfit   float64 `json:"total_profit"`
	LowStockCount int     `json:"low_stock_count"`
}

type SalesPoint struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

type PaymentBreakdown struct {
	Method  PaymentMethod `json:"method"`
	Label   string        `json:"label"`
	Revenue float64       `json:"revenue"`
	Count   int           `json:"count"`
}

type ProductSales struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
}

type InventoryValuation struct {
	CostValue       float64 `json:"cost_value"`
	SaleValue       float64 `json:"sale_value"`
	PotentialProfit float64 `json:"potential_profit"`
}
