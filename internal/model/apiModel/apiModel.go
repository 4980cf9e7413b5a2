package apiModel

// JSON shapes returned to the UI. Monetary values are plain JSON numbers, so
// decimals are converted to float64 at this boundary only.

type Transaction struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol,omitempty"`
	Qty       float64 `json:"qty"`
	Price     float64 `json:"price"`
	Fee       float64 `json:"fee"`
	NetAmount float64 `json:"netAmount"`
	Notes     string  `json:"notes,omitempty"`
}

type CreateTransactionRequest struct {
	UserID    string  `json:"uid" binding:"required"`
	Date      string  `json:"date" binding:"required"`
	Type      string  `json:"type" binding:"required"`
	Symbol    string  `json:"symbol"`
	Qty       float64 `json:"qty"`
	Price     float64 `json:"price"`
	Fee       float64 `json:"fee"`
	NetAmount float64 `json:"netAmount"`
	Notes     string  `json:"notes"`
}

type Holding struct {
	Symbol        string  `json:"symbol"`
	Qty           float64 `json:"qty"`
	CurrentPrice  float64 `json:"currentPrice"`
	MarketValue   float64 `json:"marketValue"`
	LifecycleGain float64 `json:"lifecycleGain"`
	Allocation    float64 `json:"allocation"`
}

type AssetAllocation struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type PortfolioSummary struct {
	NetWorth           float64           `json:"netWorth"`
	NetInvested        float64           `json:"netInvested"`
	CashOnHand         float64           `json:"cashOnHand"`
	TotalLifecycleGain float64           `json:"totalLifecycleGain"`
	Holdings           []Holding         `json:"holdings"`
	AssetAllocation    []AssetAllocation `json:"assetAllocation"`
}

type Snapshot struct {
	Date          string  `json:"date"`
	NetWorth      float64 `json:"netWorth"`
	NetInvested   float64 `json:"netInvested"`
	CashOnHand    float64 `json:"cashOnHand"`
	TotalGain     float64 `json:"totalGain"`
	HoldingsCount int     `json:"holdingsCount"`
}

type Settings struct {
	BaseInvested *float64 `json:"baseInvested"`
}

type ReportLink struct {
	DownloadLink string `json:"downloadLink"`
}
