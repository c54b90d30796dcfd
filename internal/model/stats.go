package model

// AdminStats is recomputed on every request and never persisted.
type AdminStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalProducts int64 `json:"totalProducts"`
	TotalStores   int64 `json:"totalStores"`
	TotalOrders   int64 `json:"totalOrders"`
}
