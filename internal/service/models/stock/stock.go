package stock

// CheckResult is the outcome of comparing requested quantity with the
// inventory on hand for one product.
type CheckResult struct {
	ProductID string `json:"productId"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Passed    bool   `json:"passed"`
}

func NewCheckResult(productID string, requested, available int) CheckResult {
	return CheckResult{
		ProductID: productID,
		Requested: requested,
		Available: available,
		Passed:    available >= requested,
	}
}

// Demand is the total quantity requested for one product across order lines.
type Demand struct {
	ProductID string
	Quantity  int
}
