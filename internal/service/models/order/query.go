package order

// QueryOrdersModel represents filter parameters for querying orders.
// The zero value selects every order.
type QueryOrdersModel struct {
	CustomerID string `json:"customerId,omitempty"`
}

// Matches reports whether o passes the filter.
func (q *QueryOrdersModel) Matches(o Order) bool {
	if q == nil {
		return true
	}

	return q.CustomerID == "" || q.CustomerID == o.CustomerID
}
