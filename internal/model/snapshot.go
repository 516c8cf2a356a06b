package model

// Snapshot is a point-in-time reading for one campaign, keyed in the store
// by its epoch-millisecond timestamp (string form). Immutable once written.
type Snapshot struct {
	Spent  float64 `json:"spent"`
	Cart   int     `json:"cart"`
	Clicks int     `json:"clicks"`
	Orders int     `json:"orders"`
	Sales  float64 `json:"sales"`
}

// LiveMetrics is the read-only record published by the live-metrics
// collaborator, joined to campaigns by case-insensitive channel name.
// AddedToCart is a pointer so an explicit zero is distinguishable from the
// field being absent.
type LiveMetrics struct {
	Channel     string  `json:"channel"`
	Clicks      int     `json:"clicks"`
	AddedToCart *int    `json:"added_to_cart,omitempty"`
	CartCount   int     `json:"cart_count"`
	Orders      int     `json:"orders"`
	Sales       float64 `json:"sales"`
}

// CartTotal returns the collaborator's added_to_cart counter, falling back
// to the legacy cart_count field only when added_to_cart is absent.
func (l LiveMetrics) CartTotal() int {
	if l.AddedToCart != nil {
		return *l.AddedToCart
	}
	return l.CartCount
}
