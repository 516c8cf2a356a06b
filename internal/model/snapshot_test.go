package model

import "testing"

func TestCartTotal(t *testing.T) {
	four := 4
	zero := 0

	tests := []struct {
		name string
		live LiveMetrics
		want int
	}{
		{"added_to_cart present", LiveMetrics{AddedToCart: &four, CartCount: 9}, 4},
		{"explicit zero beats legacy count", LiveMetrics{AddedToCart: &zero, CartCount: 9}, 0},
		{"absent falls back to legacy count", LiveMetrics{CartCount: 9}, 9},
		{"both absent", LiveMetrics{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.live.CartTotal(); got != tt.want {
				t.Errorf("CartTotal() = %d, want %d", got, tt.want)
			}
		})
	}
}
