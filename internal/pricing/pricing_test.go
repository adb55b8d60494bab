package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		mrp    int
		credit int
		cost   int
	}{
		{500, 200, 300},
		{100, 40, 60},
		{1, 0, 1},   // round(0.4)=0, round(0.6)=1
		{3, 1, 2},   // round(1.2)=1, round(1.8)=2
		{999, 400, 599},
		{250, 100, 150},
	}

	for _, ts := range tests {
		require.Equal(t, ts.credit, DonorCredit(ts.mrp), "mrp=%d", ts.mrp)
		require.Equal(t, ts.cost, BuyerCost(ts.mrp), "mrp=%d", ts.mrp)
	}
}
