package domain

// Market identifies the exchange a symbol trades on. It is set explicitly
// when a decision is created and carried through to trades, rather than being
// re-derived from symbol suffix patterns at calculation time.
type Market string

const (
	MarketUS       Market = "US"
	MarketShanghai Market = "SS"
	MarketShenzhen Market = "SZ"
	MarketHongKong Market = "HK"
)

// Valid reports whether m is one of the known markets.
func (m Market) Valid() bool {
	switch m {
	case MarketUS, MarketShanghai, MarketShenzhen, MarketHongKong:
		return true
	default:
		return false
	}
}
