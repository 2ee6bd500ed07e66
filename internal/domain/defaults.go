package domain

// DefaultLayout returns the factory arrangement of the known panel cards.
// Every card id here is stable and never reused for a different panel.
func DefaultLayout() Layout {
	return Layout{
		Version: SchemaVersion,
		Cards: []Card{
			{ID: "signal-nasdaq", Title: "NASDAQ Signal", Column: ColumnLeft, Order: 0, Visible: true, Size: SizeNormal},
			{ID: "signal-xauusd", Title: "XAUUSD Signal", Column: ColumnLeft, Order: 1, Visible: true, Size: SizeNormal},
			{ID: "watchlist", Title: "Watchlist", Column: ColumnLeft, Order: 2, Visible: true, Size: SizeCompact},
			{ID: "pattern-engine", Title: "Pattern Engine", Column: ColumnCenter, Order: 0, Visible: true, Size: SizeLarge},
			{ID: "market-overview", Title: "Market Overview", Column: ColumnCenter, Order: 1, Visible: true, Size: SizeNormal},
			{ID: "session-clock", Title: "Session Clock", Column: ColumnCenter, Order: 2, Visible: true, Size: SizeCompact},
			{ID: "news-feed", Title: "News Feed", Column: ColumnRight, Order: 0, Visible: true, Size: SizeNormal},
			{ID: "performance", Title: "Performance", Column: ColumnRight, Order: 1, Visible: true, Size: SizeNormal},
			{ID: "alerts", Title: "Alerts", Column: ColumnRight, Order: 2, Visible: true, Size: SizeCompact},
		},
	}
}

// KnownCardIDs returns the ids of the default registry in placement order.
func KnownCardIDs() []string {
	def := DefaultLayout()
	ids := make([]string, 0, len(def.Cards))
	for _, col := range Columns() {
		for _, card := range def.AllColumnCards(col) {
			ids = append(ids, card.ID)
		}
	}
	return ids
}
