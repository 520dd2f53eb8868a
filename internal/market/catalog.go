package market

import "github.com/rickgao/cryptopicks/internal/model"

// DefaultCatalog returns the built-in top-20 crypto catalog used when the
// config file does not list assets.
func DefaultCatalog() []model.Asset {
	return []model.Asset{
		{ID: 1, Symbol: "BTC", Name: "Bitcoin", Rank: 1, BasePrice: 63250.00, Line: 63500.00, ImpliedMove: 3.2, IV: 45.5, Volume24h: 28500000000},
		{ID: 2, Symbol: "ETH", Name: "Ethereum", Rank: 2, BasePrice: 3125.50, Line: 3150.00, ImpliedMove: 4.1, IV: 52.3, Volume24h: 15200000000},
		{ID: 3, Symbol: "BNB", Name: "BNB", Rank: 3, BasePrice: 585.25, Line: 590.00, ImpliedMove: 3.8, IV: 48.2, Volume24h: 1800000000},
		{ID: 4, Symbol: "SOL", Name: "Solana", Rank: 4, BasePrice: 142.80, Line: 145.00, ImpliedMove: 6.5, IV: 68.5, Volume24h: 3200000000},
		{ID: 5, Symbol: "XRP", Name: "Ripple", Rank: 5, BasePrice: 0.5234, Line: 0.5250, ImpliedMove: 5.2, IV: 58.3, Volume24h: 2100000000},
		{ID: 6, Symbol: "USDC", Name: "USD Coin", Rank: 6, BasePrice: 1.0000, Line: 1.0001, ImpliedMove: 0.1, IV: 2.5, Volume24h: 5800000000},
		{ID: 7, Symbol: "ADA", Name: "Cardano", Rank: 7, BasePrice: 0.4567, Line: 0.4600, ImpliedMove: 5.8, IV: 62.1, Volume24h: 580000000},
		{ID: 8, Symbol: "DOGE", Name: "Dogecoin", Rank: 8, BasePrice: 0.1234, Line: 0.1250, ImpliedMove: 7.2, IV: 75.8, Volume24h: 890000000},
		{ID: 9, Symbol: "TRX", Name: "TRON", Rank: 9, BasePrice: 0.0876, Line: 0.0880, ImpliedMove: 4.5, IV: 55.2, Volume24h: 420000000},
		{ID: 10, Symbol: "TON", Name: "Toncoin", Rank: 10, BasePrice: 5.67, Line: 5.70, ImpliedMove: 5.5, IV: 60.5, Volume24h: 320000000},
		{ID: 11, Symbol: "LINK", Name: "Chainlink", Rank: 11, BasePrice: 13.45, Line: 13.50, ImpliedMove: 6.8, IV: 65.3, Volume24h: 680000000},
		{ID: 12, Symbol: "AVAX", Name: "Avalanche", Rank: 12, BasePrice: 28.90, Line: 29.00, ImpliedMove: 7.1, IV: 71.2, Volume24h: 480000000},
		{ID: 13, Symbol: "MATIC", Name: "Polygon", Rank: 13, BasePrice: 0.7234, Line: 0.7300, ImpliedMove: 6.2, IV: 63.8, Volume24h: 390000000},
		{ID: 14, Symbol: "DOT", Name: "Polkadot", Rank: 14, BasePrice: 6.78, Line: 6.80, ImpliedMove: 5.9, IV: 61.5, Volume24h: 280000000},
		{ID: 15, Symbol: "UNI", Name: "Uniswap", Rank: 15, BasePrice: 7.89, Line: 7.95, ImpliedMove: 6.5, IV: 67.2, Volume24h: 250000000},
		{ID: 16, Symbol: "ATOM", Name: "Cosmos", Rank: 16, BasePrice: 9.12, Line: 9.20, ImpliedMove: 6.0, IV: 62.8, Volume24h: 180000000},
		{ID: 17, Symbol: "LTC", Name: "Litecoin", Rank: 17, BasePrice: 85.40, Line: 86.00, ImpliedMove: 4.2, IV: 48.5, Volume24h: 520000000},
		{ID: 18, Symbol: "BCH", Name: "Bitcoin Cash", Rank: 18, BasePrice: 425.60, Line: 430.00, ImpliedMove: 5.5, IV: 58.9, Volume24h: 340000000},
		{ID: 19, Symbol: "NEAR", Name: "NEAR Protocol", Rank: 19, BasePrice: 5.23, Line: 5.30, ImpliedMove: 7.8, IV: 73.5, Volume24h: 290000000},
		{ID: 20, Symbol: "APT", Name: "Aptos", Rank: 20, BasePrice: 8.45, Line: 8.50, ImpliedMove: 8.2, IV: 76.8, Volume24h: 210000000},
	}
}
