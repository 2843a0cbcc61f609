package hl

import "strings"

// Spot metadata as returned by POST /info {type:"spotMeta"}.

type SpotToken struct {
	Name        string `json:"name"`
	SzDecimals  int    `json:"szDecimals"`
	WeiDecimals int    `json:"weiDecimals"`
	Index       int    `json:"index"`
	TokenID     string `json:"tokenId"`
	IsCanonical bool   `json:"isCanonical"`
}

type SpotPair struct {
	Name        string `json:"name"`
	Tokens      [2]int `json:"tokens"` // [base index, quote index]
	Index       int    `json:"index"`
	IsCanonical bool   `json:"isCanonical"`
}

type SpotMeta struct {
	Tokens   []SpotToken `json:"tokens"`
	Universe []SpotPair  `json:"universe"`
}

// PairNotFound is the sentinel returned by ResolvePair when either
// token or the pair itself is absent from the metadata. Resolution
// failures are non-fatal at this layer; the caller owns the
// user-facing wording.
const PairNotFound = -1

// SpotAssetOffset is added to a pair's universe index to form the
// tradable asset id for spot markets. Perps use the raw index.
const SpotAssetOffset = 10000

// TokenBySymbol finds a token by exact symbol match.
func (m *SpotMeta) TokenBySymbol(symbol string) (SpotToken, bool) {
	for _, t := range m.Tokens {
		if t.Name == symbol {
			return t, true
		}
	}
	return SpotToken{}, false
}

// ResolvePair returns the universe index of the (base, quote) pair,
// base first, or PairNotFound.
func (m *SpotMeta) ResolvePair(baseToken, quoteToken string) int {
	base, ok := m.TokenBySymbol(baseToken)
	if !ok {
		return PairNotFound
	}
	quote, ok := m.TokenBySymbol(quoteToken)
	if !ok {
		return PairNotFound
	}
	for _, pair := range m.Universe {
		if pair.Tokens[0] == base.Index && pair.Tokens[1] == quote.Index {
			return pair.Index
		}
	}
	return PairNotFound
}

// SpotAssetID converts a resolved pair index to the asset id used in
// order wires.
func SpotAssetID(pairIndex int) int {
	return SpotAssetOffset + pairIndex
}

// IsSpotAsset reports whether an asset id refers to a spot market.
func IsSpotAsset(assetID int) bool {
	return assetID >= SpotAssetOffset
}

// PairName renders the conventional BASE/QUOTE display name.
func PairName(baseToken, quoteToken string) string {
	return strings.ToUpper(baseToken) + "/" + strings.ToUpper(quoteToken)
}
