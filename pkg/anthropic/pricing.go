package anthropic

import "strings"

// Usage counts the tokens of one call.
type Usage struct {
	Input      int64
	Output     int64
	CacheWrite int64
	CacheRead  int64
}

// Prompt returns every input token, cached or not.
func (u Usage) Prompt() int64 {
	return u.Input + u.CacheWrite + u.CacheRead
}

// price is USD per million tokens.
type price struct {
	in, out float64
}

// prices is keyed by model family; dated model IDs match by prefix and the
// longest prefix wins.
var prices = map[string]price{
	"claude-3-5-haiku": {0.80, 4.00},
	"claude-haiku-4":   {1.00, 5.00},
	"claude-sonnet-4":  {3.00, 15.00},
	"claude-opus-4":    {15.00, 75.00},
	"claude-opus-4-5":  {5.00, 25.00},
	"claude-opus-4-6":  {5.00, 25.00},
}

func lookupPrice(model string) (price, bool) {
	var (
		best  price
		match int
	)
	for family, p := range prices {
		if strings.HasPrefix(model, family) && len(family) > match {
			best, match = p, len(family)
		}
	}
	return best, match > 0
}

// Cost estimates the USD cost of u on model. Cache writes bill at 1.25x
// the input rate and cache reads at 0.1x. Unknown models cost 0.
func (u Usage) Cost(model string) float64 {
	p, ok := lookupPrice(model)
	if !ok {
		return 0
	}
	const mtok = 1e6
	return float64(u.Input)/mtok*p.in +
		float64(u.Output)/mtok*p.out +
		float64(u.CacheWrite)/mtok*p.in*1.25 +
		float64(u.CacheRead)/mtok*p.in*0.1
}
