package models

// Plan is a subscription tier from the plan catalog.
type Plan struct {
	Name    string  `json:"name" toml:"name"`
	Price   float64 `json:"price" toml:"price"`
	Credits int     `json:"credits" toml:"credits"`
	Bonus   int     `json:"bonus" toml:"bonus"`
	FreeKM  int     `json:"free_km" toml:"free_km"`
	Tag     string  `json:"tag,omitempty" toml:"tag"`
	PriceID string  `json:"-" toml:"price_id"`
}

func (p Plan) TotalCredits() int {
	return p.Credits + p.Bonus
}
