package models

// KeywordRecord is one trend keyword as returned by the upstream
// analyzer API.
type KeywordRecord struct {
	Coef       float64 `json:"coef"`
	Count      int     `json:"count"`
	Tag        string  `json:"tag"`
	University string  `json:"university"`
}

// Score is the full-precision relevance product used as the sort key.
func (k KeywordRecord) Score() float64 {
	return k.Coef * float64(k.Count)
}
