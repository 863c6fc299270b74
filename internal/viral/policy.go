package viral

// Platform names of the prediction universe
const (
	Twitter   = "Twitter"
	Instagram = "Instagram"
	LinkedIn  = "LinkedIn"
	YouTube   = "YouTube"
)

// ModifierRule adds Bonus when the word count lies in [MinWords, MaxWords]
// and, if AnyOf is set, the lowercased text contains one of its substrings.
// A zero MaxWords means no upper bound.
type ModifierRule struct {
	MinWords int
	MaxWords int
	AnyOf    []string
	Bonus    float64
}

func (r ModifierRule) applies(text string, words int) bool {
	if words < r.MinWords {
		return false
	}
	if r.MaxWords > 0 && words > r.MaxWords {
		return false
	}
	if len(r.AnyOf) == 0 {
		return true
	}
	return containsAny(text, r.AnyOf)
}

// Policy is the replaceable table of heuristics behind a prediction
type Policy struct {
	// Platforms is the universe in tie-break order
	Platforms    []string
	Rules        map[string][]ModifierRule
	PostingTimes map[string]string
	BaseWeight   float64
	ModWeight    float64
}

// DefaultPolicy returns the stock heuristic constants
func DefaultPolicy() Policy {
	return Policy{
		Platforms: []string{Twitter, Instagram, LinkedIn, YouTube},
		Rules: map[string][]ModifierRule{
			Twitter: {
				{MaxWords: 30, Bonus: 0.08},
				{AnyOf: []string{"#"}, Bonus: 0.05},
				{AnyOf: []string{"!"}, Bonus: 0.02},
			},
			Instagram: {
				{MinWords: 8, MaxWords: 60, Bonus: 0.07},
				{AnyOf: []string{"#"}, Bonus: 0.07},
				{AnyOf: []string{"love", "fun", "amazing"}, Bonus: 0.04},
			},
			LinkedIn: {
				{MinWords: 20, Bonus: 0.08},
				{AnyOf: []string{"growth", "strategy", "data"}, Bonus: 0.06},
			},
			YouTube: {
				{MinWords: 40, Bonus: 0.07},
				{AnyOf: []string{"how to", "guide", "tutorial"}, Bonus: 0.05},
			},
		},
		PostingTimes: map[string]string{
			Twitter:   "5–8 PM (Weekdays)",
			Instagram: "6–9 PM (Weekdays)",
			LinkedIn:  "8–10 AM (Mornings)",
			YouTube:   "5–8 PM (Weekends)",
		},
		BaseWeight: 0.7,
		ModWeight:  0.3,
	}
}
