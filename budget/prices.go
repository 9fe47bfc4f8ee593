package budget

// Price is the cost of a model in USD per 1M tokens.
type Price struct {
	PromptUSDPerM     float64
	CompletionUSDPerM float64
}

// PriceTable maps model names to prices.
type PriceTable map[string]Price

// DefaultPrice is the fallback tier for models missing from the table.
// Priced at the top tier so unknown models degrade the budget conservatively.
var DefaultPrice = Price{PromptUSDPerM: 2.50, CompletionUSDPerM: 10.00}

// DefaultPrices covers the models the default wiring uses.
var DefaultPrices = PriceTable{
	"gpt-4o":                 {PromptUSDPerM: 2.50, CompletionUSDPerM: 10.00},
	"gpt-4o-mini":            {PromptUSDPerM: 0.15, CompletionUSDPerM: 0.60},
	"gpt-4.1":                {PromptUSDPerM: 2.00, CompletionUSDPerM: 8.00},
	"gpt-4.1-mini":           {PromptUSDPerM: 0.40, CompletionUSDPerM: 1.60},
	"text-embedding-3-small": {PromptUSDPerM: 0.02},
	"text-embedding-3-large": {PromptUSDPerM: 0.13},
}

// Cost prices a usage record against the table.
func (t PriceTable) Cost(model string, promptTokens, completionTokens int) float64 {
	price, ok := t[model]
	if !ok {
		price = DefaultPrice
	}
	return float64(promptTokens)*price.PromptUSDPerM/1e6 +
		float64(completionTokens)*price.CompletionUSDPerM/1e6
}
