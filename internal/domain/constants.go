package domain

const (
	// Payout statuses
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"

	// Currencies
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyRUB = "RUB"
)

// Statuses lists every valid payout status.
var Statuses = []string{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

// Currencies lists every supported payout currency.
var Currencies = []string{CurrencyUSD, CurrencyEUR, CurrencyRUB}

// ValidStatus reports whether s is one of the enumerated payout statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ValidCurrency reports whether c is a supported currency code.
func ValidCurrency(c string) bool {
	for _, v := range Currencies {
		if c == v {
			return true
		}
	}
	return false
}

// Terminal reports whether a status accepts no further workflow transition.
func Terminal(s string) bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}
