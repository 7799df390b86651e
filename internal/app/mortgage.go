package app

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"listing_finder/internal/domain"
)

// Calculator defaults, matching the home page widget.
const (
	DefaultMortgagePrice       = 500_000.0
	DefaultMortgageDownPayment = 100_000.0
	DefaultMortgageRate        = 4.5
	DefaultMortgageTermYears   = 30

	MaxMortgageTermYears = 50
)

var usd = message.NewPrinter(language.AmericanEnglish)

// CalculateMortgage returns the fixed monthly payment of an amortized loan.
// annualRate is a percentage. A zero rate divides the principal evenly. A
// term outside 1..MaxMortgageTermYears, or inputs that do not yield a finite
// payment, give 0.
func CalculateMortgage(price, downPayment, annualRate float64, termYears int) float64 {
	if termYears <= 0 || termYears > MaxMortgageTermYears {
		return 0
	}
	payments := float64(termYears * 12)
	principal := price - downPayment
	r := annualRate / 100 / 12
	if r == 0 {
		return principal / payments
	}
	growth := math.Pow(1+r, payments)
	m := principal * (r * growth) / (growth - 1)
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 0
	}
	return m
}

// FormatCurrency renders amount as USD with en-US grouping and at most
// fractionDigits decimals.
func FormatCurrency(amount float64, fractionDigits int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + usd.Sprint(number.Decimal(amount, number.MaxFractionDigits(fractionDigits)))
}

// NewMortgage computes the monthly payment and its whole-dollar display form.
func NewMortgage(price, downPayment, annualRate float64, termYears int) domain.Mortgage {
	m := CalculateMortgage(price, downPayment, annualRate, termYears)
	return domain.Mortgage{
		Price:          price,
		DownPayment:    downPayment,
		InterestRate:   annualRate,
		LoanTermYears:  termYears,
		MonthlyPayment: m,
		Formatted:      FormatCurrency(m, 0),
	}
}
