package seeder

import "github.com/shopspring/decimal"

// Stub is one generated payroll row.
type Stub struct {
	PayDate     string
	Earnings    decimal.Decimal
	FedTax      decimal.Decimal
	FedMed      decimal.Decimal
	FedSS       decimal.Decimal
	StateTax    decimal.Decimal
	Retire401k  decimal.Decimal
	HealthCare  decimal.Decimal
	HoursWorked decimal.Decimal
}

var (
	fedTaxRate   = decimal.RequireFromString("0.12")
	fedMedRate   = decimal.RequireFromString("0.0145")
	fedSSRate    = decimal.RequireFromString("0.062")
	stateTaxRate = decimal.RequireFromString("0.05")
	retireRate   = decimal.RequireFromString("0.04")
	healthCare   = decimal.NewFromInt(150)
	monthlyHours = decimal.NewFromInt(160)
	twelve       = decimal.NewFromInt(12)
)

// PayStub derives a monthly pay statement from an annual salary.
func PayStub(salary decimal.Decimal, payDate string) Stub {
	gross := salary.Div(twelve).Round(2)
	return Stub{
		PayDate:     payDate,
		Earnings:    gross,
		FedTax:      gross.Mul(fedTaxRate).Round(2),
		FedMed:      gross.Mul(fedMedRate).Round(2),
		FedSS:       gross.Mul(fedSSRate).Round(2),
		StateTax:    gross.Mul(stateTaxRate).Round(2),
		Retire401k:  gross.Mul(retireRate).Round(2),
		HealthCare:  healthCare,
		HoursWorked: monthlyHours,
	}
}

// Deductions is the sum of every withheld amount.
func (s Stub) Deductions() decimal.Decimal {
	return s.FedTax.Add(s.FedMed).Add(s.FedSS).Add(s.StateTax).Add(s.Retire401k).Add(s.HealthCare)
}
