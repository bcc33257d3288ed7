/*
tax.go - 8-step progressive termination income tax

PURPOSE:
  Implements the statutory retirement income tax scheme:

    1. retirement income   = severance pay
    2. service-year deduction (step function of ceil(serviceYears))
    3. converted salary    = (income - deduction) x 12 / ceil(serviceYears)
    4. converted-salary deduction (step function: 100% below 8M, then
       60% / 55% / 45% / 35% marginal bands)
    5. tax base            = max(convertedSalary - convertedDeduction, 0)
    6. converted tax       = progressive bracket table (6%-45%)
    7. final income tax    = floor(convertedTax x ceil(serviceYears) / 12)
    8. local tax           = floor(incomeTax x 10%)

  Every floor truncates; nothing rounds half-up.
*/
package severance

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// ComputeTerminationTax runs the 8-step scheme for the given severance pay
// and fractional service years.
func ComputeTerminationTax(severancePay payroll.Money, serviceYears decimal.Decimal, rules payroll.StatutoryRuleSet) TaxBreakdown {
	years := int(serviceYears.Ceil().IntPart())
	if years < 1 {
		years = 1
	}
	yearsDec := decimal.NewFromInt(int64(years))

	deduction := serviceYearsDeduction(years)

	converted := severancePay.Sub(deduction).ClampZero().
		Mul(twelve).Div(yearsDec)

	convertedDed := convertedSalaryDeduction(converted)

	taxBase := converted.Sub(convertedDed).ClampZero()

	convertedTax := rules.IncomeTax.ProgressiveTax(taxBase)

	incomeTax := convertedTax.Mul(yearsDec).Div(twelve).Floor()
	localTax := incomeTax.Mul(rules.IncomeTax.LocalTaxRate).Floor()

	return TaxBreakdown{
		ServiceYearsDeduction: deduction,
		ConvertedSalary:       converted,
		ConvertedDeduction:    convertedDed,
		TaxBase:               taxBase,
		IncomeTax:             incomeTax,
		LocalTax:              localTax,
	}
}

// serviceYearsDeduction is the statutory step function of whole service
// years (ceiling-rounded).
func serviceYearsDeduction(years int) payroll.Money {
	y := int64(years)
	switch {
	case years <= 5:
		return payroll.Won(1_000_000 * y)
	case years <= 10:
		return payroll.Won(5_000_000 + 2_000_000*(y-5))
	case years <= 20:
		return payroll.Won(15_000_000 + 2_500_000*(y-10))
	default:
		return payroll.Won(40_000_000 + 3_000_000*(y-20))
	}
}

// convertedSalaryDeduction is the second step function: fully deductible
// below 8M, then decreasing marginal percentages across defined bands.
func convertedSalaryDeduction(converted payroll.Money) payroll.Money {
	band := func(base int64, rate string, over int64) payroll.Money {
		excess := converted.Sub(payroll.Won(over))
		return payroll.Won(base).Add(excess.Mul(dec(rate)))
	}

	switch {
	case !converted.GreaterThan(payroll.Won(8_000_000)):
		return converted
	case !converted.GreaterThan(payroll.Won(70_000_000)):
		return band(8_000_000, "0.60", 8_000_000)
	case !converted.GreaterThan(payroll.Won(100_000_000)):
		return band(45_200_000, "0.55", 70_000_000)
	case !converted.GreaterThan(payroll.Won(300_000_000)):
		return band(61_700_000, "0.45", 100_000_000)
	default:
		return band(151_700_000, "0.35", 300_000_000)
	}
}

// AnnuityTax simulates the IRP annuity tax benefit: 70% of the lump-sum tax
// when the annuity is received within 10 years, 60% beyond. Informational
// only; never deducted from the stored severance record.
func AnnuityTax(lumpSumTax payroll.Money, withinTenYears bool) payroll.Money {
	rate := dec("0.6")
	if withinTenYears {
		rate = dec("0.7")
	}
	return lumpSumTax.Mul(rate).Floor()
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
