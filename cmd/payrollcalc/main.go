/*
main.go - Command-line entry point

PURPOSE:
  Runs one payroll or severance calculation from a JSON request file and
  prints the itemized result as JSON. Useful for spot checks and for
  replaying a disputed pay slip against a rule database.

COMMAND-LINE FLAGS:
  -input      Request JSON path (required)
  -mode       "pay" (default) or "severance"
  -db         SQLite database path for rule records, withholding table and
              payroll history; empty = statutory defaults only
  -save       Persist the pay result into payroll history (pay mode, needs -db)
  -log-level  debug|info|warn|error (default info)

REQUEST FORMAT (pay mode):
  {
    "employee_id": "emp-1",
    "basis": "hourly",
    "amount": 10320,
    "meal_allowance": 200000,
    "birth_date": "1990-03-01",
    "dependents": 1,
    "hire_date": "2024-01-02",
    "reference_date": "2026-01-31",
    "intervals": [{"start": "2026-01-05T09:00:00+09:00",
                   "end":   "2026-01-05T18:00:00+09:00"}]
  }

SEE ALSO:
  - payroll/calculator.go: the pipeline this drives
  - store/sqlite: the database schema
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/warp/payroll-engine/logger"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/severance"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// REQUEST DTOs
// =============================================================================

type intervalJSON struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type payRequest struct {
	EmployeeID     string         `json:"employee_id"`
	Basis          string         `json:"basis"`
	Amount         int64          `json:"amount"`
	MealAllowance  int64          `json:"meal_allowance,omitempty"`
	TransportAllow int64          `json:"transport_allowance,omitempty"`
	ChildcareAllow int64          `json:"childcare_allowance,omitempty"`
	BirthDate      string         `json:"birth_date"`
	Dependents     int            `json:"dependents"`
	HireDate       string         `json:"hire_date"`
	ReferenceDate  string         `json:"reference_date"`
	Intervals      []intervalJSON `json:"intervals"`
	PreviousGross  *int64         `json:"previous_gross,omitempty"`
	Holidays       []string       `json:"holidays,omitempty"`
}

type severanceRequest struct {
	EmployeeID     string `json:"employee_id"`
	Basis          string `json:"basis"`
	Amount         int64  `json:"amount"`
	HireDate       string `json:"hire_date"`
	RetirementDate string `json:"retirement_date"`

	BasePay         int64 `json:"lookback_base_pay"`
	FixedAllowances int64 `json:"lookback_fixed_allowances,omitempty"`
	PremiumPay      int64 `json:"lookback_premium_pay,omitempty"`
	UnusedLeave     int64 `json:"unused_leave_compensation,omitempty"`
	AnnualBonus     int64 `json:"annual_bonus,omitempty"`
	IncludeBonus    bool  `json:"include_bonus,omitempty"`

	Exclusions []struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"exclusions,omitempty"`
}

// =============================================================================
// MAIN
// =============================================================================

func main() {
	var (
		inputPath = flag.String("input", "", "request JSON path (required)")
		mode      = flag.String("mode", "pay", "pay or severance")
		dbPath    = flag.String("db", "", "SQLite database path (optional)")
		save      = flag.Bool("save", false, "persist pay result into payroll history")
		logLevel  = flag.String("log-level", "info", "debug|info|warn|error")
	)
	flag.Parse()

	log := logger.Init(*logLevel)

	if *inputPath == "" {
		log.Error("missing -input")
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		fail(log, "read input", err)
	}

	var store *sqlite.Store
	var resolver *payroll.Resolver
	var table payroll.WithholdingTable
	if *dbPath != "" {
		store, err = sqlite.New(*dbPath)
		if err != nil {
			fail(log, "open database", err)
		}
		defer store.Close()
		resolver = payroll.NewResolver(store)
		table = store
		log.Info("rule database attached", "path", *dbPath)
	} else {
		resolver = payroll.NewResolver(nil)
		log.Info("no rule database, statutory defaults apply")
	}

	ctx := context.Background()

	switch *mode {
	case "pay":
		runPay(ctx, log, data, resolver, table, store, *save)
	case "severance":
		runSeverance(ctx, log, data, resolver)
	default:
		fail(log, "mode", fmt.Errorf("unknown mode %q", *mode))
	}
}

func runPay(ctx context.Context, log *slog.Logger, data []byte, resolver *payroll.Resolver, table payroll.WithholdingTable, store *sqlite.Store, save bool) {
	var req payRequest
	if err := json.Unmarshal(data, &req); err != nil {
		fail(log, "parse request", err)
	}

	refDate := mustDate(log, "reference_date", req.ReferenceDate)
	period := refDate.Format("2006-01")

	calendar := payroll.NewDefaultCalendar()
	for _, h := range req.Holidays {
		calendar.AddHoliday(mustDate(log, "holiday", h))
	}

	input := payroll.CalculationInput{
		EmployeeID: payroll.EmployeeID(req.EmployeeID),
		Terms: &payroll.CompensationTerms{
			Basis:  payroll.PayBasis(req.Basis),
			Amount: payroll.Won(req.Amount),
			NonTaxable: payroll.NonTaxableAllowances{
				Meal:      payroll.Won(req.MealAllowance),
				Transport: payroll.Won(req.TransportAllow),
				Childcare: payroll.Won(req.ChildcareAllow),
			},
			BirthDate:      mustDate(log, "birth_date", req.BirthDate),
			DependentCount: req.Dependents,
		},
		HireDate:      mustDate(log, "hire_date", req.HireDate),
		ReferenceDate: refDate,
	}
	for _, iv := range req.Intervals {
		input.Intervals = append(input.Intervals, payroll.AttendanceInterval{Start: iv.Start, End: iv.End})
	}

	if req.PreviousGross != nil {
		prev := payroll.Won(*req.PreviousGross)
		input.PreviousGross = &prev
	} else if store != nil {
		if prev, ok, err := store.PreviousGross(ctx, input.EmployeeID, period); err == nil && ok {
			input.PreviousGross = &prev
		}
	}

	calc := payroll.NewCalculator(resolver, table, calendar)
	result, err := calc.Calculate(ctx, input)
	if err != nil {
		if payroll.IsValidationError(err) {
			fail(log, "invalid request", err)
		}
		fail(log, "calculate", err)
	}

	if save && store != nil {
		if err := store.SavePayResult(ctx, result.EmployeeID, period, result.GrossPay, result.NetPay); err != nil {
			log.Warn("result not saved", "error", err)
		}
	}

	printJSON(log, result)
	log.Info("pay calculated", "employee", req.EmployeeID, "period", period,
		"gross", result.GrossPay.String(), "warnings", len(result.Warnings))
}

func runSeverance(ctx context.Context, log *slog.Logger, data []byte, resolver *payroll.Resolver) {
	var req severanceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		fail(log, "parse request", err)
	}

	input := severance.Input{
		EmployeeID: payroll.EmployeeID(req.EmployeeID),
		Terms: &payroll.CompensationTerms{
			Basis:  payroll.PayBasis(req.Basis),
			Amount: payroll.Won(req.Amount),
		},
		HireDate:       mustDate(log, "hire_date", req.HireDate),
		RetirementDate: mustDate(log, "retirement_date", req.RetirementDate),
		Wages: severance.LookbackWages{
			BasePay:                 payroll.Won(req.BasePay),
			FixedAllowances:         payroll.Won(req.FixedAllowances),
			PremiumPay:              payroll.Won(req.PremiumPay),
			UnusedLeaveCompensation: payroll.Won(req.UnusedLeave),
		},
		AnnualBonus:  payroll.Won(req.AnnualBonus),
		IncludeBonus: req.IncludeBonus,
	}
	for _, ex := range req.Exclusions {
		input.Exclusions = append(input.Exclusions, severance.ExclusionPeriod{
			Start: mustDate(log, "exclusion start", ex.Start),
			End:   mustDate(log, "exclusion end", ex.End),
		})
	}

	engine := severance.NewEngine(resolver)
	result, err := engine.Calculate(ctx, input)
	if err != nil {
		if severance.IsValidationError(err) {
			fail(log, "invalid request", err)
		}
		fail(log, "calculate", err)
	}

	printJSON(log, result)
	log.Info("severance calculated", "employee", req.EmployeeID,
		"status", string(result.Status), "pay", result.SeverancePay.String())
}

func mustDate(log *slog.Logger, field, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		fail(log, "parse "+field, err)
	}
	return t
}

func printJSON(log *slog.Logger, v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail(log, "encode result", err)
	}
	fmt.Println(string(out))
}

func fail(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
