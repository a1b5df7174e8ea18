package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"creditdoc/internal/schedule"
	"creditdoc/internal/service"
)

type scheduleOptions struct {
	principal string
	rate      float64
	term      int
	start     string
	flat      bool
	format    string
}

func newScheduleCmd() *cobra.Command {
	var opts scheduleOptions
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print an amortization schedule or a flat repayment ledger",
		Example: `  creditdoc schedule --principal 120000000 --rate 12 --term 12
  creditdoc schedule --principal 50000000 --term 6 --flat --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchedule(cmd.OutOrStdout(), opts, time.Now())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.principal, "principal", "", "loan principal in VND")
	f.Float64Var(&opts.rate, "rate", 0, "annual interest rate in percent")
	f.IntVar(&opts.term, "term", 0, "term in months")
	f.StringVar(&opts.start, "start", "", "start date (YYYY-MM-DD), defaults to today")
	f.BoolVar(&opts.flat, "flat", false, "equal principal instalments without interest")
	f.StringVar(&opts.format, "format", "table", "output format: table or yaml")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("term")
	return cmd
}

type scheduleReport struct {
	Principal  decimal.Decimal        `yaml:"principal"`
	AnnualRate float64                `yaml:"annual_rate_percent,omitempty"`
	TermMonths int                    `yaml:"term_months"`
	Rows       []schedule.ScheduleRow `yaml:"rows"`
	Totals     schedule.Totals        `yaml:"totals"`
}

func runSchedule(w io.Writer, opts scheduleOptions, now time.Time) error {
	principal, err := decimal.NewFromString(opts.principal)
	if err != nil {
		return fmt.Errorf("invalid --principal %q: %w", opts.principal, err)
	}
	start := now
	if opts.start != "" {
		if start, err = time.Parse(time.DateOnly, opts.start); err != nil {
			return fmt.Errorf("invalid --start %q: %w", opts.start, err)
		}
	}

	var rows []schedule.ScheduleRow
	if opts.flat {
		rows, err = schedule.ComputeFlatRepaymentSchedule(principal, opts.term, start)
	} else {
		rows, err = schedule.ComputeAmortizationSchedule(schedule.LoanTerms{
			Principal:         principal,
			AnnualRatePercent: opts.rate,
			TermMonths:        opts.term,
		}, start)
	}
	if err != nil {
		return err
	}

	report := scheduleReport{
		Principal:  principal,
		TermMonths: opts.term,
		Rows:       rows,
		Totals:     schedule.Summarize(rows),
	}
	if !opts.flat {
		report.AnnualRate = opts.rate
	}

	switch opts.format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		return writeScheduleTable(w, report, opts.flat)
	default:
		return fmt.Errorf("unknown --format %q (want table or yaml)", opts.format)
	}
}

func writeScheduleTable(w io.Writer, r scheduleReport, flat bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if flat {
		fmt.Fprintln(tw, "Kỳ\tNgày đến hạn\tSố tiền\tTrạng thái\t")
		for _, row := range r.Rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", row.Period, row.DueDate.Format("02/01/2006"),
				service.FormatVND(row.Amount), row.Status)
		}
		fmt.Fprintf(tw, "\t\t%s\t\t\n", service.FormatVND(r.Totals.Payment))
		return tw.Flush()
	}

	fmt.Fprintln(tw, "Kỳ\tNgày đến hạn\tDư nợ đầu kỳ\tTiền gốc\tTiền lãi\tTổng phải trả\t")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n", row.Period, row.DueDate.Format("02/01/2006"),
			service.FormatVND(row.PrincipalBalance), service.FormatVND(row.PrincipalPortion),
			service.FormatVND(row.InterestDue), service.FormatVND(row.TotalPayment))
	}
	fmt.Fprintf(tw, "\t\t\t%s\t%s\t%s\t\n", service.FormatVND(r.Totals.Principal),
		service.FormatVND(r.Totals.Interest), service.FormatVND(r.Totals.Payment))
	return tw.Flush()
}
