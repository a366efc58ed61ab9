package views

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jwaldner/finsea/internal/seasonality"
	"github.com/jwaldner/finsea/internal/timeseries"
)

// headRows is how many leading rows of each table the console view prints.
const headRows = 5

// ConsoleView describes the computed tables on a writer, in the shape of the
// analysis: overall components first, then the calendar groupings.
type ConsoleView struct {
	w io.Writer
}

// NewConsoleView creates a console view writing to w.
func NewConsoleView(w io.Writer) *ConsoleView {
	return &ConsoleView{w: w}
}

// Render describes the data of the result.
func (v *ConsoleView) Render(res *seasonality.Result) error {
	fmt.Fprintf(v.w, "Seasonality analysis of %s (%s)\n", res.Info.Name, res.Symbol)
	fmt.Fprintf(v.w, "Range: %s .. %s (%d complete years)\n",
		res.RangeStart.Format("2006-01-02"), res.RangeEnd.Format("2006-01-02"), res.Years)

	v.printSeries("Prices", res.Prices, res.Info.Currency)
	v.printSeries("Trend", res.Trend, res.Info.Currency)
	v.printSeries("Seasonal", res.Seasonal, res.Info.Currency)
	v.printSeries("Residual", res.Residual, res.Info.Currency)

	v.printFrame("Annual daily prices", res.AnnualPrices, headRows)
	v.printFrame("Annual daily seasonal", res.AnnualSeasonal, headRows)
	v.printFrame("Annual daily residual", res.AnnualResidual, headRows)
	v.printFrame("Monthly seasonal", res.MonthlySeasonal, 0)
	v.printFrame("Quarterly seasonal", res.QuarterlySeasonal, 0)
	v.printFrame("Weekly seasonal", res.WeeklySeasonal, headRows)
	v.printFrame("Weekdaily seasonal", res.WeekdaySeasonal, 0)

	return nil
}

func (v *ConsoleView) printSeries(title string, s *timeseries.Series, unit string) {
	fmt.Fprintf(v.w, "\n%s (%d rows):\n", title, s.Len())
	tw := tabwriter.NewWriter(v.w, 0, 4, 2, ' ', 0)
	n := s.Len()
	if n > headRows {
		n = headRows
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(tw, "  %s\t%.4f\t%s\n", s.Timestamps[i].Format("2006-01-02"), s.Values[i], unit)
	}
	if s.Len() > headRows {
		fmt.Fprintf(tw, "  ...\t\t\n")
	}
	tw.Flush()
}

// printFrame prints the per-label aggregate of a wide frame. rows == 0 prints
// every label.
func (v *ConsoleView) printFrame(title string, frame *seasonality.WideFrame, rows int) {
	aggregates := frame.Aggregate(0.95)
	fmt.Fprintf(v.w, "\n%s (%d labels x %d years):\n", title, len(frame.Labels), len(frame.Years))

	tw := tabwriter.NewWriter(v.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  label\tmean\tmin\tmax\tn\n")
	for i, agg := range aggregates {
		if rows > 0 && i >= rows {
			fmt.Fprintf(tw, "  ...\t\t\t\t\n")
			break
		}
		fmt.Fprintf(tw, "  %s\t%.4f\t%.4f\t%.4f\t%d\n", agg.Label, agg.Mean, agg.Min, agg.Max, agg.N)
	}
	tw.Flush()
}
