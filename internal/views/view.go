// Package views renders an analysis result either as console tables or as a
// set of PNG chart pages.
package views

import (
	"fmt"
	"os"

	"github.com/jwaldner/finsea/internal/seasonality"
)

// View renders one analysis result.
type View interface {
	Render(res *seasonality.Result) error
}

// Options configures view construction.
type Options struct {
	// OutputPath is the console output file ("" = stdout) or the chart
	// file prefix ("" = symbol name in the working directory).
	OutputPath string
	Chart      ChartOptions
}

// New creates a view by name: "console" or "chart".
func New(name string, opts *Options) (View, error) {
	if opts == nil {
		opts = &Options{}
	}
	switch name {
	case "console":
		if opts.OutputPath != "" {
			f, err := os.Create(opts.OutputPath)
			if err != nil {
				return nil, err
			}
			return NewConsoleView(f), nil
		}
		return NewConsoleView(os.Stdout), nil
	case "chart":
		return NewChartView(opts.OutputPath, &opts.Chart), nil
	default:
		return nil, fmt.Errorf("invalid view: %s (expected \"console\" or \"chart\")", name)
	}
}
