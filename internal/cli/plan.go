package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"catlab/internal/infrastructure"
	"catlab/internal/planner"
	"catlab/pkg/contracts/domain"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	TemperatureC   float64
	TotalFlow      float64
	CatalystMassMg float64
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	defaults := planner.DefaultInputs()
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <compound>",
		Short: "Compute the feed plan for a liquid-fed experiment",
		Long: `Compute the saturator feed plan for one compound: vapour pressure at the
saturator temperature, carrier/reactant flow split, reactant mass flow, WHSV
and contact time. The compound must have an Antoine record in the library.

Example:
  catlab plan methanol --temp 37 --flow 26 --catalyst 210`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, opts, args[0])
		},
	}

	cmd.Flags().Float64Var(&opts.TemperatureC, "temp", defaults.TemperatureC, "saturator temperature (C)")
	cmd.Flags().Float64Var(&opts.TotalFlow, "flow", defaults.TotalFlow, "total flow through the saturator (ml/min)")
	cmd.Flags().Float64Var(&opts.CatalystMassMg, "catalyst", defaults.CatalystMassMg, "catalyst mass (mg)")

	return cmd
}

func runPlan(cmd *cobra.Command, opts *PlanOptions, compound string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	env, err := opts.environment()
	if err != nil {
		return outputError(formatter, err)
	}
	ctx := infrastructure.EnsureTraceID(cmd.Context())

	record, err := env.library.Antoine(ctx, compound)
	if err != nil {
		return outputError(formatter, err)
	}

	plan, err := planner.Plan(*record, planner.Inputs{
		TemperatureC:   opts.TemperatureC,
		TotalFlow:      opts.TotalFlow,
		CatalystMassMg: opts.CatalystMassMg,
	})
	if err != nil {
		return outputError(formatter, err)
	}

	return outputPlan(formatter, plan)
}

func outputPlan(f *OutputFormatter, plan *domain.SetupPlan) error {
	if f.Format == "json" {
		return f.Success(plan)
	}

	fmt.Fprintf(f.Writer, "Feed plan for %s at %.1f C\n", plan.Compound, plan.TemperatureC)
	fmt.Fprintf(f.Writer, "  Saturation pressure: %.5f mbar\n", plan.PsatMbar)
	fmt.Fprintf(f.Writer, "  Carrier flow:        %.5f ml/min\n", plan.CarrierFlow)
	fmt.Fprintf(f.Writer, "  Reactant flow:       %.5f ml/min\n", plan.ReactantFlow)
	fmt.Fprintf(f.Writer, "  Mass flow:           %.5f g/h\n", plan.MassFlow)
	fmt.Fprintf(f.Writer, "  WHSV:                %.5f 1/h (%.0f mg catalyst)\n", plan.WHSV, plan.CatalystMassMg)
	fmt.Fprintf(f.Writer, "  Contact time:        %.5f min\n", plan.ContactTime)
	return nil
}
