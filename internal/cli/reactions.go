package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apperrors "catlab/internal/errors"
	"catlab/internal/infrastructure"
	"catlab/pkg/contracts/domain"
)

// ReactionView is the JSON shape of one reaction record in CLI output.
type ReactionView struct {
	Name     string              `json:"name"`
	Feed     []string            `json:"feed"`
	Products map[string][]string `json:"products"`
}

// NewReactionsCommand creates the reactions command group.
func NewReactionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reactions",
		Short: "Inspect or extend the reaction library",
	}

	cmd.AddCommand(newReactionsListCommand(rootOpts))
	cmd.AddCommand(newReactionsShowCommand(rootOpts))
	cmd.AddCommand(newReactionsAddCommand(rootOpts))

	return cmd
}

func newReactionsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List reaction record names",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(cmd, rootOpts)

			env, err := rootOpts.environment()
			if err != nil {
				return outputError(formatter, err)
			}
			ctx := infrastructure.EnsureTraceID(cmd.Context())

			names, err := env.library.ListReactions(ctx)
			if err != nil {
				return outputError(formatter, err)
			}
			return outputNameList(formatter, "reactions", names)
		},
	}
}

func newReactionsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <name>",
		Short:         "Show one reaction record",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(cmd, rootOpts)

			env, err := rootOpts.environment()
			if err != nil {
				return outputError(formatter, err)
			}
			ctx := infrastructure.EnsureTraceID(cmd.Context())

			spec, err := env.library.Reaction(ctx, args[0])
			if err != nil {
				return outputError(formatter, err)
			}
			return outputReaction(formatter, spec)
		},
	}
}

func newReactionsAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		feed     []string
		products []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a reaction record to the library",
		Long: `Add a reaction record. The record is write-once: adding a name that already
exists is refused.

Compound names must match the column names the instrument software reports;
they are stored lower-case.

Example:
  catlab reactions add mto --feed methanol,dme \
    --product 'olefins=ethylene,propylene' --product 'aromatics=benzene,toluene'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(cmd, rootOpts)

			env, err := rootOpts.environment()
			if err != nil {
				return outputError(formatter, err)
			}
			ctx := infrastructure.EnsureTraceID(cmd.Context())

			spec, err := buildReactionSpec(args[0], feed, products)
			if err != nil {
				return outputError(formatter, err)
			}
			if err := env.library.AddReaction(ctx, spec); err != nil {
				return outputError(formatter, err)
			}

			if formatter.Format == "json" {
				return formatter.Success(reactionView(spec))
			}
			fmt.Fprintf(formatter.Writer, "Added reaction %q (%s)\n", spec.Name, env.paths.GetReactionPath(spec.Name))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&feed, "feed", nil, "feed compounds (comma separated)")
	cmd.Flags().StringArrayVar(&products, "product", nil, "product group as group=compound,compound (repeatable)")
	_ = cmd.MarkFlagRequired("feed")
	_ = cmd.MarkFlagRequired("product")

	return cmd
}

// buildReactionSpec assembles a reaction record from the add command's flags.
func buildReactionSpec(name string, feed, products []string) (*domain.ReactionSpec, error) {
	spec := &domain.ReactionSpec{
		Name:     name,
		Feed:     domain.CompoundGroup{Compounds: feed},
		Products: make(map[string]domain.CompoundGroup, len(products)),
	}

	for _, entry := range products {
		group, compounds, ok := strings.Cut(entry, "=")
		group = strings.TrimSpace(group)
		if !ok || group == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("product %q must be group=compound,compound", entry), nil)
		}
		if _, exists := spec.Products[group]; exists {
			return nil, apperrors.NewValidationError(fmt.Sprintf("product group %q given twice", group), nil)
		}

		var names []string
		for _, c := range strings.Split(compounds, ",") {
			if c = strings.TrimSpace(c); c != "" {
				names = append(names, c)
			}
		}
		if len(names) == 0 {
			return nil, apperrors.NewValidationError(fmt.Sprintf("product group %q has no compounds", group), nil)
		}
		spec.Products[group] = domain.CompoundGroup{Compounds: names}
	}

	return spec, nil
}

func reactionView(spec *domain.ReactionSpec) ReactionView {
	view := ReactionView{
		Name:     spec.Name,
		Feed:     spec.Feed.Compounds,
		Products: make(map[string][]string, len(spec.Products)),
	}
	for name, group := range spec.Products {
		view.Products[name] = group.Compounds
	}
	return view
}

func outputReaction(f *OutputFormatter, spec *domain.ReactionSpec) error {
	if f.Format == "json" {
		return f.Success(reactionView(spec))
	}

	fmt.Fprintf(f.Writer, "Reaction: %s\n", spec.Name)
	fmt.Fprintf(f.Writer, "  Feed: %s\n", strings.Join(spec.Feed.Compounds, ", "))
	fmt.Fprintln(f.Writer, "  Products:")
	for _, name := range spec.GroupNames() {
		fmt.Fprintf(f.Writer, "    %s: %s\n", name, strings.Join(spec.ProductCompounds(name), ", "))
	}
	return nil
}

// outputNameList renders a record name listing for the list subcommands.
func outputNameList(f *OutputFormatter, kind string, names []string) error {
	if f.Format == "json" {
		if names == nil {
			names = []string{}
		}
		return f.Success(map[string][]string{kind: names})
	}

	if len(names) == 0 {
		fmt.Fprintf(f.Writer, "No %s defined\n", kind)
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(f.Writer, name)
	}
	return nil
}
