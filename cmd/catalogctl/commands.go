package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	catalogd "github.com/kailas-cloud/catalogd/pkg/sdk"
)

// validationFile is either a single submission (contract + products)
// or a whole catalog fixture (contracts + products). JSON is accepted too.
type validationFile struct {
	Contract  *catalogd.Contract  `yaml:"contract"`
	Contracts []catalogd.Contract `yaml:"contracts"`
	Products  []catalogd.Product  `yaml:"products"`
}

type contractReport struct {
	ContractID string                    `json:"contract_id"`
	Name       string                    `json:"name"`
	Layer      catalogd.Layer            `json:"layer"`
	Result     catalogd.ValidationResult `json:"result"`
}

var errValidationFailed = errors.New("validation failed")

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate contracts and products from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var f validationFile
			if err := yaml.Unmarshal(raw, &f); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			contracts := f.Contracts
			if f.Contract != nil {
				contracts = append([]catalogd.Contract{*f.Contract}, contracts...)
			}
			if len(contracts) == 0 {
				return fmt.Errorf("%s: no contract to validate", args[0])
			}

			// Validation is pure; the client only provides the rules and metrics.
			return a.withClient(cmd, func(ctx context.Context, c *catalogd.Client) error {
				reports := make([]contractReport, 0, len(contracts))
				for i := range contracts {
					ct := &contracts[i]
					reports = append(reports, contractReport{
						ContractID: ct.ID,
						Name:       ct.Name,
						Layer:      ct.Tags.Layer,
						Result:     c.Validation().Validate(ctx, ct, f.Products),
					})
				}
				return a.printReports(cmd, reports)
			})
		},
	}
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check CONTRACT_ID...",
		Short: "Validate contracts stored in the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *catalogd.Client) error {
				reports := make([]contractReport, 0, len(args))
				for _, id := range args {
					res, err := c.Validation().ValidateContract(ctx, id)
					if err != nil {
						return err
					}
					reports = append(reports, contractReport{ContractID: id, Result: res})
				}
				return a.printReports(cmd, reports)
			})
		},
	}
}

func (a *app) printReports(cmd *cobra.Command, reports []contractReport) error {
	failed := 0
	for _, r := range reports {
		if !r.Result.Valid {
			failed++
		}
	}

	out := cmd.OutOrStdout()
	if a.jsonOutput() {
		if err := printJSON(out, reports); err != nil {
			return err
		}
	} else {
		tw := newTable(out, table.Row{"Contract", "Layer", "Valid", "Errors", "Warnings"})
		for _, r := range reports {
			tw.AppendRow(table.Row{
				r.ContractID, r.Layer, r.Result.Valid,
				strings.Join(r.Result.Errors, "\n"), strings.Join(r.Result.Warnings, "\n"),
			})
			tw.AppendSeparator()
		}
		tw.Render()
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d contracts invalid", errValidationFailed, failed, len(reports))
	}
	return nil
}

func (a *app) searchCmd() *cobra.Command {
	var (
		domains, layers, statuses, techs []string
		limit                            int
	)
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search domains, contracts and products",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *catalogd.Client) error {
				hits, err := c.Search().Query(strings.Join(args, " ")).
					Domains(domains...).
					Layers(layers...).
					Statuses(statuses...).
					Technologies(techs...).
					Limit(limit).
					Do(ctx)
				if err != nil {
					return err
				}
				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), hits)
				}
				tw := newTable(cmd.OutOrStdout(), table.Row{"Score", "Type", "Name", "Domain", "Layer", "Status", "ID"})
				for _, h := range hits {
					tw.AppendRow(table.Row{fmt.Sprintf("%.3f", h.Score), h.Type, h.Title, h.Domain, h.Layer, h.Status, h.ID})
				}
				tw.AppendFooter(table.Row{"", "", fmt.Sprintf("%d results", len(hits))})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&domains, "domain", nil, "domain filter (repeatable)")
	cmd.Flags().StringSliceVar(&layers, "layer", nil, "layer filter (repeatable)")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "status filter (repeatable)")
	cmd.Flags().StringSliceVar(&techs, "technology", nil, "technology filter (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (default 50)")
	return cmd
}

func (a *app) suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest PARTIAL",
		Short: "Autocomplete catalog names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *catalogd.Client) error {
				out, err := c.Search().Suggest(ctx, args[0])
				if err != nil {
					return err
				}
				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), out)
				}
				tw := newTable(cmd.OutOrStdout(), table.Row{"Suggestion", "Type", "ID"})
				for _, s := range out {
					tw.AppendRow(table.Row{s.Text, s.Type, s.ID})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func (a *app) pipelinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipelines LAYER",
		Short: "List the pipeline types allowed on a layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(_ context.Context, c *catalogd.Client) error {
				types, err := c.Validation().PipelineTypesFor(args[0])
				if err != nil {
					return err
				}
				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), types)
				}
				for _, t := range types {
					fmt.Fprintln(cmd.OutOrStdout(), t)
				}
				return nil
			})
		},
	}
}

func (a *app) layersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layers PIPELINE_TYPE",
		Short: "List the layers a pipeline type may run on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(_ context.Context, c *catalogd.Client) error {
				layers, err := c.Validation().LayersFor(args[0])
				if err != nil {
					return err
				}
				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), layers)
				}
				for _, l := range layers {
					fmt.Fprintln(cmd.OutOrStdout(), l)
				}
				return nil
			})
		},
	}
}

func (a *app) indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the search index and print its statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *catalogd.Client) error {
				st, err := c.Search().Reindex(ctx)
				if err != nil {
					return err
				}
				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), st)
				}
				tw := newTable(cmd.OutOrStdout(), table.Row{"Domains", "Contracts", "Products", "Built"})
				tw.AppendRow(table.Row{st.Domains, st.Contracts, st.Products, st.LastUpdated.Format("2006-01-02 15:04:05")})
				tw.Render()
				return nil
			})
		},
	}
}
