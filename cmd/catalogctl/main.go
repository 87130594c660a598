package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/catalogd/internal/logger"
	"github.com/kailas-cloud/catalogd/internal/version"
	catalogd "github.com/kailas-cloud/catalogd/pkg/sdk"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app carries the settings shared by every subcommand.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Validate and search a data catalog",
		Long: `catalogctl checks data contracts and their data products against the
layer/pipeline compatibility rules and searches the catalog.

The catalog comes from a YAML fixture (--fixture) or, by default, from a
generated mock catalog (--seed). Every flag can also be set through a
CATALOGCTL_ environment variable, e.g. CATALOGCTL_FIXTURE=catalog.yaml.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := logpkg.NewLogger("cli", a.v.GetString("log-level"))
			if err != nil {
				return err
			}
			a.logger = l
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("fixture", "f", "", "YAML catalog fixture (default: generated mock catalog)")
	pf.Uint64("seed", 42, "mock catalog seed")
	pf.Bool("json", false, "output JSON")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Duration("timeout", 30*time.Second, "overall command timeout")
	for _, name := range []string{"fixture", "seed", "json", "log-level", "timeout"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}
	a.v.SetEnvPrefix("CATALOGCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.validateCmd(),
		a.checkCmd(),
		a.searchCmd(),
		a.suggestCmd(),
		a.pipelinesCmd(),
		a.layersCmd(),
		a.indexCmd(),
	)
	return root
}

// withClient opens an SDK client over the configured catalog for the duration of fn.
func (a *app) withClient(cmd *cobra.Command, fn func(context.Context, *catalogd.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.v.GetDuration("timeout"))
	defer cancel()

	opts := []catalogd.Option{catalogd.WithMockCatalog(a.v.GetUint64("seed"))}
	if path := a.v.GetString("fixture"); path != "" {
		opts = append(opts, catalogd.WithFixtureFile(path))
	}

	start := time.Now()
	client, err := catalogd.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer client.Close()
	a.logger.Debug("catalog opened",
		zap.String("fixture", a.v.GetString("fixture")),
		zap.Duration("duration", time.Since(start)),
	)

	return fn(ctx, client)
}

func (a *app) jsonOutput() bool { return a.v.GetBool("json") }

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(header)
	return tw
}
