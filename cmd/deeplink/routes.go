package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/deeplink/internal/devserver"
	"github.com/vango-dev/deeplink/internal/errors"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table in match order",
		Long: `List the route table after merging configured routes with the
built-in ones. The first matching row wins.

Output formats:
  table   aligned columns (default)
  json    the same shape as GET /api/routes
  yaml    a block that can be pasted into a routes file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			registry, err := cfg.Registry()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch output {
			case "table":
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "PATTERN\tDESTINATION\tAUTH\tLABEL\tQUERY")
				for _, e := range registry.Entries() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						e.Pattern, e.RouterPath, e.Auth, e.Label, strings.Join(e.Query, ","))
				}
				return tw.Flush()
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(devserver.NewRouteViews(registry))
			case "yaml":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(map[string]any{"routes": registry.Entries()})
			default:
				return errors.Newf(errors.CategoryCLI, "unknown output format %q", output).
					WithSuggestion("Use table, json or yaml")
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or yaml")

	return cmd
}
