package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/deeplink"
	"github.com/vango-dev/deeplink/internal/devserver"
	"github.com/vango-dev/deeplink/internal/errors"
)

type resolveResult struct {
	URL    string                `json:"url"`
	Link   *devserver.LinkView   `json:"link,omitempty"`
	Target *devserver.TargetView `json:"target,omitempty"`
	Error  string                `json:"error,omitempty"`
	Code   string                `json:"code,omitempty"`
}

func resolveCmd(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "resolve <url>...",
		Short: "Show where URLs would navigate",
		Long: `Parse each URL and print the router destination it resolves to,
without navigating.

Examples:
  deeplink resolve https://movieclub.app/u/mikevocalz
  deeplink resolve "movieclub://p/abc123?ref=push" -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			app, err := deeplink.New(deeplink.Options{Config: cfg, Logger: flags.logger(cmd.ErrOrStderr())})
			if err != nil {
				return err
			}
			defer app.Close()

			results := make([]resolveResult, 0, len(args))
			failed := 0
			for _, raw := range args {
				res := resolveResult{URL: raw}
				link, err := app.Parser().Parse(raw)
				if err != nil {
					res.Error = err.Error()
					res.Code = errors.Code(err)
					failed++
				} else {
					target := devserver.NewTargetView(app.Engine().ResolveTarget(link))
					res.Link = devserver.NewLinkView(link)
					res.Target = &target
				}
				results = append(results, res)
			}

			w := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			case "table":
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "URL\tDESTINATION\tLABEL\tAUTH")
				for _, r := range results {
					if r.Link == nil {
						fmt.Fprintf(tw, "%s\t%s\t\t\n", r.URL, "error: "+r.Code)
						continue
					}
					auth := "public"
					if r.Link.RequiresAuth {
						auth = "required"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.URL, r.Target.Path, r.Target.Label, auth)
				}
				tw.Flush()
			default:
				return errors.Newf(errors.CategoryCLI, "unknown output format %q", output).
					WithSuggestion("Use table or json")
			}

			if failed > 0 {
				return errors.Newf(errors.CategoryCLI, "%d of %d URLs could not be parsed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table or json")

	return cmd
}
