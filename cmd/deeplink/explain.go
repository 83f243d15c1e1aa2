package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/deeplink/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe error codes",
		Long: `List every DLxxx error code, or describe one with its suggested fix.

Examples:
  deeplink explain
  deeplink explain DL303`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				code := strings.ToUpper(strings.TrimSpace(args[0]))
				t, ok := errors.Lookup(code)
				if !ok {
					return errors.Newf(errors.CategoryCLI, "unknown error code %q", args[0]).
						WithSuggestion("Run deeplink explain to list the codes")
				}
				fmt.Fprintf(w, "%s [%s] %s\n", code, t.Category, t.Message)
				if t.Suggestion != "" {
					info(w, "Hint: %s", t.Suggestion)
				}
				return nil
			}

			codes := errors.Codes()
			sort.Strings(codes)
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tCATEGORY\tMESSAGE")
			for _, code := range codes {
				t, _ := errors.Lookup(code)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", code, t.Category, t.Message)
			}
			return tw.Flush()
		},
	}
}
