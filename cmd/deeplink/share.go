package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/deeplink"
	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/share"
)

// shareKinds maps the share command's kind argument to a builder method.
var shareKinds = map[string]func(*share.Builder, string) (string, error){
	"profile": (*share.Builder).ProfileURL,
	"post":    (*share.Builder).PostURL,
	"event":   (*share.Builder).EventURL,
	"story":   (*share.Builder).StoryURL,
	"ticket":  (*share.Builder).TicketURL,
	"chat":    (*share.Builder).ChatURL,
	"room":    (*share.Builder).RoomURL,
	"url":     (*share.Builder).Canonical,
}

func shareKindNames() string {
	names := make([]string, 0, len(shareKinds))
	for k := range shareKinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func shareCmd(flags *globalFlags) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "share <kind> <id>",
		Short: "Build an outbound share URL",
		Long: `Build the canonical https URL for an entity on the configured domain.

Kinds: ` + shareKindNames() + `

"url" canonicalizes an existing link instead of building one.

Examples:
  deeplink share profile @mikevocalz
  deeplink share post abc123
  deeplink share url "movieclub://e/42?ref=dm"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			build, ok := shareKinds[strings.ToLower(args[0])]
			if !ok {
				return errors.Newf(errors.CategoryCLI, "unknown share kind %q", args[0]).
					WithSuggestion("Use one of: " + shareKindNames())
			}

			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			app, err := deeplink.New(deeplink.Options{Config: cfg, Logger: flags.logger(cmd.ErrOrStderr())})
			if err != nil {
				return err
			}
			defer app.Close()

			u, err := build(app.Builder(), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)

			if verify {
				link := app.ParseIncomingURL(u)
				if link == nil {
					return errors.Newf(errors.CategoryShare, "built URL %q does not parse", u)
				}
				info(cmd.ErrOrStderr(), "opens %s", app.Engine().ResolveTarget(link).Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Parse the built URL and print its destination")

	return cmd
}
