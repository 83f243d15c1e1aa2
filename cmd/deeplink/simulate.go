package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vango-dev/deeplink"
	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/auth"
	"github.com/vango-dev/deeplink/pkg/linktest"
	"github.com/vango-dev/deeplink/pkg/navstack"
)

func simulateCmd(flags *globalFlags) *cobra.Command {
	var (
		script   string
		source   string
		signedIn bool
	)

	cmd := &cobra.Command{
		Use:   "simulate [url]...",
		Short: "Replay a sequence of deliveries against an in-memory app",
		Long: `Run deliveries, sign-ins and waits against an in-memory navigation
stack on a simulated clock, printing every outcome and navigation.

URL arguments are delivered in order. With --script, each line of the
file (or stdin for "-") is one step:

  open <url> [source]   deliver a URL (a bare URL works too)
  login [username]      sign in; a deferred link is replayed
  logout                sign out
  wait <duration>       advance the clock, e.g. "wait 2s"
  replay                schedule the pending link explicitly
  # comment

Example:
  printf 'https://movieclub.app/p/abc123\nlogin viewer\nwait 1s\n' | deeplink simulate --script -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			var steps []string
			for _, a := range args {
				steps = append(steps, "open "+a+" "+source)
			}
			if script != "" {
				var r io.Reader = cmd.InOrStdin()
				if script != "-" {
					f, err := os.Open(script)
					if err != nil {
						return errors.Newf(errors.CategoryCLI, "opening script: %v", err)
					}
					defer f.Close()
					r = f
				}
				lines, err := readScript(r)
				if err != nil {
					return err
				}
				steps = append(steps, lines...)
			}
			if len(steps) == 0 {
				return errors.Newf(errors.CategoryCLI, "nothing to simulate").
					WithSuggestion("Pass URLs as arguments or use --script")
			}

			sim, err := newSimulator(cfg.SettleDelay.Duration(), cmd.OutOrStdout(), deeplink.Options{
				Config: cfg,
				Logger: flags.logger(cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}
			defer sim.app.Close()

			ctx := cmd.Context()
			if signedIn {
				if err := sim.step(ctx, "login"); err != nil {
					return err
				}
			}
			for _, s := range steps {
				if err := sim.step(ctx, s); err != nil {
					return err
				}
			}
			sim.finish()
			return nil
		},
	}

	cmd.Flags().StringVarP(&script, "script", "f", "", "Read steps from a file, or - for stdin")
	cmd.Flags().StringVar(&source, "source", "os-link", "Source for URL arguments: os-link, push or share")
	cmd.Flags().BoolVar(&signedIn, "signed-in", false, "Start with a signed-in session")

	return cmd
}

// readScript returns the non-blank, non-comment lines of r.
func readScript(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "reading script: %v", err)
	}
	return lines, nil
}

// simulator drives an App on a fake clock and narrates what happens.
type simulator struct {
	app    *deeplink.App
	clock  *linktest.FakeClock
	settle time.Duration
	out    io.Writer
}

func newSimulator(settle time.Duration, out io.Writer, opts deeplink.Options) (*simulator, error) {
	s := &simulator{clock: linktest.NewFakeClock(), settle: settle, out: out}
	opts.Clock = s.clock
	opts.Navigator = nil
	opts.Auth = nil
	opts.HistoryObservers = append(opts.HistoryObservers, func(c navstack.Change) {
		fmt.Fprintf(s.out, "    %-7s → %s (depth %d)\n", c.Method, c.Path, c.Depth)
	})
	opts.ReplayHooks = append(opts.ReplayHooks, func(link *deeplink.ParsedLink, res deeplink.NavResult) {
		fmt.Fprintf(s.out, "    replayed %s: %s\n", link.Path, res.Status)
	})

	app, err := deeplink.New(opts)
	if err != nil {
		return nil, err
	}
	s.app = app
	return s, nil
}

// step runs one script line.
func (s *simulator) step(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	verb, rest := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "open":
		if len(rest) == 0 {
			return errors.Newf(errors.CategoryCLI, "open needs a URL")
		}
		src := deeplink.SourceOSLink
		if len(rest) > 1 {
			src = deeplink.ParseSource(rest[1])
		}
		s.deliver(ctx, rest[0], src)

	case "login":
		name := "simulator"
		if len(rest) > 0 {
			name = strings.TrimPrefix(rest[0], "@")
		}
		fmt.Fprintf(s.out, "%s login %s\n", s.stamp(), name)
		p := auth.Principal{ID: uuid.NewString(), Username: name}
		if err := s.app.Session().Login(ctx, p); err != nil {
			return err
		}
		if n := s.app.Engine().ScheduledReplays(); n > 0 {
			fmt.Fprintf(s.out, "    replay scheduled in %s\n", s.settle)
		}

	case "logout":
		fmt.Fprintf(s.out, "%s logout\n", s.stamp())
		s.app.Session().Logout()

	case "wait":
		if len(rest) != 1 {
			return errors.Newf(errors.CategoryCLI, "wait needs one duration")
		}
		d, err := time.ParseDuration(rest[0])
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "bad duration %q", rest[0])
		}
		fmt.Fprintf(s.out, "%s wait %s\n", s.stamp(), d)
		s.clock.Advance(d)

	case "replay":
		fmt.Fprintf(s.out, "%s replay\n", s.stamp())
		if !s.app.ReplayPendingLink(ctx) {
			fmt.Fprintln(s.out, "    nothing pending")
		}

	default:
		if strings.Contains(verb, ":") || strings.HasPrefix(verb, "/") {
			src := deeplink.SourceOSLink
			if len(rest) > 0 {
				src = deeplink.ParseSource(rest[0])
			}
			s.deliver(ctx, fields[0], src)
			return nil
		}
		return errors.Newf(errors.CategoryCLI, "unknown step %q", line)
	}
	return nil
}

func (s *simulator) deliver(ctx context.Context, raw string, src deeplink.Source) {
	fmt.Fprintf(s.out, "%s open %s [%s]\n", s.stamp(), raw, src)
	out := s.app.HandleDelivery(ctx, deeplink.Delivery{RawURL: raw, Source: src})
	switch out.Kind {
	case deeplink.OutcomeDispatched:
		fmt.Fprintf(s.out, "    dispatched: %s\n", out.Nav.Status)
		if out.Nav.Err != nil {
			fmt.Fprintf(s.out, "    navigation error: %v\n", out.Nav.Err)
		}
	case deeplink.OutcomeDeferred:
		fmt.Fprintf(s.out, "    deferred until sign-in: %s\n", out.Link.RouterPath)
	default:
		fmt.Fprintf(s.out, "    %s\n", out.Kind)
	}
}

// finish lets any scheduled replay fire and prints the final stack.
func (s *simulator) finish() {
	if s.app.Engine().ScheduledReplays() > 0 {
		s.clock.Advance(s.settle)
	}
	fmt.Fprintf(s.out, "history: %s\n", strings.Join(s.app.History().History(), " > "))
	if p := s.app.Engine().PendingLink(); p != nil {
		fmt.Fprintf(s.out, "pending: %s\n", p.Path)
	}
}

// stamp is the simulated time since start.
func (s *simulator) stamp() string {
	return fmt.Sprintf("[+%s]", s.clock.Now().Sub(linktest.Epoch))
}
