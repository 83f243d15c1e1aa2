package middleware

import (
	"io"
	"log/slog"

	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/linktest"
	"github.com/vango-dev/deeplink/pkg/routes"
)

type testEngine struct {
	*deeplink.Engine
	nav   *linktest.RecordingNavigator
	auth  *linktest.StaticAuth
	clock *linktest.FakeClock
}

func newTestEngine(authenticated bool, opts ...deeplink.Option) *testEngine {
	te := &testEngine{
		nav:   &linktest.RecordingNavigator{},
		auth:  linktest.NewStaticAuth(authenticated),
		clock: linktest.NewFakeClock(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	parser := deeplink.NewParser(routes.Default(),
		deeplink.WithParserClock(te.clock),
		deeplink.WithParserLogger(logger),
	)
	base := []deeplink.Option{
		deeplink.WithClock(te.clock),
		deeplink.WithLogger(logger),
	}
	te.Engine = deeplink.NewEngine(parser, te.nav, te.auth, append(base, opts...)...)
	return te
}
