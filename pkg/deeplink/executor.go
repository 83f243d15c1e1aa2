package deeplink

import (
	"context"
	"fmt"
	"strings"

	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/routes"
)

// ResolveTarget builds the final destination for link. An unmatched path
// resolves to the fallback with Valid false.
func (e *Engine) ResolveTarget(link *ParsedLink) NavigationTarget {
	m, ok := e.registry.Match(link.Path)
	if !ok {
		return NavigationTarget{
			Path:   e.fallback,
			Reason: fmt.Sprintf("no route matches %s", link.Path),
		}
	}

	params := copyParams(link.Params)
	for k, v := range m.Params {
		params[k] = v
	}
	return NavigationTarget{
		Path:  routes.BuildRouterPath(m.Entry.RouterPath, params),
		Valid: true,
		Label: m.Entry.Label,
	}
}

// NavigateOnce navigates to link's destination unless the same destination
// was navigated to within the debounce window. Navigator failures fall back
// to one Replace of the fallback path and are never returned.
func (e *Engine) NavigateOnce(ctx context.Context, link *ParsedLink) NavResult {
	if link == nil {
		return NavResult{Status: NavDropped}
	}

	target := e.ResolveTarget(link)
	res := NavResult{Target: target}
	log := e.logger.With("link_id", link.ID.String(), "router_path", target.Path)

	if !target.Valid {
		log.Info("deep link has no route; using fallback", "path", link.Path)
	}

	if !e.state.ShouldNavigate(target.Path, e.clock.Now()) {
		res.Status = NavDebounced
		log.Debug("navigation debounced")
		return res
	}

	res.Method = MethodPush
	if e.isAuthFlow(target.Path) {
		res.Method = MethodReplace
	}

	err := e.call(res.Method, target.Path)
	if err == nil {
		res.Status = NavNavigated
		return res
	}
	res.Err = err
	log.Warn("navigation failed; falling back", "error", err, "fallback", e.fallback)

	if ferr := e.call(MethodReplace, e.fallback); ferr != nil {
		res.Status = NavFailed
		res.Err = ferr
		log.Error("fallback navigation failed", "error", ferr)
		return res
	}
	res.Status = NavRecovered
	return res
}

// call invokes the navigator, converting a panic into a DL402 error.
func (e *Engine) call(method Method, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("DL402").WithDetailf("%s %s panicked: %v", method, path, r)
		}
	}()

	if method == MethodReplace {
		err = e.nav.Replace(path)
	} else {
		err = e.nav.Push(path)
	}
	if err != nil {
		return errors.New("DL402").WithDetailf("%s %s", method, path).Wrap(err)
	}
	return nil
}

// isAuthFlow reports whether path lies under a sign-in flow prefix.
func (e *Engine) isAuthFlow(path string) bool {
	path, _, _ = strings.Cut(path, "?")
	for _, prefix := range e.authFlow {
		if prefix == "" {
			continue
		}
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}
