// Package config loads deeplink.json or deeplink.toml.
//
// The file describes the link forms the parser accepts and the sizing of
// the router state. It can also extend the default route table and holds
// the dev server and well-known publishing settings.
//
// # Configuration File Structure
//
//	{
//	  "domain": "movieclub.app",
//	  "scheme": "movieclub",
//	  "devHosts": ["localhost", "10.0.2.2"],
//	  "fallbackPath": "/(protected)/(tabs)",
//	  "dedupWindow": "2s",
//	  "debounceWindow": "500ms",
//	  "settleDelay": "300ms",
//	  "routesPosition": "prepend",
//	  "routes": [
//	    {
//	      "urlPattern": "/club/:id",
//	      "routerPath": "/(protected)/club/:id",
//	      "auth": "auth-required",
//	      "paramsSchema": {"id": "id"},
//	      "label": "club"
//	    }
//	  ],
//	  "serve": {"port": 8787, "appleTeamID": "ABCDE12345", "bundleID": "app.movieclub"},
//	  "publish": {"bucket": "movieclub-web", "region": "us-east-1"}
//	}
//
// The TOML form uses the same keys, with [[routes]], [serve] and [publish]
// tables.
//
// DEEPLINK_DOMAIN, DEEPLINK_SCHEME, DEEPLINK_HOST, DEEPLINK_PORT and
// DEEPLINK_PUBLISH_BUCKET override the file when set.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	registry, _ := cfg.Registry()
package config
