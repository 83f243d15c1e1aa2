// Package auth is the in-process session collaborator of the deep link
// engine.
//
// Session answers the engine's IsAuthenticated question and, after every
// successful Login or Restore, calls ReplayPendingLink exactly once so a
// link deferred while signed out is opened.
//
//	session := auth.NewSession()
//	engine := deeplink.NewEngine(parser, nav, session)
//	session.SetReplayer(engine)
//	...
//	session.Login(ctx, auth.Principal{ID: "u1", Username: "mikevocalz"})
//
// The engine and the session refer to each other, so the replayer is
// attached after both exist.
package auth
