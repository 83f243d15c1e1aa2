package routes

// Internal destinations that the engine itself needs to know about.
const (
	// HomePath is the signed-in home screen, used as the navigation fallback.
	HomePath = "/(protected)/(tabs)"

	// AuthGroupPrefix marks destinations that belong to the sign-in flow.
	AuthGroupPrefix = "/(auth)"
)

// Labels of the default table that other packages refer to.
const (
	LabelLogin           = "login"
	LabelProfile         = "profile"
	LabelProfileSearch   = "profile-search"
	LabelPostDetail      = "post-detail"
	LabelEventDetail     = "event-detail"
	LabelStory           = "story"
	LabelTicket          = "ticket"
	LabelChat            = "chat"
	LabelRoom            = "room"
	LabelBlockedAccounts = "blocked-accounts"
)

var (
	idSchema       = Schema{"id": "id"}.MustValidator()
	usernameSchema = Schema{"username": "username"}.MustValidator()
	tagSchema      = Schema{"tag": "slug"}.MustValidator()
)

// DefaultTable returns the social app's route table in match order.
//
// Where two entries share a pattern shape the stricter one comes first:
// "/u/:username" only accepts well-formed usernames, and anything else under
// /u/ falls through to the profile search.
func DefaultTable() []Entry {
	return []Entry{
		// Sign-in flow.
		{Pattern: "/login", RouterPath: "/(auth)/login", Auth: Public, Label: LabelLogin},
		{Pattern: "/signup", RouterPath: "/(auth)/signup", Auth: Public, Label: "signup"},
		{Pattern: "/forgot-password", RouterPath: "/(auth)/forgot-password", Auth: Public, Label: "forgot-password"},
		{Pattern: "/reset-password", RouterPath: "/(auth)/reset-password", Auth: Public, Label: "reset-password"},
		{Pattern: "/verify-email", RouterPath: "/(auth)/verify-email", Auth: Public, Label: "verify-email"},
		{Pattern: "/invite/:code", RouterPath: "/(auth)/signup/:code", Auth: Public, Label: "invite",
			Validate: Schema{"code": "id"}.MustValidator()},

		// Static public pages.
		{Pattern: "/terms", RouterPath: "/(public)/terms", Auth: Public, Label: "terms"},
		{Pattern: "/privacy", RouterPath: "/(public)/privacy", Auth: Public, Label: "privacy"},

		// Profiles.
		{Pattern: "/u/:username", RouterPath: "/(protected)/profile/:username", Auth: AuthRequired,
			Label: LabelProfile, Validate: usernameSchema},
		{Pattern: "/u/:query", RouterPath: "/(protected)/search/:query", Auth: AuthRequired, Label: LabelProfileSearch},
		{Pattern: "/profile/:username", RouterPath: "/(protected)/profile/:username", Auth: AuthRequired,
			Label: "profile-legacy", Validate: usernameSchema},
		{Pattern: "/u/:username/followers", RouterPath: "/(protected)/profile/:username/followers", Auth: AuthRequired,
			Label: "followers", Validate: usernameSchema},
		{Pattern: "/u/:username/following", RouterPath: "/(protected)/profile/:username/following", Auth: AuthRequired,
			Label: "following", Validate: usernameSchema},

		// Posts.
		{Pattern: "/p/:id", RouterPath: "/(protected)/post/:id", Auth: AuthRequired, Label: LabelPostDetail, Validate: idSchema},
		{Pattern: "/post/:id", RouterPath: "/(protected)/post/:id", Auth: AuthRequired, Label: "post-legacy", Validate: idSchema},
		{Pattern: "/p/:id/comments", RouterPath: "/(protected)/comments/:id", Auth: AuthRequired, Label: "comments", Validate: idSchema},
		{Pattern: "/p/:id/comments/:commentId", RouterPath: "/(protected)/comments/:id/:commentId", Auth: AuthRequired,
			Label: "comment-thread", Validate: Schema{"id": "id", "commentId": "id"}.MustValidator()},

		// Events and tickets.
		{Pattern: "/e/:id", RouterPath: "/(protected)/events/:id", Auth: AuthRequired, Label: LabelEventDetail, Validate: idSchema},
		{Pattern: "/events/:id", RouterPath: "/(protected)/events/:id", Auth: AuthRequired, Label: "event-legacy", Validate: idSchema},
		{Pattern: "/e/:id/tickets", RouterPath: "/(protected)/events/:id/tickets", Auth: AuthRequired, Label: "event-tickets", Validate: idSchema},
		{Pattern: "/ticket/:id", RouterPath: "/(protected)/ticket/:id", Auth: AuthRequired, Label: LabelTicket, Validate: idSchema},

		// Stories.
		{Pattern: "/story/:id", RouterPath: "/(protected)/story/:id", Auth: AuthRequired, Label: LabelStory, Validate: idSchema},

		// Messaging and calls.
		{Pattern: "/messages", RouterPath: "/(protected)/messages", Auth: AuthRequired, Label: "messages"},
		{Pattern: "/chat/:id", RouterPath: "/(protected)/chat/:id", Auth: AuthRequired, Label: LabelChat, Validate: idSchema},
		{Pattern: "/room/:id", RouterPath: "/(protected)/call/:id", Auth: AuthRequired, Label: LabelRoom, Validate: idSchema},

		// Discovery.
		{Pattern: "/search", RouterPath: "/(protected)/(tabs)/search", Auth: AuthRequired, Label: "search"},
		{Pattern: "/tag/:tag", RouterPath: "/(protected)/hashtag/:tag", Auth: AuthRequired, Label: "hashtag", Validate: tagSchema},
		{Pattern: "/hashtag/:tag", RouterPath: "/(protected)/hashtag/:tag", Auth: AuthRequired, Label: "hashtag-legacy", Validate: tagSchema},
		{Pattern: "/notifications", RouterPath: "/(protected)/(tabs)/notifications", Auth: AuthRequired, Label: "notifications"},

		// Settings.
		{Pattern: "/settings", RouterPath: "/(protected)/settings", Auth: AuthRequired, Label: "settings"},
		{Pattern: "/settings/account", RouterPath: "/(protected)/settings/account", Auth: AuthRequired, Label: "account-settings"},
		{Pattern: "/settings/privacy", RouterPath: "/(protected)/settings/privacy", Auth: AuthRequired, Label: "privacy-settings"},
		{Pattern: "/settings/notifications", RouterPath: "/(protected)/settings/notifications", Auth: AuthRequired, Label: "notification-settings"},
		{Pattern: "/settings/blocked", RouterPath: "/(protected)/settings/blocked-accounts", Auth: AuthRequired, Label: LabelBlockedAccounts},
		{Pattern: "/settings/subscription", RouterPath: "/(protected)/settings/subscription", Auth: AuthRequired, Label: "subscription"},
	}
}

// Default returns a registry built from DefaultTable.
func Default() *Registry {
	return MustRegistry(DefaultTable()...)
}
