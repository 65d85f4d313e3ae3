package watchlist

// Well-known package and bundle identifiers on both platforms.
var knownApps = map[string]string{
	"com.instagram.android":      "Instagram",
	"com.zhiliaoapp.musically":   "TikTok",
	"com.snapchat.android":       "Snapchat",
	"com.twitter.android":        "Twitter",
	"com.facebook.katana":        "Facebook",
	"com.google.android.youtube": "YouTube",
	"com.android.chrome":         "Chrome",
	"com.apple.mobilesafari":     "Safari",
	"com.burbn.instagram":        "Instagram",
	"com.atebits.Tweetie2":       "Twitter",
	"com.toyopagroup.picaboo":    "Snapchat",
}

// DisplayName returns the human name for an identifier, or the identifier
// itself when it is not in the catalog.
func DisplayName(appIdentifier string) string {
	if name, ok := knownApps[appIdentifier]; ok {
		return name
	}
	return appIdentifier
}
