package session

import (
	"net/url"
	"strings"
)

const (
	OnboardingPath = "/onboarding"
	HomePath       = "/home"
)

// CallbackRedirect decides where the auth callback should send the user.
// ok is false while the session is still being resolved; the caller waits.
// Guests and anonymous users go to onboarding. Members go to next when it is
// a same-site relative path, otherwise home.
func CallbackRedirect(st State, next string) (path string, ok bool) {
	if !st.Initialized {
		return "", false
	}
	if !st.Present() || st.Guest() {
		return OnboardingPath, true
	}
	if safe := sanitizeNext(next); safe != "" {
		return safe, true
	}
	return HomePath, true
}

func sanitizeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	if u.Path == OnboardingPath || strings.HasPrefix(u.Path, "/auth/") {
		return ""
	}
	return next
}
