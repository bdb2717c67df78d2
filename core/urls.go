package core

import (
	"net/url"
	"strings"
)

const internalScheme = "about:"

// requiresInternalPrivilege reports whether the destination needs the
// elevated internal script bridge.
func requiresInternalPrivilege(rawURL string) bool {
	return strings.HasPrefix(rawURL, internalScheme)
}

func privilegeFor(rawURL string) SurfacePrivilege {
	if requiresInternalPrivilege(rawURL) {
		return PrivilegeInternal
	}
	return PrivilegeStandard
}

// isWebURL reports whether the destination is plain http(s) web content,
// the only thing a denied popup may be rerouted into a tab.
func isWebURL(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

// titleForURL derives a provisional display title until the surface reports
// the real one. Internal pages get fixed names, web pages their host.
func titleForURL(rawURL, fallback string) string {
	switch rawURL {
	case "about:newtab", "":
		return fallback
	case "about:settings":
		return "Settings"
	}
	if strings.HasPrefix(rawURL, internalScheme) {
		return strings.TrimPrefix(rawURL, internalScheme)
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.TrimPrefix(u.Host, "www.")
}
