package chromedp_browser

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// Profile is the network identity a browser session is launched with.
type Profile struct {
	UserAgent string
	Proxy     string // empty means direct
}

// Platform returns the navigator.platform value matching the user agent,
// Win32 when the agent names no known desktop OS.
func (p Profile) Platform() string {
	ua := strings.ToLower(p.UserAgent)
	switch {
	case strings.Contains(ua, "windows"):
		return "Win32"
	case strings.Contains(ua, "macintosh"), strings.Contains(ua, "mac os x"):
		return "MacIntel"
	case strings.Contains(ua, "linux"):
		return "Linux x86_64"
	default:
		return "Win32"
	}
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
}

// ProfileRotator hands out launch profiles: proxies in round-robin order,
// user agents at random.
type ProfileRotator struct {
	proxies    []string
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
}

// NewProfileRotator creates a rotator. An empty userAgents list falls back to
// a built-in set of desktop Chrome agents.
func NewProfileRotator(proxies, userAgents []string) *ProfileRotator {
	if len(userAgents) == 0 {
		userAgents = defaultUserAgents
	}
	return &ProfileRotator{proxies: proxies, userAgents: userAgents}
}

// Next returns the profile for the next browser launch.
func (r *ProfileRotator) Next() Profile {
	return Profile{UserAgent: r.userAgent(), Proxy: r.proxy()}
}

func (r *ProfileRotator) proxy() string {
	if len(r.proxies) == 0 {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.proxies[r.proxyIndex]
	r.proxyIndex = (r.proxyIndex + 1) % len(r.proxies)
	return p
}

func (r *ProfileRotator) userAgent() string {
	return r.userAgents[rand.IntN(len(r.userAgents))]
}
