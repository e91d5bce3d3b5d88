package host

import (
	"net"
	"sort"
	"strings"
	"sync"

	"github.com/xy-planning-network/signpost/route"
)

const (
	httpsPort = "443"
	httpPort  = "80"

	// maxOrigins bounds the memo; it is emptied when full.
	maxOrigins = 1024
)

// A Match is the outcome of resolving a request's origin.
type Match struct {
	// Domain is the host the request was made to, without a port.
	Domain string

	// SubRoot is the directory under the view root the request is served from.
	SubRoot string

	// Pattern is the rule that matched; empty when the default sub-root was used.
	Pattern string
}

// A Resolver selects sub-roots for request origins.
//
// Results are memoized per origin. Origins come from the client's Host header,
// so the memo holds at most maxOrigins entries and starts over once full.
// Deployments reachable under arbitrary hosts should still filter them
// with an allow-list in front of the Resolver.
type Resolver struct {
	defaultRoot string

	// rules grouped by PortFlag, each group in priority order
	byPort map[string][]Rule

	mu    sync.RWMutex
	cache map[string]Match
}

// Compile builds a Resolver from rules mapping domain patterns to targets.
// Hosts matching no rule resolve to defaultRoot.
func Compile(rules map[string]string, defaultRoot string) (*Resolver, error) {
	res := &Resolver{
		defaultRoot: route.Trim(defaultRoot),
		byPort:      make(map[string][]Rule),
		cache:       make(map[string]Match),
	}

	for pattern, target := range rules {
		r, err := CompileRule(pattern, target)
		if err != nil {
			return nil, err
		}

		res.byPort[r.PortFlag] = append(res.byPort[r.PortFlag], r)
	}

	for _, group := range res.byPort {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].outranks(group[j]) || group[j].outranks(group[i]) {
				return group[i].outranks(group[j])
			}

			return group[i].Pattern < group[j].Pattern
		})
	}

	return res, nil
}

// Resolve selects the sub-root for a request made with scheme to hostport.
func (res *Resolver) Resolve(scheme, hostport string) Match {
	domain, port := splitHostPort(scheme, hostport)
	origin := strings.ToLower(scheme) + "://" + domain + ":" + port

	res.mu.RLock()
	m, ok := res.cache[origin]
	res.mu.RUnlock()
	if ok {
		return m
	}

	m = res.resolve(domain, port)

	res.mu.Lock()
	if len(res.cache) >= maxOrigins {
		clear(res.cache)
	}
	res.cache[origin] = m
	res.mu.Unlock()

	return m
}

func (res *Resolver) resolve(domain, port string) Match {
	labels := strings.Split(domain, ".")

	exact, exactCaps, okExact := first(res.byPort[port], labels, port)
	wild, wildCaps, okWild := first(res.byPort[AnyPort], labels, port)

	var (
		r    Rule
		caps map[string]string
	)
	switch {
	case okExact && okWild:
		r, caps = wild, wildCaps
		if exact.outranks(wild) || !wild.outranks(exact) {
			r, caps = exact, exactCaps
		}
	case okExact:
		r, caps = exact, exactCaps
	case okWild:
		r, caps = wild, wildCaps
	default:
		return Match{Domain: domain, SubRoot: res.defaultRoot}
	}

	return Match{Domain: domain, SubRoot: route.Trim(r.expand(caps)), Pattern: r.Pattern}
}

func first(rules []Rule, labels []string, port string) (Rule, map[string]string, bool) {
	for _, r := range rules {
		if caps, ok := r.match(labels, port); ok {
			return r, caps, true
		}
	}

	return Rule{}, nil, false
}

func splitHostPort(scheme, hostport string) (string, string) {
	port := httpPort
	if strings.EqualFold(scheme, "https") {
		port = httpsPort
	}

	domain := hostport
	if h, p, err := net.SplitHostPort(hostport); err == nil {
		domain = h
		if p != "" {
			port = p
		}
	}

	return strings.TrimSuffix(strings.ToLower(domain), "."), port
}
