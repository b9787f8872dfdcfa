package classify

import (
	"net/url"
	"strings"
)

// Source is the attribution bucket of a page view.
type Source int

const (
	// Referral covers every view that is neither organic nor direct.
	Referral Source = iota
	Organic
	Direct
)

func (s Source) String() string {
	switch s {
	case Organic:
		return "organic"
	case Direct:
		return "direct"
	default:
		return "referral"
	}
}

// DefaultSearchHosts are matched against referrer hosts. Entries without a dot
// match any host label, so "google" covers www.google.com and google.co.uk.
var DefaultSearchHosts = []string{
	"google",
	"bing.com",
	"duckduckgo.com",
	"yahoo",
	"baidu.com",
	"yandex",
	"ecosia.org",
	"search.brave.com",
	"startpage.com",
	"qwant.com",
}

var (
	defaultSearchSources = []string{
		"google", "bing", "duckduckgo", "yahoo", "baidu",
		"yandex", "ecosia", "brave", "startpage", "qwant",
	}
	organicMediums = map[string]bool{"organic": true, "seo": true, "search": true}
	paidMediums    = map[string]bool{"cpc": true, "ppc": true, "paid": true, "paidsearch": true, "paid_search": true}
)

// TrafficPolicy attributes page views to organic search, direct, or referral traffic.
type TrafficPolicy struct {
	searchHosts   []string
	searchSources map[string]bool
}

// NewTrafficPolicy builds a policy from a list of search engine hosts.
// An empty list falls back to DefaultSearchHosts.
func NewTrafficPolicy(searchHosts ...string) TrafficPolicy {
	if len(searchHosts) == 0 {
		searchHosts = DefaultSearchHosts
	}
	p := TrafficPolicy{searchSources: make(map[string]bool)}
	for _, h := range searchHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		p.searchHosts = append(p.searchHosts, h)
	}
	for _, s := range defaultSearchSources {
		p.searchSources[s] = true
	}
	return p
}

func DefaultTrafficPolicy() TrafficPolicy {
	return NewTrafficPolicy()
}

// Classify applies, in order: paid campaign mediums are never organic;
// search referrers and search campaigns are organic; no referrer and no
// campaign parameters is direct; anything else is referral.
func (p TrafficPolicy) Classify(referrer, utmSource, utmMedium string) Source {
	referrer = strings.TrimSpace(referrer)
	source := strings.ToLower(strings.TrimSpace(utmSource))
	medium := strings.ToLower(strings.TrimSpace(utmMedium))

	if !paidMediums[medium] {
		if organicMediums[medium] {
			return Organic
		}
		if medium == "" && p.searchSources[source] {
			return Organic
		}
		if p.IsSearchReferrer(referrer) {
			return Organic
		}
	}

	if referrer == "" && source == "" && medium == "" {
		return Direct
	}
	return Referral
}

// IsSearchReferrer reports whether the referrer URL points at a known search engine.
func (p TrafficPolicy) IsSearchReferrer(referrer string) bool {
	host := referrerHost(referrer)
	if host == "" {
		return false
	}
	labels := strings.Split(host, ".")
	for _, entry := range p.searchHosts {
		if strings.Contains(entry, ".") {
			if host == entry || strings.HasSuffix(host, "."+entry) {
				return true
			}
			continue
		}
		for _, label := range labels {
			if label == entry {
				return true
			}
		}
	}
	return false
}

func referrerHost(referrer string) string {
	if referrer == "" {
		return ""
	}
	u, err := url.Parse(referrer)
	if err != nil {
		return ""
	}
	if u.Host == "" {
		// Scheme-less referrers such as "google.com/search".
		u, err = url.Parse("//" + referrer)
		if err != nil {
			return ""
		}
	}
	return strings.ToLower(u.Hostname())
}
