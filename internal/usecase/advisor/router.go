package advisor

import (
	"strings"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
)

// Input is everything a response template may read
// Values are passed per call; templates never reach for session state
type Input struct {
	Summary  domain.MetricsSummary
	Snapshot *domain.Snapshot
}

// Responder renders a response from live metrics
type Responder func(in Input) (string, error)

// Rule maps a set of keywords to a response template
type Rule struct {
	Name     string
	Keywords []string // lowercase; any substring hit selects the rule
	Respond  Responder
}

// Matches reports whether the lowercased query contains one of the rule's keywords
func (r Rule) Matches(lowerQuery string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowerQuery, kw) {
			return true
		}
	}
	return false
}

// Router selects the first matching rule in priority order
// If no rule matches, the fallback rule is used
type Router struct {
	rules    []Rule
	fallback Rule
}

// NewRouter creates a router over an ordered rule table
func NewRouter(rules []Rule, fallback Rule) *Router {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	return &Router{
		rules:    ordered,
		fallback: fallback,
	}
}

// NewDefaultRouter creates the router with the built-in CFO rule table
func NewDefaultRouter() *Router {
	return NewRouter(DefaultRules(), DefaultFallback())
}

// Rules returns the rule table in priority order
func (r *Router) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Match returns the rule selected for a query
// Matching is case-insensitive and short-circuits on the first hit
func (r *Router) Match(query string) Rule {
	lower := strings.ToLower(query)
	for _, rule := range r.rules {
		if rule.Matches(lower) {
			return rule
		}
	}
	return r.fallback
}

// Route renders the response of the rule selected for a query
func (r *Router) Route(query string, in Input) (string, error) {
	return r.Match(query).Respond(in)
}
