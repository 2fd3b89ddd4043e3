// Package research composes targeted web searches for the research agents
// and caches their results.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

type Kind string

const (
	KindGeneral     Kind = "general"
	KindMarket      Kind = "market"
	KindCompetitors Kind = "competitors"
	KindPricing     Kind = "pricing"
	KindPainPoints  Kind = "pain_points"
	KindTechStack   Kind = "tech_stack"
	KindTrends      Kind = "trends"
	KindSocial      Kind = "social"
)

var Kinds = []Kind{KindGeneral, KindMarket, KindCompetitors, KindPricing, KindPainPoints, KindTechStack, KindTrends, KindSocial}

func ParseKind(s string) (Kind, bool) {
	if s == "" {
		return KindGeneral, true
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Bundle is the outcome of one research request, one entry per query.
type Bundle struct {
	Kind     Kind                   `json:"kind"`
	Subject  string                 `json:"subject"`
	Results  []entity.SearchResults `json:"results"`
	CacheHit bool                   `json:"cache_hit,omitempty"`
}

type Service struct {
	search output.SearchPort
	cache  output.ResearchCache
	logger output.LoggerPort
	num    int
	now    func() time.Time
}

// New builds the service. cache may be nil.
func New(search output.SearchPort, cache output.ResearchCache, logger output.LoggerPort, numResults int) *Service {
	if numResults <= 0 {
		numResults = 10
	}
	return &Service{search: search, cache: cache, logger: logger, num: numResults, now: time.Now}
}

// Queries expands a research kind into concrete search queries.
func (s *Service) Queries(kind Kind, subject string) []string {
	year := s.now().Year()
	switch kind {
	case KindMarket:
		return []string{
			fmt.Sprintf("%s market size %d %d", subject, year-1, year),
			fmt.Sprintf("%s industry growth rate forecast", subject),
			fmt.Sprintf("%s market trends statistics", subject),
		}
	case KindCompetitors:
		return []string{
			fmt.Sprintf("%s competitors alternatives", subject),
			fmt.Sprintf("%s tools comparison review %d", subject, year),
		}
	case KindPricing:
		return []string{fmt.Sprintf("%s pricing plans cost", subject)}
	case KindPainPoints:
		return []string{
			fmt.Sprintf("%s challenges problems", subject),
			fmt.Sprintf("%s complaints issues reddit", subject),
			fmt.Sprintf("%s customer feedback reviews", subject),
		}
	case KindTechStack:
		return []string{
			fmt.Sprintf("how to build %s tech stack", subject),
			fmt.Sprintf("%s open source frameworks libraries", subject),
		}
	case KindTrends:
		return []string{
			fmt.Sprintf("Google Trends %s interest over time", subject),
			fmt.Sprintf("%s rising searches emerging trends %d", subject, year),
		}
	case KindSocial:
		return []string{
			fmt.Sprintf("site:reddit.com %s", subject),
			fmt.Sprintf("site:twitter.com OR site:x.com %s", subject),
			fmt.Sprintf("%s social media reaction opinions", subject),
		}
	default:
		return []string{subject}
	}
}

// Research runs every query for kind, serving from cache when possible.
func (s *Service) Research(ctx context.Context, kind Kind, subject string) (*Bundle, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("research subject is empty")
	}

	if cached, ok := s.fromCache(ctx, kind, subject); ok {
		return cached, nil
	}

	bundle := &Bundle{Kind: kind, Subject: subject}
	failed := 0
	for _, q := range s.Queries(kind, subject) {
		res, err := s.search.Search(ctx, q, s.num)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", q, err)
		}
		if res.Error != "" {
			failed++
		}
		bundle.Results = append(bundle.Results, *res)
	}

	if failed == 0 {
		s.toCache(ctx, kind, subject, bundle)
	}
	return bundle, nil
}

func (s *Service) fromCache(ctx context.Context, kind Kind, subject string) (*Bundle, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, string(kind), subject)
	if err != nil {
		s.logger.Warn("Research cache read failed", "kind", kind, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var b Bundle
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		s.logger.Warn("Research cache entry is corrupt", "kind", kind, "error", err)
		return nil, false
	}
	b.CacheHit = true
	s.logger.Debug("Research cache hit", "kind", kind, "subject", subject)
	return &b, true
}

func (s *Service) toCache(ctx context.Context, kind Kind, subject string, b *Bundle) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, string(kind), subject, string(data)); err != nil {
		s.logger.Warn("Research cache write failed", "kind", kind, "error", err)
	}
}

// Format renders a bundle as compact text for a model observation.
func Format(b *Bundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Research (%s): %s\n", b.Kind, b.Subject)
	for _, r := range b.Results {
		fmt.Fprintf(&sb, "\n### %s\n", r.Query)
		if r.Error != "" {
			fmt.Fprintf(&sb, "Error: %s\n", r.Error)
			continue
		}
		if r.Answer != "" {
			fmt.Fprintf(&sb, "Answer: %s\n", r.Answer)
		}
		for i, hit := range r.Organic {
			fmt.Fprintf(&sb, "%d. %s (%s)\n   %s\n", i+1, hit.Title, hit.Link, hit.Snippet)
		}
		if len(r.Organic) == 0 {
			sb.WriteString("No results.\n")
		}
	}
	return sb.String()
}
