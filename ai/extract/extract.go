// Package extract pulls structured tag data out of loosely-structured model
// output. Models are asked for a JSON object but routinely wrap it in prose
// or markdown fences, or ignore the format entirely and emit hashtags, so
// extraction is an ordered list of strategies tried until one succeeds.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy names, recorded on results for observability.
const (
	StrategyFencedJSON = "fenced_json"
	StrategyBareJSON   = "bare_json"
	StrategyHashtags   = "hashtags"
	StrategyQuoted     = "quoted_or_bullets"
	StrategyNone       = "none"
)

// Result holds tags recovered from raw model output.
type Result struct {
	MatchedExistingTags []string
	SuggestedTags       []string
	// Strategy is the name of the extraction strategy that produced the
	// result, or "none" when nothing could be recovered.
	Strategy string
}

// Tags returns matched tags followed by suggested tags.
func (r *Result) Tags() []string {
	tags := make([]string, 0, len(r.MatchedExistingTags)+len(r.SuggestedTags))
	tags = append(tags, r.MatchedExistingTags...)
	tags = append(tags, r.SuggestedTags...)
	return tags
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	hashtagRe    = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	quotedRe     = regexp.MustCompile(`"([^"\n]+)"`)
	bulletRe     = regexp.MustCompile(`(?m)^\s*[-*]\s+(.+)$`)
)

// ExtractTags recovers tag lists from raw model output. It never fails:
// when no strategy yields anything the result is empty with Strategy "none",
// which callers treat as a successful call with zero tags.
func ExtractTags(raw string) *Result {
	if res, ok := fromFencedJSON(raw); ok {
		return res
	}
	if res, ok := fromBareJSON(raw); ok {
		return res
	}
	// No JSON object anywhere: degrade to heuristic scraping. Anything
	// recovered this way is a suggestion; nothing can be called a match.
	if res, ok := fromHashtags(raw); ok {
		return res
	}
	if res, ok := fromQuotedOrBullets(raw); ok {
		return res
	}
	return &Result{Strategy: StrategyNone}
}

func fromFencedJSON(raw string) (*Result, bool) {
	m := fencedJSONRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	res, ok := parseTagObject(m[1])
	if !ok {
		return nil, false
	}
	res.Strategy = StrategyFencedJSON
	return res, true
}

func fromBareJSON(raw string) (*Result, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	res, ok := parseTagObject(raw[start : end+1])
	if !ok {
		return nil, false
	}
	res.Strategy = StrategyBareJSON
	return res, true
}

// parseTagObject reads matchedTags and newTags out of a JSON object.
// A missing or non-array field is an empty list, not an error; a parsed
// object with zero tags is still a successful extraction.
func parseTagObject(s string) (*Result, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return &Result{
		MatchedExistingTags: stringList(obj["matchedTags"]),
		SuggestedTags:       stringList(obj["newTags"]),
	}, true
}

func stringList(raw json.RawMessage) []string {
	if raw == nil {
		return []string{}
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func fromHashtags(raw string) (*Result, bool) {
	tags := hashtagRe.FindAllString(raw, -1)
	if len(tags) == 0 {
		return nil, false
	}
	return &Result{
		MatchedExistingTags: []string{},
		SuggestedTags:       dedupe(tags),
		Strategy:            StrategyHashtags,
	}, true
}

func fromQuotedOrBullets(raw string) (*Result, bool) {
	var tags []string
	for _, m := range quotedRe.FindAllStringSubmatch(raw, -1) {
		if t := strings.TrimSpace(m[1]); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		for _, m := range bulletRe.FindAllStringSubmatch(raw, -1) {
			if t := strings.TrimSpace(m[1]); t != "" {
				tags = append(tags, t)
			}
		}
	}
	if len(tags) == 0 {
		return nil, false
	}
	return &Result{
		MatchedExistingTags: []string{},
		SuggestedTags:       dedupe(tags),
		Strategy:            StrategyQuoted,
	}, true
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
