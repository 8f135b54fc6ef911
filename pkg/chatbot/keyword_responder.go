// FILE: pkg/chatbot/keyword_responder.go
// PURPOSE: Rule-based assistant for the city console. Maps free text to one
//          canned answer without any model call.

package chatbot

import "strings"

// Rule pairs a lowercase trigger phrase with the text returned when it matches.
type Rule struct {
	Trigger  string
	Response string
}

// Responder answers a user query. ok is false when the query is blank and no
// turn should be produced at all.
type Responder interface {
	Respond(input string) (reply string, ok bool)
}

type KeywordResponder struct {
	rules    []Rule
	fallback string
}

func NewKeywordResponder(rules []Rule, fallback string) *KeywordResponder {
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		trigger := Normalize(r.Trigger)
		if trigger == "" {
			continue
		}
		normalized = append(normalized, Rule{Trigger: trigger, Response: r.Response})
	}
	return &KeywordResponder{rules: normalized, fallback: fallback}
}

// Normalize trims surrounding whitespace and lowercases.
func Normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Respond returns the response of the first rule, in declaration order, whose
// trigger contains the query or is contained by it. Containment runs both ways
// so "tell me about air quality status please" and a bare "air" both land on
// the air quality rule. Ties go to declaration order, not to the longest match.
func (r *KeywordResponder) Respond(input string) (string, bool) {
	query := Normalize(input)
	if query == "" {
		return "", false
	}

	if rule, found := r.Match(query); found {
		return rule.Response, true
	}
	return r.fallback, true
}

// Match exposes the rule lookup so callers can tell a hit from the fallback.
// query must already be normalized.
func (r *KeywordResponder) Match(query string) (Rule, bool) {
	if query == "" {
		return Rule{}, false
	}
	for _, rule := range r.rules {
		if strings.Contains(query, rule.Trigger) || strings.Contains(rule.Trigger, query) {
			return rule, true
		}
	}
	return Rule{}, false
}
