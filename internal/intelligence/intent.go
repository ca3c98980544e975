package intelligence

import (
	"sort"
	"strings"
	"unicode"
)

// Intent is the closed category an utterance is classified into.
type Intent string

const (
	IntentGreeting   Intent = "greeting"
	IntentHelp       Intent = "help"
	IntentProjects   Intent = "projects"
	IntentBudget     Intent = "budget"
	IntentStatus     Intent = "status"
	IntentMinistry   Intent = "ministry"
	IntentLocation   Intent = "location"
	IntentContractor Intent = "contractor"
	IntentThanks     Intent = "thanks"
	IntentGoodbye    Intent = "goodbye"
	IntentUnknown    Intent = "unknown"
)

// AllIntents lists every intent in classification priority order.
var AllIntents = []Intent{
	IntentGreeting, IntentHelp, IntentProjects, IntentBudget, IntentStatus,
	IntentMinistry, IntentLocation, IntentContractor, IntentThanks, IntentGoodbye,
	IntentUnknown,
}

type rule struct {
	intent  Intent
	matches predicate
}

// rules are evaluated in order; the first match wins. The order is part of
// the contract: "budget and status" is a budget question.
var rules = []rule{
	{IntentGreeting, anyWord("hi").or(contains("hello", "start"))},
	{IntentHelp, contains("help", "what can you do")},
	{IntentProjects, contains("project")},
	{IntentBudget, contains("budget", "cost", "amount", "money", "spent")},
	{IntentStatus, contains("status", "progress", "complet")},
	{IntentMinistry, contains("ministry", "ministries", "department", "agency")},
	{IntentLocation, contains("location", "where")},
	{IntentContractor, contains("contractor", "company")},
	{IntentThanks, contains("thank")},
	{IntentGoodbye, anyWord("bye").or(contains("goodbye"))},
}

// message is a lower-cased utterance with known project names masked out.
type message struct {
	text  string
	words []string
}

type predicate func(m message) bool

func (p predicate) or(q predicate) predicate {
	return func(m message) bool { return p(m) || q(m) }
}

// contains matches keywords anywhere in the text, so stems such as "complet"
// and "thank" catch their inflections and "overspent" still mentions "spent".
func contains(keywords ...string) predicate {
	return func(m message) bool {
		for _, k := range keywords {
			if strings.Contains(m.text, k) {
				return true
			}
		}
		return false
	}
}

// anyWord matches whole words only. Short keywords need this: "hi" sits
// inside "which" and "this".
func anyWord(keywords ...string) predicate {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[k] = struct{}{}
	}
	return func(m message) bool {
		for _, w := range m.words {
			if _, ok := set[w]; ok {
				return true
			}
		}
		return false
	}
}

// tokenize splits s on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Classifier maps utterances to intents. Known project names are masked out
// before the keyword rules run so that a name like "Abuja Light Rail Project"
// does not itself trigger the projects intent.
type Classifier struct {
	names []string
}

// NewClassifier returns a Classifier aware of the given project names.
func NewClassifier(projectNames []string) Classifier {
	names := make([]string, 0, len(projectNames))
	for _, n := range projectNames {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			names = append(names, n)
		}
	}
	// Longest first, so a name that contains another is masked whole.
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	return Classifier{names: names}
}

// Classify is deterministic. When no keyword rule matches but a known project
// is named, the utterance is a projects question; otherwise unknown.
func (c Classifier) Classify(utterance string) Intent {
	text := strings.ToLower(utterance)
	named := false
	for _, n := range c.names {
		if strings.Contains(text, n) {
			text = strings.ReplaceAll(text, n, " ")
			named = true
		}
	}

	m := message{text: text, words: tokenize(text)}
	for _, r := range rules {
		if r.matches(m) {
			return r.intent
		}
	}
	if named {
		return IntentProjects
	}
	return IntentUnknown
}

// Classify classifies without any project names.
func Classify(utterance string) Intent {
	return Classifier{}.Classify(utterance)
}
