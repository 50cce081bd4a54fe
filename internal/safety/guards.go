// Package safety rewrites user-facing payloads before delivery.
//
// Two guards walk any payload tree and rewrite its string leaves: the tone
// guard softens directive or pressuring phrases in place, the ethics guard
// replaces a whole string with a fixed disclaimer. Rules are data, see rules.go.
package safety

import (
	"strings"
	"unicode/utf8"

	"github.com/mroshb/hitched/pkg/utils"
)

// Observer is told about every rule that fired. It must be safe for concurrent use.
type Observer func(guard string, rule Rule)

type Guard interface {
	Name() string
	// Apply rewrites every string leaf of a container payload.
	Apply(payload any) any
	// Rewrite applies the guard to one string.
	Rewrite(text string) string
}

type ToneGuard struct {
	Rules     []Rule
	OnRewrite Observer
}

func NewToneGuard() *ToneGuard {
	return &ToneGuard{Rules: ToneRules}
}

func (g *ToneGuard) Name() string { return "tone" }

func (g *ToneGuard) Apply(payload any) any {
	if !IsContainer(payload) {
		return payload
	}
	return Walk(payload, g.Rewrite)
}

// Rewrite replaces the first case-insensitive occurrence of each rule phrase,
// in table order. When anything changed the first character is upper-cased;
// the rest of the text keeps its casing and is not lowercased, so text that
// no rule touches comes back byte for byte.
func (g *ToneGuard) Rewrite(text string) string {
	changed := false
	for _, r := range g.Rules {
		idx := indexFold(text, r.Phrase)
		if idx < 0 {
			continue
		}
		text = text[:idx] + r.Replacement + text[idx+len(r.Phrase):]
		changed = true
		if g.OnRewrite != nil {
			g.OnRewrite(g.Name(), r)
		}
	}
	if changed {
		text = utils.UpperFirst(text)
	}
	return text
}

type EthicsGuard struct {
	Rules      []Rule
	Disclaimer string
	OnRewrite  Observer
}

func NewEthicsGuard() *EthicsGuard {
	return &EthicsGuard{Rules: EthicsRules, Disclaimer: Disclaimer}
}

func (g *EthicsGuard) Name() string { return "ethics" }

func (g *EthicsGuard) Apply(payload any) any {
	if !IsContainer(payload) {
		return payload
	}
	return Walk(payload, g.Rewrite)
}

// Rewrite returns the disclaimer when any rule phrase occurs in text.
func (g *EthicsGuard) Rewrite(text string) string {
	lower := strings.ToLower(text)
	for _, r := range g.Rules {
		if strings.Contains(lower, r.Phrase) {
			if g.OnRewrite != nil {
				g.OnRewrite(g.Name(), r)
			}
			return g.Disclaimer
		}
	}
	return text
}

var (
	defaultTone   = NewToneGuard()
	defaultEthics = NewEthicsGuard()
)

// ApplyToneGuard runs the default tone rules over payload.
func ApplyToneGuard(payload any) any {
	return defaultTone.Apply(payload)
}

// ApplyEthicsGuard runs the default ethics rules over payload.
func ApplyEthicsGuard(payload any) any {
	return defaultEthics.Apply(payload)
}

// indexFold is a case-insensitive strings.Index for phrases whose folded form
// has the same byte length as the matched text.
func indexFold(s, phrase string) int {
	n := len(phrase)
	if n == 0 {
		return -1
	}
	for i := 0; i+n <= len(s); i++ {
		if !utf8.RuneStart(s[i]) {
			continue
		}
		if strings.EqualFold(s[i:i+n], phrase) {
			return i
		}
	}
	return -1
}
