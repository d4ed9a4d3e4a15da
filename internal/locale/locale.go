// Package locale holds the bilingual prompt tables and speech helpers for
// the call flows. Every user-facing table defines an entry for both
// supported languages; a missing entry is a configuration defect.
package locale

import (
	"github.com/kwchan/bank-ivr/internal/twiml"
)

// Language identifies one of the two supported prompt languages, encoded
// as the digit the caller presses on the language menu.
type Language int

const (
	English   Language = 1
	Cantonese Language = 2
)

// Default is spoken when the caller never picked a language or the session
// store could not be reached.
const Default = English

// Parse maps a pressed digit to a language. The second return value is
// false when the digit is not a supported language.
func Parse(digit string) (Language, bool) {
	switch digit {
	case "1":
		return English, true
	case "2":
		return Cantonese, true
	}
	return Default, false
}

// Text is a prompt defined in every supported language.
type Text map[Language]string

// For selects the language-specific string.
func (t Text) For(l Language) string {
	return t[l]
}

// Item is one entry of a spoken menu. An empty Key means the item is
// announced under its 1-based position in the menu.
type Item struct {
	Label Text
	Key   string
}

// Verbatim wraps a literal string (such as an account number) that is
// spoken identically in both languages.
func Verbatim(s string) Text {
	return Text{English: s, Cantonese: s}
}

// Speaker is anything that can speak a line: the response root or a gather.
type Speaker interface {
	Say(body string, opts twiml.SayOptions)
}

// Only Cantonese needs an explicit voice override; English uses the
// carrier defaults.
var sayOptions = map[Language]twiml.SayOptions{
	English:   {},
	Cantonese: {Voice: "alice", Language: "zh-HK"},
}

// Say speaks body with the voice metadata appropriate for the language.
func Say(s Speaker, l Language, body string) {
	s.Say(body, sayOptions[l])
}

// SayOptions exposes the per-language voice metadata for callers that
// compose speech themselves.
func SayOptions(l Language) twiml.SayOptions {
	return sayOptions[l]
}
