// Package flow holds the control-flow primitives every menu screen is
// built from: digit dispatch and menu composition.
package flow

import (
	"strconv"

	"github.com/kwchan/bank-ivr/internal/locale"
	"github.com/kwchan/bank-ivr/internal/twiml"
)

// Handler reacts to a matched digit. It may append instructions to the
// response or run a lookup before deciding where to redirect.
type Handler func(digit string) error

// Dispatch routes a pressed digit to its handler. It returns true when a
// handler ran. With no digit pressed (first visit to the screen) nothing
// runs and the caller renders the prompt; an unmatched digit runs fallback
// so the caller can re-render the menu instead of dead-ending.
func Dispatch(digit string, handlers map[string]Handler, fallback func()) (bool, error) {
	if digit == "" {
		return false, nil
	}
	h, ok := handlers[digit]
	if !ok {
		if fallback != nil {
			fallback()
		}
		return false, nil
	}
	return true, h(digit)
}

// Menu renders an optional header and one announcement per item into a
// single-digit capture bound to target. Items without an explicit key are
// announced under their 1-based position.
func Menu(vr *twiml.Response, target string, header locale.Text, items []locale.Item, l locale.Language) {
	g := vr.Gather(twiml.GatherOptions{NumDigits: 1, Action: target})
	if header != nil {
		locale.Say(g, l, header.For(l))
	}
	for i, item := range items {
		key := item.Key
		if key == "" {
			key = strconv.Itoa(i + 1)
		}
		locale.Say(g, l, locale.MenuLine(l, item.Label.For(l), key))
	}
}
