// Package twiml builds the declarative voice-response document returned to
// the telephony carrier on every webhook turn.
package twiml

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/beevik/etree"
)

// SayOptions carries voice metadata for a spoken line. The zero value uses
// the carrier defaults.
type SayOptions struct {
	Voice    string
	Language string
}

// Response is an ordered sequence of instructions under a single <Response>
// root element.
type Response struct {
	doc  *etree.Document
	root *etree.Element
}

// NewResponse creates an empty voice response document.
func NewResponse() *Response {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return &Response{doc: doc, root: doc.CreateElement("Response")}
}

func say(parent *etree.Element, body string, opts SayOptions) {
	el := parent.CreateElement("Say")
	if opts.Voice != "" {
		el.CreateAttr("voice", opts.Voice)
	}
	if opts.Language != "" {
		el.CreateAttr("language", opts.Language)
	}
	el.SetText(body)
}

// Say appends a spoken line.
func (r *Response) Say(body string, opts SayOptions) {
	say(r.root, body, opts)
}

// Pause appends a silence of the given length in seconds.
func (r *Response) Pause(seconds int) {
	r.root.CreateElement("Pause").CreateAttr("length", strconv.Itoa(seconds))
}

// Redirect instructs the carrier to re-enter the flow at the given path.
func (r *Response) Redirect(path string) {
	r.root.CreateElement("Redirect").SetText(path)
}

// Hangup terminates the call.
func (r *Response) Hangup() {
	r.root.CreateElement("Hangup")
}

// GatherOptions configures a digit capture.
type GatherOptions struct {
	NumDigits   int
	FinishOnKey string
	Action      string
}

// Gather is a digit capture that may carry its own spoken prompts.
type Gather struct {
	el *etree.Element
}

// Gather appends a digit capture bound to the given action path.
func (r *Response) Gather(opts GatherOptions) *Gather {
	el := r.root.CreateElement("Gather")
	if opts.NumDigits > 0 {
		el.CreateAttr("numDigits", strconv.Itoa(opts.NumDigits))
	}
	if opts.FinishOnKey != "" {
		el.CreateAttr("finishOnKey", opts.FinishOnKey)
	}
	if opts.Action != "" {
		el.CreateAttr("action", opts.Action)
	}
	return &Gather{el: el}
}

// Say appends a spoken line inside the gather.
func (g *Gather) Say(body string, opts SayOptions) {
	say(g.el, body, opts)
}

// Enqueue places the caller into the named queue. waitURL is polled for
// hold instructions while the caller waits.
func (r *Response) Enqueue(queue, waitURL string) {
	el := r.root.CreateElement("Enqueue")
	if waitURL != "" {
		el.CreateAttr("waitUrl", waitURL)
	}
	el.SetText(queue)
}

// Leave removes the caller from their current queue.
func (r *Response) Leave() {
	r.root.CreateElement("Leave")
}

// Play streams an audio resource, repeated loop times.
func (r *Response) Play(url string, loop int) {
	el := r.root.CreateElement("Play")
	if loop > 0 {
		el.CreateAttr("loop", strconv.Itoa(loop))
	}
	el.SetText(url)
}

// RecordOptions configures a voicemail recording.
type RecordOptions struct {
	Action      string
	MaxLength   int
	FinishOnKey string
	PlayBeep    bool
}

// Record captures caller audio and posts the recording details to the
// action path when done.
func (r *Response) Record(opts RecordOptions) {
	el := r.root.CreateElement("Record")
	if opts.Action != "" {
		el.CreateAttr("action", opts.Action)
	}
	if opts.MaxLength > 0 {
		el.CreateAttr("maxLength", strconv.Itoa(opts.MaxLength))
	}
	if opts.FinishOnKey != "" {
		el.CreateAttr("finishOnKey", opts.FinishOnKey)
	}
	if opts.PlayBeep {
		el.CreateAttr("playBeep", "true")
	}
}

// SIPOptions configures an outbound SIP leg.
type SIPOptions struct {
	Username             string
	Password             string
	StatusCallback       string
	StatusCallbackEvent  string
	StatusCallbackMethod string
}

// DialSIP connects the caller to a SIP target. Pass-through: call progress
// is reported to the status callback, not handled here.
func (r *Response) DialSIP(uri string, opts SIPOptions) {
	dial := r.root.CreateElement("Dial")
	sip := dial.CreateElement("Sip")
	if opts.Username != "" {
		sip.CreateAttr("username", opts.Username)
	}
	if opts.Password != "" {
		sip.CreateAttr("password", opts.Password)
	}
	if opts.StatusCallback != "" {
		sip.CreateAttr("statusCallback", opts.StatusCallback)
	}
	if opts.StatusCallbackEvent != "" {
		sip.CreateAttr("statusCallbackEvent", opts.StatusCallbackEvent)
	}
	if opts.StatusCallbackMethod != "" {
		sip.CreateAttr("statusCallbackMethod", opts.StatusCallbackMethod)
	}
	sip.SetText(uri)
}

// String serializes the document.
func (r *Response) String() (string, error) {
	out, err := r.doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to serialize response: %w", err)
	}
	return out, nil
}

// Write renders the document as the webhook reply.
func (r *Response) Write(w http.ResponseWriter) error {
	out, err := r.String()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/xml")
	_, err = io.WriteString(w, out)
	return err
}
