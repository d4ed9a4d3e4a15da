package twiml

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, vr *Response) string {
	t.Helper()
	out, err := vr.String()
	require.NoError(t, err)
	return out
}

func TestSayWithVoiceOptions(t *testing.T) {
	vr := NewResponse()
	vr.Say("Welcome to Fake Bank.", SayOptions{})
	vr.Say("歡迎使用假銀行.", SayOptions{Voice: "alice", Language: "zh-HK"})

	out := render(t, vr)
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<Say>Welcome to Fake Bank.</Say>`)
	assert.Contains(t, out, `<Say voice="alice" language="zh-HK">歡迎使用假銀行.</Say>`)
}

func TestGatherNestsPrompts(t *testing.T) {
	vr := NewResponse()
	g := vr.Gather(GatherOptions{NumDigits: 13, FinishOnKey: "*", Action: "/prompt_accid/check/enquiry_balance"})
	g.Say("Please enter the 13 digits account ID.", SayOptions{})
	vr.Redirect("/prompt_accid/enquiry_balance")

	out := render(t, vr)
	assert.Contains(t, out, `<Gather numDigits="13" finishOnKey="*" action="/prompt_accid/check/enquiry_balance">`)
	assert.Contains(t, out, `<Say>Please enter the 13 digits account ID.</Say></Gather>`)
	assert.Contains(t, out, `<Redirect>/prompt_accid/enquiry_balance</Redirect>`)
}

func TestTerminalVerbs(t *testing.T) {
	vr := NewResponse()
	vr.Pause(2)
	vr.Hangup()

	out := render(t, vr)
	assert.Contains(t, out, `<Pause length="2"/>`)
	assert.Contains(t, out, `<Hangup/>`)
}

func TestQueueVerbs(t *testing.T) {
	vr := NewResponse()
	vr.Enqueue("support", "/contact_csr/waiting")
	vr.Leave()
	vr.Play("https://assets.fakebank.example/hold.mp3", 3)

	out := render(t, vr)
	assert.Contains(t, out, `<Enqueue waitUrl="/contact_csr/waiting">support</Enqueue>`)
	assert.Contains(t, out, `<Leave/>`)
	assert.Contains(t, out, `<Play loop="3">https://assets.fakebank.example/hold.mp3</Play>`)
}

func TestRecord(t *testing.T) {
	vr := NewResponse()
	vr.Record(RecordOptions{Action: "/contact_csr/recording", MaxLength: 120, FinishOnKey: "#", PlayBeep: true})

	out := render(t, vr)
	assert.Contains(t, out, `<Record action="/contact_csr/recording" maxLength="120" finishOnKey="#" playBeep="true"/>`)
}

func TestDialSIP(t *testing.T) {
	vr := NewResponse()
	vr.DialSIP("sip:agent@fakebank.example", SIPOptions{
		StatusCallback:       "https://ivr.fakebank.example/calls/events",
		StatusCallbackEvent:  "initiated ringing answered completed",
		StatusCallbackMethod: "POST",
	})

	out := render(t, vr)
	assert.Contains(t, out, `<Dial><Sip`)
	assert.Contains(t, out, `statusCallback="https://ivr.fakebank.example/calls/events"`)
	assert.Contains(t, out, `>sip:agent@fakebank.example</Sip></Dial>`)
}

func TestWriteSetsContentType(t *testing.T) {
	vr := NewResponse()
	vr.Redirect("/menu")

	rr := httptest.NewRecorder()
	require.NoError(t, vr.Write(rr))
	assert.Equal(t, "text/xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<Redirect>/menu</Redirect>")
}
