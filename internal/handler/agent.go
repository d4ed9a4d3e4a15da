package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kwchan/bank-ivr/internal/locale"
	"github.com/kwchan/bank-ivr/internal/middleware"
	"github.com/kwchan/bank-ivr/internal/twiml"
)

// ContactAgent queues the caller for a representative when the call centre
// is open, otherwise routes straight to voicemail.
func (h *Handler) ContactAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := middleware.Language(ctx)
	vr := twiml.NewResponse()

	if h.svc.QueueOpen(ctx) {
		locale.Say(vr, l, locale.EnqueuePrompt.For(l))
		vr.Enqueue(h.cfg.SupportQueue, "/contact_csr/waiting")
		vr.Leave()
		// Reached only when the caller falls out of the queue unserved.
		vr.Redirect("/contact_csr/voice_mail/timeout")
	} else {
		vr.Redirect("/contact_csr/voice_mail/not_in_service")
	}
	h.respond(w, vr)
}

// AgentWaiting loops hold music while the caller sits in the queue.
func (h *Handler) AgentWaiting(w http.ResponseWriter, r *http.Request) {
	vr := twiml.NewResponse()
	vr.Play(h.cfg.HoldMusicURL, 3)
	vr.Redirect("/contact_csr/waiting")
	h.respond(w, vr)
}

// VoiceMail explains why no agent is available and records a message.
// Audio capture itself is the renderer's job; the recording details come
// back on the callback.
func (h *Handler) VoiceMail(w http.ResponseWriter, r *http.Request) {
	l := middleware.Language(r.Context())
	reason := mux.Vars(r)["reason"]
	vr := twiml.NewResponse()

	locale.Say(vr, l, locale.CantContact[reason].For(l))
	vr.Pause(1)
	locale.Say(vr, l, locale.VoicemailInvite.For(l))
	vr.Record(twiml.RecordOptions{
		Action:      "/contact_csr/recording",
		MaxLength:   120,
		FinishOnKey: "#",
		PlayBeep:    true,
	})
	vr.Hangup()
	h.respond(w, vr)
}

// Recording handles the recording-complete callback: alert the service
// desk, thank the caller and end the call.
func (h *Handler) Recording(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := middleware.CallID(ctx)
	l := middleware.Language(ctx)

	recordingURL := r.PostFormValue("RecordingUrl")
	duration := r.PostFormValue("RecordingDuration")
	from := r.PostFormValue("From")
	if err := h.notifier.SendVoicemailAlert(callID, from, recordingURL, duration); err != nil {
		// The caller still gets a clean goodbye; the alert failure is ours.
		h.log.Errorf("Voicemail alert failed for call %s: %v", callID, err)
	}

	vr := twiml.NewResponse()
	locale.Say(vr, l, locale.VoicemailThanks.For(l))
	vr.Hangup()
	h.respond(w, vr)
}

// AgentConnect dials the configured agent SIP target. Pass-through: call
// progress goes to the status callback.
func (h *Handler) AgentConnect(w http.ResponseWriter, r *http.Request) {
	vr := twiml.NewResponse()
	vr.DialSIP(h.cfg.AgentSIPURI, twiml.SIPOptions{
		StatusCallback:       h.cfg.StatusCallbackURL,
		StatusCallbackEvent:  "initiated ringing answered completed",
		StatusCallbackMethod: "POST",
	})
	h.respond(w, vr)
}
