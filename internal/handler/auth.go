package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kwchan/bank-ivr/internal/locale"
	"github.com/kwchan/bank-ivr/internal/middleware"
	"github.com/kwchan/bank-ivr/internal/service"
	"github.com/kwchan/bank-ivr/internal/twiml"
)

// Authentication purposes. The purpose parameterizes the shared
// account/PIN sub-flow and names the continuation to redirect to once the
// caller is authenticated.
const (
	PurposeEnquiryBalance = "enquiry_balance"
	PurposeFundTransfer   = "fund_transfer"
)

// continuations resolves a purpose token to the screen entered after a
// successful PIN match. Purposes outside this map never reach the
// handlers; the router restricts the path variable.
var continuations = map[string]string{
	PurposeEnquiryBalance: "/enquiry_balance",
	PurposeFundTransfer:   "/fund_transfer/select_type",
}

// PromptAccountID asks for the 13-digit account ID. Star aborts the entry.
func (h *Handler) PromptAccountID(w http.ResponseWriter, r *http.Request) {
	l := middleware.Language(r.Context())
	purpose := mux.Vars(r)["purpose"]
	vr := twiml.NewResponse()

	g := vr.Gather(twiml.GatherOptions{
		NumDigits:   service.AccountIDLength,
		FinishOnKey: "*",
		Action:      "/prompt_accid/check/" + purpose,
	})
	locale.Say(g, l, locale.PromptAccountID.For(l))
	vr.Redirect("/prompt_accid/" + purpose)

	h.respond(w, vr)
}

// CheckAccountID validates and looks up the submitted account ID. Empty
// input is a caller cancel, not an error.
func (h *Handler) CheckAccountID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := middleware.CallID(ctx)
	l := middleware.Language(ctx)
	purpose := mux.Vars(r)["purpose"]
	vr := twiml.NewResponse()

	digits := r.PostFormValue("Digits")
	if digits == "" {
		vr.Redirect("/menu")
		h.respond(w, vr)
		return
	}

	outcome, err := h.svc.AcceptAccountID(ctx, callID, digits)
	if err != nil {
		h.log.Warnf("Account check failed for call %s: %v", callID, err)
		h.systemError(w, l)
		return
	}

	switch outcome {
	case service.AuthInvalid:
		locale.Say(vr, l, locale.Incorrect.For(l))
		vr.Redirect("/prompt_accid/" + purpose)
	case service.AuthNotFound:
		locale.Say(vr, l, locale.AccountNotFound.For(l))
		vr.Redirect("/prompt_accid/" + purpose)
	case service.AuthAccepted:
		vr.Redirect("/prompt_pin/" + purpose)
	}
	h.respond(w, vr)
}

// PromptPIN asks for the 6-digit PIN. Star aborts the entry.
func (h *Handler) PromptPIN(w http.ResponseWriter, r *http.Request) {
	l := middleware.Language(r.Context())
	purpose := mux.Vars(r)["purpose"]
	vr := twiml.NewResponse()

	g := vr.Gather(twiml.GatherOptions{
		NumDigits:   service.PINLength,
		FinishOnKey: "*",
		Action:      "/prompt_pin/check/" + purpose,
	})
	locale.Say(g, l, locale.PromptPIN.For(l))
	vr.Redirect("/prompt_pin/" + purpose)

	h.respond(w, vr)
}

// CheckPIN verifies the submitted PIN. Three mismatches terminate the call
// with no way back into the menu tree.
func (h *Handler) CheckPIN(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := middleware.CallID(ctx)
	l := middleware.Language(ctx)
	purpose := mux.Vars(r)["purpose"]
	vr := twiml.NewResponse()

	pin := r.PostFormValue("Digits")
	if pin == "" {
		vr.Redirect("/menu")
		h.respond(w, vr)
		return
	}

	outcome, count, err := h.svc.VerifyPIN(ctx, callID, pin)
	if err != nil {
		h.log.Warnf("PIN check failed for call %s: %v", callID, err)
		h.systemError(w, l)
		return
	}

	switch outcome {
	case service.PINMatched:
		vr.Redirect(continuations[purpose])
	case service.PINRetry:
		h.log.Infof("PIN mismatch %d for call %s", count, callID)
		locale.Say(vr, l, locale.PINIncorrectRetry.For(l))
		vr.Redirect("/prompt_pin/" + purpose)
	case service.PINLocked:
		locale.Say(vr, l, locale.PINIncorrectStop.For(l))
		vr.Hangup()
	}
	h.respond(w, vr)
}
