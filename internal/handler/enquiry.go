package handler

import (
	"net/http"
	"strconv"

	"github.com/kwchan/bank-ivr/internal/flow"
	"github.com/kwchan/bank-ivr/internal/locale"
	"github.com/kwchan/bank-ivr/internal/middleware"
	"github.com/kwchan/bank-ivr/internal/twiml"
)

// EnquiryBalance speaks the authenticated account's balance.
func (h *Handler) EnquiryBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := middleware.CallID(ctx)
	l := middleware.Language(ctx)

	balance, err := h.svc.Balance(ctx, callID)
	if err != nil {
		h.log.Warnf("Balance enquiry failed for call %s: %v", callID, err)
		h.systemError(w, l)
		return
	}

	vr := twiml.NewResponse()
	locale.Say(vr, l, locale.BalanceAnswer(l, strconv.FormatFloat(balance, 'f', 2, 64)))
	vr.Redirect("/enquiry_balance/followup")
	h.respond(w, vr)
}

// EnquiryFollowup offers the follow-up choices after a balance readout.
func (h *Handler) EnquiryFollowup(w http.ResponseWriter, r *http.Request) {
	l := middleware.Language(r.Context())
	vr := twiml.NewResponse()

	handled, _ := flow.Dispatch(r.PostFormValue("Digits"), map[string]flow.Handler{
		"1": jump(vr, "/prompt_accid/enquiry_balance"),
		"2": jump(vr, "/fund_transfer/select_type"),
		"0": jump(vr, "/menu"),
	}, invalidInput(vr, l))

	if !handled {
		flow.Menu(vr, "/enquiry_balance/followup", nil, locale.EnquiryFollowup, l)
		vr.Redirect("/enquiry_balance/followup")
	}
	h.respond(w, vr)
}
