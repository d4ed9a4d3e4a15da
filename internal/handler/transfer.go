package handler

import (
	"net/http"

	"github.com/kwchan/bank-ivr/internal/flow"
	"github.com/kwchan/bank-ivr/internal/locale"
	"github.com/kwchan/bank-ivr/internal/middleware"
	"github.com/kwchan/bank-ivr/internal/models"
	"github.com/kwchan/bank-ivr/internal/twiml"
)

// TransferSelectType offers own versus pre-registered transfer targets.
func (h *Handler) TransferSelectType(w http.ResponseWriter, r *http.Request) {
	l := middleware.Language(r.Context())
	vr := twiml.NewResponse()

	flow.Menu(vr, "/fund_transfer/select_account", nil, locale.TransferTypeMenu, l)
	vr.Redirect("/fund_transfer/select_account")
	h.respond(w, vr)
}

// TransferSelectAccount loads the candidate accounts for the chosen
// partition and renders them as a menu with back and abort appended. An
// empty partition renders "no accounts available" with only back/abort.
func (h *Handler) TransferSelectAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := middleware.CallID(ctx)
	l := middleware.Language(ctx)
	vr := twiml.NewResponse()

	listAccounts := func(digit string) error {
		partition := models.PartitionOwn
		if digit == "2" {
			partition = models.PartitionAllowed
		}
		candidates, err := h.svc.LoadTransferCandidates(ctx, callID, partition)
		if err != nil {
			return err
		}

		rendered := candidates.Rendered()
		if len(rendered) == 0 {
			flow.Menu(vr, "/fund_transfer/enter_amount", locale.NoAccount,
				[]locale.Item{locale.LastStep, locale.AbortOp}, l)
		} else {
			items := make([]locale.Item, 0, len(rendered)+2)
			for _, cand := range rendered {
				items = append(items, locale.Item{Label: locale.Verbatim(cand.AccountID)})
			}
			items = append(items, locale.LastStep, locale.AbortOp)
			flow.Menu(vr, "/fund_transfer/enter_amount", locale.ChooseAccount, items, l)
		}
		vr.Redirect("/fund_transfer/enter_amount")
		return nil
	}

	handled, err := flow.Dispatch(r.PostFormValue("Digits"), map[string]flow.Handler{
		"1": listAccounts,
		"2": listAccounts,
		"0": jump(vr, "/menu"),
	}, invalidInput(vr, l))
	if err != nil {
		h.log.Warnf("Transfer account listing failed for call %s: %v", callID, err)
		h.systemError(w, l)
		return
	}

	if !handled {
		vr.Redirect("/fund_transfer/select_type")
	}
	h.respond(w, vr)
}

// TransferEnterAmount resolves the caller's positional choice back to a
// candidate account. The transfer itself is executed elsewhere; this
// screen only acknowledges the selection.
func (h *Handler) TransferEnterAmount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := middleware.CallID(ctx)
	l := middleware.Language(ctx)
	vr := twiml.NewResponse()

	selectAccount := func(digit string) error {
		candidates, err := h.svc.Candidates(ctx, callID)
		if err != nil {
			return err
		}
		rendered := candidates.Rendered()
		idx := int(digit[0]-'0') - 1
		if idx < 0 || idx >= len(rendered) {
			invalidInput(vr, l)()
			vr.Redirect("/fund_transfer/select_type")
			return nil
		}
		locale.Say(vr, l, locale.TransferSelected(l, rendered[idx].AccountID))
		vr.Redirect("/menu")
		return nil
	}

	handlers := map[string]flow.Handler{
		"0": jump(vr, "/menu"),
		"9": jump(vr, "/fund_transfer/select_type"),
	}
	for _, digit := range []string{"1", "2", "3", "4", "5"} {
		handlers[digit] = selectAccount
	}

	handled, err := flow.Dispatch(r.PostFormValue("Digits"), handlers, invalidInput(vr, l))
	if err != nil {
		h.log.Warnf("Transfer selection failed for call %s: %v", callID, err)
		h.systemError(w, l)
		return
	}

	if !handled {
		vr.Redirect("/fund_transfer/select_type")
	}
	h.respond(w, vr)
}
