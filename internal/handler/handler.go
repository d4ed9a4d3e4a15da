// Package handler implements one HTTP handler per dialog state of the
// call flow. Each webhook turn reads the pressed digits, consults the
// service layer and emits the next set of voice instructions.
package handler

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kwchan/bank-ivr/internal/config"
	"github.com/kwchan/bank-ivr/internal/flow"
	"github.com/kwchan/bank-ivr/internal/locale"
	"github.com/kwchan/bank-ivr/internal/middleware"
	"github.com/kwchan/bank-ivr/internal/service"
	"github.com/kwchan/bank-ivr/internal/twiml"
)

// Notifier delivers voicemail alerts to the service desk.
type Notifier interface {
	SendVoicemailAlert(callID, from, recordingURL, duration string) error
}

type Handler struct {
	svc      *service.Service
	notifier Notifier
	cfg      *config.Config
	loc      *time.Location
	log      *logrus.Logger
}

func NewHandler(svc *service.Service, notifier Notifier, cfg *config.Config, loc *time.Location, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, notifier: notifier, cfg: cfg, loc: loc, log: log}
}

func (h *Handler) respond(w http.ResponseWriter, vr *twiml.Response) {
	if err := vr.Write(w); err != nil {
		h.log.Errorf("Failed to write voice response: %v", err)
	}
}

// systemError is the fixed fallback for dependency failures: a generic
// announcement and a forced return to the main menu, never a silent hang.
func (h *Handler) systemError(w http.ResponseWriter, l locale.Language) {
	vr := twiml.NewResponse()
	locale.Say(vr, l, locale.SystemError.For(l))
	vr.Redirect("/menu")
	h.respond(w, vr)
}

// invalidInput is the localized fallback when a pressed digit matches no
// menu entry; the caller re-renders the menu afterwards.
func invalidInput(vr *twiml.Response, l locale.Language) func() {
	return func() {
		locale.Say(vr, l, locale.InvalidInput.For(l))
		vr.Pause(1)
	}
}

// jump produces a dispatch handler that redirects to the given path.
func jump(vr *twiml.Response, path string) flow.Handler {
	return func(string) error {
		vr.Redirect(path)
		return nil
	}
}

// Landing greets the caller in both languages and moves on to language
// selection.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	vr := twiml.NewResponse()

	greeting := locale.Greeting(time.Now().In(h.loc).Hour())
	vr.Say(greeting.For(locale.English)+" "+locale.Welcome.For(locale.English), twiml.SayOptions{})
	locale.Say(vr, locale.Cantonese, greeting.For(locale.Cantonese)+" "+locale.Welcome.For(locale.Cantonese))
	vr.Pause(2)
	vr.Redirect("/choose_lang")

	h.respond(w, vr)
}

// ChooseLanguage captures the language digit and persists the preference
// for every later turn of the call.
func (h *Handler) ChooseLanguage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := middleware.CallID(ctx)
	l := middleware.Language(ctx)
	vr := twiml.NewResponse()

	setLang := func(digit string) error {
		lang, _ := locale.Parse(digit)
		if err := h.svc.SetLanguage(ctx, callID, lang); err != nil {
			return err
		}
		vr.Redirect("/menu")
		return nil
	}

	handled, err := flow.Dispatch(r.PostFormValue("Digits"), map[string]flow.Handler{
		"1": setLang,
		"2": setLang,
	}, func() {
		vr.Say(locale.ChooseLanguage.For(locale.English), twiml.SayOptions{})
		locale.Say(vr, locale.Cantonese, locale.ChooseLanguage.For(locale.Cantonese))
		vr.Pause(1)
	})
	if err != nil {
		h.log.Warnf("Language selection failed for call %s: %v", callID, err)
		h.systemError(w, l)
		return
	}

	if !handled {
		g := vr.Gather(twiml.GatherOptions{NumDigits: 1, Action: "/choose_lang"})
		g.Say(locale.LanguageOptionEnglish, twiml.SayOptions{})
		locale.Say(g, locale.Cantonese, locale.LanguageOptionCantonese)
		vr.Redirect("/choose_lang")
	}
	h.respond(w, vr)
}

// MainMenu dispatches the top-level service selection.
func (h *Handler) MainMenu(w http.ResponseWriter, r *http.Request) {
	l := middleware.Language(r.Context())
	vr := twiml.NewResponse()

	handled, _ := flow.Dispatch(r.PostFormValue("Digits"), map[string]flow.Handler{
		"1": jump(vr, "/prompt_accid/enquiry_balance"),
		"2": jump(vr, "/prompt_accid/fund_transfer"),
		"3": jump(vr, "/choose_lang"),
		"4": jump(vr, "/contact_csr"),
	}, invalidInput(vr, l))

	if !handled {
		flow.Menu(vr, "/menu", locale.MenuHeader, locale.MainMenu, l)
		vr.Redirect("/menu")
	}
	h.respond(w, vr)
}
