package handler

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/kwchan/bank-ivr/internal/config"
	"github.com/kwchan/bank-ivr/internal/middleware"
	"github.com/kwchan/bank-ivr/internal/session"
)

// NewRouter wires every dialog state to its webhook path. Voice routes run
// behind the call-context middleware (and the signature check when
// enabled); admin routes sit behind JWT auth.
func NewRouter(h *Handler, sessions *session.Store, cfg *config.Config, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()

	// Admin routes are registered ahead of the catch-all voice subrouter;
	// mux does not backtrack out of a matched path prefix.
	r.HandleFunc("/admin/login", h.AdminLogin).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.HandleFunc("/service_status", h.SetServiceStatus).Methods("PUT")

	voice := r.PathPrefix("/").Subrouter()
	if cfg.ValidateSignatures {
		voice.Use(middleware.ValidateSignature(cfg.CarrierAuthToken, log))
	}
	voice.Use(middleware.CallContext(sessions, log))

	voice.HandleFunc("/landing", h.Landing).Methods("POST")
	voice.HandleFunc("/choose_lang", h.ChooseLanguage).Methods("POST")
	voice.HandleFunc("/menu", h.MainMenu).Methods("POST")

	// The purpose variable is restricted to the known continuation tokens;
	// anything else 404s before reaching the flow.
	purpose := "{purpose:enquiry_balance|fund_transfer}"
	voice.HandleFunc("/prompt_accid/"+purpose, h.PromptAccountID).Methods("POST")
	voice.HandleFunc("/prompt_accid/check/"+purpose, h.CheckAccountID).Methods("POST")
	voice.HandleFunc("/prompt_pin/"+purpose, h.PromptPIN).Methods("POST")
	voice.HandleFunc("/prompt_pin/check/"+purpose, h.CheckPIN).Methods("POST")

	voice.HandleFunc("/enquiry_balance", h.EnquiryBalance).Methods("POST")
	voice.HandleFunc("/enquiry_balance/followup", h.EnquiryFollowup).Methods("POST")

	voice.HandleFunc("/fund_transfer/select_type", h.TransferSelectType).Methods("POST")
	voice.HandleFunc("/fund_transfer/select_account", h.TransferSelectAccount).Methods("POST")
	voice.HandleFunc("/fund_transfer/enter_amount", h.TransferEnterAmount).Methods("POST")

	voice.HandleFunc("/contact_csr", h.ContactAgent).Methods("POST")
	voice.HandleFunc("/contact_csr/waiting", h.AgentWaiting).Methods("POST")
	voice.HandleFunc("/contact_csr/voice_mail/{reason:timeout|not_in_service}", h.VoiceMail).Methods("POST")
	voice.HandleFunc("/contact_csr/recording", h.Recording).Methods("POST")
	voice.HandleFunc("/contact_csr/connect", h.AgentConnect).Methods("POST")

	return r
}
