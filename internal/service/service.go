// Package service holds the call-flow business logic: account
// authentication, PIN verification with retry and lockout, balance
// enquiry and transfer account selection.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/kwchan/bank-ivr/internal/config"
	"github.com/kwchan/bank-ivr/internal/locale"
	"github.com/kwchan/bank-ivr/internal/models"
	"github.com/kwchan/bank-ivr/internal/repository"
	"github.com/kwchan/bank-ivr/internal/session"
)

const (
	// AccountIDLength is the number of digits a caller keys in for an
	// account ID, before formatting.
	AccountIDLength = 13
	// PINLength is the number of digits gathered for the PIN prompt.
	PINLength = 6
	// MaxPINAttempts is the mismatch count at which the call is terminated.
	MaxPINAttempts = 3
	// transferListLimit caps the directory query for transfer candidates.
	transferListLimit = 5
)

// Directory is the read-only account directory the flows query.
type Directory interface {
	FindAccountByFormattedID(ctx context.Context, id string) (*models.AccountRecord, error)
	FindCustomerByRef(ctx context.Context, ref string) (*models.CustomerRecord, error)
	FindAccountsByRefs(ctx context.Context, refs []string, limit int) ([]models.AccountRecord, error)
}

// Service handles business logic
type Service struct {
	dir      Directory
	sessions *session.Store
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service
func NewService(dir Directory, sessions *session.Store, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{dir: dir, sessions: sessions, log: log, config: cfg}
}

// ValidDigits reports whether input is exactly n ASCII digits.
func ValidDigits(input string, n int) bool {
	if len(input) != n {
		return false
	}
	for i := 0; i < len(input); i++ {
		if input[i] < '0' || input[i] > '9' {
			return false
		}
	}
	return true
}

// FormatAccountID converts 13 raw digits into the directory's canonical
// NNN-NNNNNNN-N form. The input must already be shape-checked.
func FormatAccountID(digits string) string {
	return digits[:3] + "-" + digits[3:10] + "-" + digits[10:]
}

// AuthOutcome is the result of an account ID submission.
type AuthOutcome int

const (
	// AuthInvalid means the input failed the shape check; no directory
	// query was issued.
	AuthInvalid AuthOutcome = iota
	// AuthNotFound means the directory holds no such account.
	AuthNotFound
	// AuthAccepted means the account is stored in the session and the
	// caller may proceed to the PIN prompt.
	AuthAccepted
)

// AcceptAccountID validates the keyed-in digits, looks the account up in
// the directory and, on a hit, persists it into the session. Accepting an
// account resets any stale retry counter from a prior attempt on this call.
func (s *Service) AcceptAccountID(ctx context.Context, callID, digits string) (AuthOutcome, error) {
	if !ValidDigits(digits, AccountIDLength) {
		return AuthInvalid, nil
	}
	formatted := FormatAccountID(digits)

	rec, err := s.dir.FindAccountByFormattedID(ctx, formatted)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Debugf("Account not found: %s", formatted)
		return AuthNotFound, nil
	}
	if err != nil {
		return 0, fmt.Errorf("directory lookup failed: %w", err)
	}

	acc := &models.AuthAccount{
		AccountID: rec.AccountID,
		PIN:       rec.PIN,
		Balance:   rec.Balance,
		OwnerRef:  rec.OwnerRef,
	}
	if err := s.sessions.SetAuthAccount(ctx, callID, acc); err != nil {
		return 0, err
	}
	s.log.Infof("Account %s accepted for call %s", rec.AccountID, callID)
	return AuthAccepted, nil
}

// PINOutcome is the result of a PIN submission.
type PINOutcome int

const (
	// PINMatched means the caller is authenticated and the counter is reset.
	PINMatched PINOutcome = iota
	// PINRetry means the PIN mismatched but retries remain.
	PINRetry
	// PINLocked means the mismatch limit is reached; the call must end.
	PINLocked
)

// VerifyPIN compares the submitted digits with the stored PIN. Mismatches
// increment the retry counter atomically in the store; the counter is the
// sole gate for the lockout. The attempt count after the check is returned
// alongside the outcome.
func (s *Service) VerifyPIN(ctx context.Context, callID, pin string) (PINOutcome, int, error) {
	acc, err := s.sessions.AuthAccount(ctx, callID)
	if err != nil {
		return 0, 0, fmt.Errorf("no pending account for call %s: %w", callID, err)
	}

	if pin == acc.PIN {
		if err := s.sessions.ResetErrorCount(ctx, callID); err != nil {
			return 0, 0, err
		}
		s.log.Infof("Call %s authenticated for account %s", callID, acc.AccountID)
		return PINMatched, 0, nil
	}

	count, err := s.sessions.IncrementErrorCount(ctx, callID)
	if err != nil {
		return 0, 0, err
	}
	if count < MaxPINAttempts {
		return PINRetry, count, nil
	}
	s.log.Warnf("Call %s locked out after %d PIN failures", callID, count)
	return PINLocked, count, nil
}

// SetLanguage persists the caller's language preference for the call.
func (s *Service) SetLanguage(ctx context.Context, callID string, l locale.Language) error {
	s.log.Infof("Call %s selected language %d", callID, l)
	return s.sessions.SetLanguage(ctx, callID, l)
}

// Balance returns the balance of the authenticated account.
func (s *Service) Balance(ctx context.Context, callID string) (float64, error) {
	acc, err := s.sessions.AuthAccount(ctx, callID)
	if err != nil {
		return 0, fmt.Errorf("no authenticated account for call %s: %w", callID, err)
	}
	return acc.Balance, nil
}

// LoadTransferCandidates fetches the owning customer of the authenticated
// account, queries the directory for the union of owned and pre-registered
// accounts (capped), partitions the results excluding the authenticated
// account itself, and persists both lists for the selection screen.
// partition names which list the caller asked for.
func (s *Service) LoadTransferCandidates(ctx context.Context, callID, partition string) (*models.AccountCandidates, error) {
	acc, err := s.sessions.AuthAccount(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("no authenticated account for call %s: %w", callID, err)
	}

	cust, err := s.dir.FindCustomerByRef(ctx, acc.OwnerRef)
	if err != nil {
		return nil, fmt.Errorf("customer lookup failed: %w", err)
	}

	owned := make(map[string]bool, len(cust.AccountRefs))
	refs := make([]string, 0, len(cust.AccountRefs)+len(cust.AllowedTransferRefs))
	for _, ref := range cust.AccountRefs {
		owned[ref] = true
		refs = append(refs, ref)
	}
	refs = append(refs, cust.AllowedTransferRefs...)

	records, err := s.dir.FindAccountsByRefs(ctx, refs, transferListLimit)
	if err != nil {
		return nil, fmt.Errorf("account listing failed: %w", err)
	}

	candidates := &models.AccountCandidates{Selected: partition}
	for _, rec := range records {
		if rec.AccountID == acc.AccountID {
			continue
		}
		cand := models.AccountCandidate{Ref: rec.Ref, AccountID: rec.AccountID}
		if owned[rec.Ref] {
			candidates.Own = append(candidates.Own, cand)
		} else {
			candidates.Allowed = append(candidates.Allowed, cand)
		}
	}

	if err := s.sessions.SetCandidates(ctx, callID, candidates); err != nil {
		return nil, err
	}
	s.log.Debugf("Call %s transfer candidates: %d own, %d allowed",
		callID, len(candidates.Own), len(candidates.Allowed))
	return candidates, nil
}

// Candidates reads back the transfer partitions stored by the selection
// screen.
func (s *Service) Candidates(ctx context.Context, callID string) (*models.AccountCandidates, error) {
	return s.sessions.Candidates(ctx, callID)
}

// QueueOpen reports whether the agent queue is currently staffed.
func (s *Service) QueueOpen(ctx context.Context) bool {
	return s.sessions.ServiceStatus(ctx) == session.StatusInService
}

// SetQueueStatus overrides the call-centre availability flag.
func (s *Service) SetQueueStatus(ctx context.Context, status string) error {
	if status != session.StatusInService && status != session.StatusOutOfService {
		return fmt.Errorf("invalid service status %q", status)
	}
	s.log.Infof("Service status set to %s", status)
	return s.sessions.SetServiceStatus(ctx, status)
}

// AdminLogin authenticates an operator and returns a JWT token
func (s *Service) AdminLogin(password string) (string, error) {
	if s.config.AdminPasswordHash == "" {
		return "", fmt.Errorf("admin access not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("Operator logged in")
	return tokenString, nil
}
