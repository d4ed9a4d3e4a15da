package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kwchan/bank-ivr/internal/config"
	"github.com/kwchan/bank-ivr/internal/models"
	"github.com/kwchan/bank-ivr/internal/repository"
	"github.com/kwchan/bank-ivr/internal/session"
)

// fakeDirectory implements Directory in memory and counts lookups so tests
// can assert that invalid input never reaches the directory.
type fakeDirectory struct {
	accounts  []models.AccountRecord
	customers map[string]models.CustomerRecord
	lookups   int
	err       error
}

func (f *fakeDirectory) FindAccountByFormattedID(_ context.Context, id string) (*models.AccountRecord, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	for _, rec := range f.accounts {
		if rec.AccountID == id {
			r := rec
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDirectory) FindCustomerByRef(_ context.Context, ref string) (*models.CustomerRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	cust, ok := f.customers[ref]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &cust, nil
}

func (f *fakeDirectory) FindAccountsByRefs(_ context.Context, refs []string, limit int) ([]models.AccountRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[string]bool, len(refs))
	for _, ref := range refs {
		wanted[ref] = true
	}
	var records []models.AccountRecord
	for _, rec := range f.accounts {
		if len(records) == limit {
			break
		}
		if wanted[rec.Ref] {
			records = append(records, rec)
		}
	}
	return records, nil
}

const testAdminPassword = "opensesame"

func newTestService(t *testing.T, dir *fakeDirectory) (*Service, *session.Store) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sessions, err := session.NewStore(session.Config{Addr: mr.Addr(), TTL: time.Hour}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		AdminPasswordHash: string(hash),
	}
	return NewService(dir, sessions, logger, cfg), sessions
}

func testAccount() models.AccountRecord {
	return models.AccountRecord{
		Ref:       "rec-a1",
		AccountID: "314-1592653-9",
		PIN:       "159265",
		Balance:   8964.25,
		OwnerRef:  "cust-1",
	}
}

func TestValidDigits(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  bool
	}{
		{"3141592653589", 13, true},
		{"314159265358", 13, false},
		{"31415926535891", 13, false},
		{"31415926535a9", 13, false},
		{"314-1592653-9", 13, false},
		{"", 13, false},
		{"123456", 6, true},
		{"12345", 6, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidDigits(tt.input, tt.n), "input %q", tt.input)
	}
}

func TestFormatAccountID(t *testing.T) {
	assert.Equal(t, "314-1592653-9", FormatAccountID("3141592653589"))
}

func TestAcceptAccountIDRejectsShapeBeforeLookup(t *testing.T) {
	dir := &fakeDirectory{}
	svc, _ := newTestService(t, dir)
	ctx := context.Background()

	for _, input := range []string{"", "123", "31415926535891", strings.Repeat("a", 13)} {
		outcome, err := svc.AcceptAccountID(ctx, "CA1", input)
		require.NoError(t, err)
		assert.Equal(t, AuthInvalid, outcome, "input %q", input)
	}
	assert.Equal(t, 0, dir.lookups, "shape-invalid input must not reach the directory")
}

func TestAcceptAccountIDNotFound(t *testing.T) {
	dir := &fakeDirectory{}
	svc, _ := newTestService(t, dir)
	ctx := context.Background()

	outcome, err := svc.AcceptAccountID(ctx, "CA1", "9999999999999")
	require.NoError(t, err)
	assert.Equal(t, AuthNotFound, outcome)

	// No authenticated session may exist after a miss.
	_, err = svc.Balance(ctx, "CA1")
	assert.Error(t, err)
}

func TestAcceptAccountIDStoresAccount(t *testing.T) {
	dir := &fakeDirectory{accounts: []models.AccountRecord{testAccount()}}
	svc, sessions := newTestService(t, dir)
	ctx := context.Background()

	outcome, err := svc.AcceptAccountID(ctx, "CA1", "3141592653589")
	require.NoError(t, err)
	assert.Equal(t, AuthAccepted, outcome)

	acc, err := sessions.AuthAccount(ctx, "CA1")
	require.NoError(t, err)
	assert.Equal(t, "314-1592653-9", acc.AccountID)
	assert.Equal(t, "159265", acc.PIN)
	assert.Equal(t, 8964.25, acc.Balance)
	assert.Equal(t, "cust-1", acc.OwnerRef)
}

func TestAcceptAccountIDResetsStaleCounter(t *testing.T) {
	dir := &fakeDirectory{accounts: []models.AccountRecord{testAccount()}}
	svc, sessions := newTestService(t, dir)
	ctx := context.Background()

	// Two failures accrued against an earlier account on the same call.
	_, err := sessions.IncrementErrorCount(ctx, "CA1")
	require.NoError(t, err)
	_, err = sessions.IncrementErrorCount(ctx, "CA1")
	require.NoError(t, err)

	_, err = svc.AcceptAccountID(ctx, "CA1", "3141592653589")
	require.NoError(t, err)

	count, err := sessions.ErrorCount(ctx, "CA1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAcceptAccountIDDirectoryFailure(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("directory down")}
	svc, _ := newTestService(t, dir)

	_, err := svc.AcceptAccountID(context.Background(), "CA1", "3141592653589")
	assert.Error(t, err)
}

func TestVerifyPINLockout(t *testing.T) {
	dir := &fakeDirectory{accounts: []models.AccountRecord{testAccount()}}
	svc, sessions := newTestService(t, dir)
	ctx := context.Background()

	_, err := svc.AcceptAccountID(ctx, "CA1", "3141592653589")
	require.NoError(t, err)

	outcome, count, err := svc.VerifyPIN(ctx, "CA1", "000001")
	require.NoError(t, err)
	assert.Equal(t, PINRetry, outcome)
	assert.Equal(t, 1, count)

	outcome, count, err = svc.VerifyPIN(ctx, "CA1", "000002")
	require.NoError(t, err)
	assert.Equal(t, PINRetry, outcome)
	assert.Equal(t, 2, count)

	outcome, count, err = svc.VerifyPIN(ctx, "CA1", "000003")
	require.NoError(t, err)
	assert.Equal(t, PINLocked, outcome)
	assert.Equal(t, 3, count)

	stored, err := sessions.ErrorCount(ctx, "CA1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored)
}

func TestVerifyPINRecovery(t *testing.T) {
	dir := &fakeDirectory{accounts: []models.AccountRecord{testAccount()}}
	svc, sessions := newTestService(t, dir)
	ctx := context.Background()

	_, err := svc.AcceptAccountID(ctx, "CA1", "3141592653589")
	require.NoError(t, err)

	for _, pin := range []string{"000001", "000002"} {
		outcome, _, err := svc.VerifyPIN(ctx, "CA1", pin)
		require.NoError(t, err)
		assert.Equal(t, PINRetry, outcome)
	}

	outcome, count, err := svc.VerifyPIN(ctx, "CA1", "159265")
	require.NoError(t, err)
	assert.Equal(t, PINMatched, outcome)
	assert.Equal(t, 0, count)

	stored, err := sessions.ErrorCount(ctx, "CA1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored)
}

func TestVerifyPINWithoutPendingAccount(t *testing.T) {
	svc, _ := newTestService(t, &fakeDirectory{})

	_, _, err := svc.VerifyPIN(context.Background(), "CA1", "159265")
	assert.Error(t, err)
}

func transferFixture() *fakeDirectory {
	return &fakeDirectory{
		accounts: []models.AccountRecord{
			testAccount(),
			{Ref: "rec-a2", AccountID: "222-2222222-2", PIN: "111111", OwnerRef: "cust-1"},
			{Ref: "rec-b1", AccountID: "333-3333333-3", PIN: "222222", OwnerRef: "cust-2"},
		},
		customers: map[string]models.CustomerRecord{
			"cust-1": {
				Ref:                 "cust-1",
				Name:                "Chan Tai Man",
				AccountRefs:         []string{"rec-a1", "rec-a2"},
				AllowedTransferRefs: []string{"rec-b1"},
			},
		},
	}
}

func TestLoadTransferCandidates(t *testing.T) {
	dir := transferFixture()
	svc, _ := newTestService(t, dir)
	ctx := context.Background()

	_, err := svc.AcceptAccountID(ctx, "CA1", "3141592653589")
	require.NoError(t, err)

	candidates, err := svc.LoadTransferCandidates(ctx, "CA1", models.PartitionOwn)
	require.NoError(t, err)

	assert.Equal(t, []models.AccountCandidate{{Ref: "rec-a2", AccountID: "222-2222222-2"}}, candidates.Own)
	assert.Equal(t, []models.AccountCandidate{{Ref: "rec-b1", AccountID: "333-3333333-3"}}, candidates.Allowed)
	assert.Equal(t, models.PartitionOwn, candidates.Selected)

	// The authenticated account itself never shows up in either list.
	for _, cand := range append(candidates.Own, candidates.Allowed...) {
		assert.NotEqual(t, "314-1592653-9", cand.AccountID)
	}

	// Persisted for the next screen.
	stored, err := svc.Candidates(ctx, "CA1")
	require.NoError(t, err)
	assert.Equal(t, candidates, stored)
}

func TestLoadTransferCandidatesMissingAllowedList(t *testing.T) {
	dir := transferFixture()
	cust := dir.customers["cust-1"]
	cust.AllowedTransferRefs = nil
	dir.customers["cust-1"] = cust

	svc, _ := newTestService(t, dir)
	ctx := context.Background()

	_, err := svc.AcceptAccountID(ctx, "CA1", "3141592653589")
	require.NoError(t, err)

	candidates, err := svc.LoadTransferCandidates(ctx, "CA1", models.PartitionAllowed)
	require.NoError(t, err)
	assert.Empty(t, candidates.Allowed)
	assert.Empty(t, candidates.Rendered())
}

func TestLoadTransferCandidatesCapped(t *testing.T) {
	dir := transferFixture()
	cust := dir.customers["cust-1"]
	for i := 0; i < 10; i++ {
		ref := string(rune('c'+i)) + "-extra"
		dir.accounts = append(dir.accounts, models.AccountRecord{
			Ref:       ref,
			AccountID: FormatAccountID(strings.Repeat(string(rune('0'+i)), 13)),
			OwnerRef:  "cust-1",
		})
		cust.AccountRefs = append(cust.AccountRefs, ref)
	}
	dir.customers["cust-1"] = cust

	svc, _ := newTestService(t, dir)
	ctx := context.Background()

	_, err := svc.AcceptAccountID(ctx, "CA1", "3141592653589")
	require.NoError(t, err)

	candidates, err := svc.LoadTransferCandidates(ctx, "CA1", models.PartitionOwn)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(candidates.Own)+len(candidates.Allowed), 5)
}

func TestQueueStatus(t *testing.T) {
	svc, _ := newTestService(t, &fakeDirectory{})
	ctx := context.Background()

	assert.False(t, svc.QueueOpen(ctx), "queue defaults to closed")

	assert.Error(t, svc.SetQueueStatus(ctx, "open"))

	require.NoError(t, svc.SetQueueStatus(ctx, session.StatusInService))
	assert.True(t, svc.QueueOpen(ctx))

	require.NoError(t, svc.SetQueueStatus(ctx, session.StatusOutOfService))
	assert.False(t, svc.QueueOpen(ctx))
}

func TestAdminLogin(t *testing.T) {
	svc, _ := newTestService(t, &fakeDirectory{})

	_, err := svc.AdminLogin("wrong")
	assert.Error(t, err)

	tokenString, err := svc.AdminLogin(testAdminPassword)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
}
