package integration

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dao-governance/internal/adapter/http/handler"
	"dao-governance/internal/adapter/invoker"
	memStorage "dao-governance/internal/adapter/storage/memory"
	redisStore "dao-governance/internal/adapter/storage/redis"
	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/ports"
	"dao-governance/internal/core/state"
	"dao-governance/internal/service"
	"dao-governance/internal/target"
)

const (
	testAESKey    = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	testJWTSecret = "test-jwt-secret-key-32bytes!!"

	selfPrincipal   = "governance-engine"
	targetPrincipal = "events-hub"
)

// nonceSeq keeps generated nonces unique even when requests fire within
// the same nanosecond.
var nonceSeq atomic.Int64

// memberKeys carries one member's credentials for both auth schemes.
type memberKeys struct {
	principal string
	username  string
	password  string
	accessKey string
	secretKey string
}

// testApp is a fully wired engine: real services and middleware over
// miniredis and map-backed member storage, plus a live target daemon the
// executor reaches over HTTP exactly as it would in production.
type testApp struct {
	server    *httptest.Server
	targetSrv *httptest.Server
	redis     *miniredis.Miniredis

	governor memberKeys
	alice    memberKeys
	bob      memberKeys
}

func (a *testApp) close() {
	a.server.Close()
	a.targetSrv.Close()
	a.redis.Close()
}

// newTestApp mirrors the composition root in cmd/api: genesis seeds the
// ledger with member-alpha (1000) and member-beta (500), fee 1,
// threshold 100, deposit 10. Three members are registered up front; the
// governor's principal matches the engine's own so it can drive the
// admin surface.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := zerolog.Nop()

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	nonceStore := redisStore.NewNonceStore(redisClient)

	targetStore, err := target.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = targetStore.Close() })
	targetSrv := httptest.NewServer(target.SetupRouter(targetStore, log))

	snap := &domain.Snapshot{
		Accounts: []domain.Account{
			{Owner: "member-alpha", Tokens: 1000},
			{Owner: "member-beta", Tokens: 500},
		},
		Params: domain.SystemParams{
			TransferFee:               1,
			ProposalVoteThreshold:     100,
			ProposalSubmissionDeposit: 10,
		},
	}
	st := state.New(snap)

	encSvc, err := service.NewAESEncryptionService(testAESKey)
	require.NoError(t, err)
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(testJWTSecret, 24*time.Hour, "test-issuer")

	memberRepo := memStorage.NewMemberRepo()
	authSvc := service.NewAuthService(memberRepo, hashSvc, encSvc, tokenSvc)
	ledgerSvc := service.NewLedgerService(st, log)
	govSvc := service.NewGovernanceService(st, selfPrincipal, log)
	reportingSvc := service.NewReportingService(st)

	inv := invoker.NewHTTPInvoker(map[string]string{targetPrincipal: targetSrv.URL}, nil, log)
	executorSvc := service.NewExecutorService(st, inv, 5*time.Second, log)

	app := &testApp{
		targetSrv: targetSrv,
		redis:     mr,
	}
	app.governor = registerMember(t, authSvc, selfPrincipal, "governor", "GovernorPass123!")
	app.alice = registerMember(t, authSvc, "member-alpha", "alice", "AlicePass123!")
	app.bob = registerMember(t, authSvc, "member-beta", "bob", "BobPass123!")

	router := handler.SetupRouter(handler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		GovSvc:         govSvc,
		ExecutorSvc:    executorSvc,
		ReportingSvc:   reportingSvc,
		MemberRepo:     memberRepo,
		EncSvc:         encSvc,
		SigSvc:         sigSvc,
		NonceStore:     nonceStore,
		TokenSvc:       tokenSvc,
		SelfPrincipal:  selfPrincipal,
		RateLimitStore: nil, // limits would throttle the concurrency tests
		HealthCheckers: []ports.HealthChecker{redisStore.NewHealthCheck(redisClient)},
		Logger:         log,
	})
	app.server = httptest.NewServer(router)

	return app
}

func registerMember(t *testing.T, authSvc ports.AuthService, principal, username, password string) memberKeys {
	t.Helper()
	res, err := authSvc.RegisterMember(context.Background(), ports.RegisterMemberRequest{
		Principal: domain.Principal(principal),
		Username:  username,
		Password:  password,
	})
	require.NoError(t, err)
	return memberKeys{
		principal: principal,
		username:  username,
		password:  password,
		accessKey: res.AccessKey,
		secretKey: res.SecretKey,
	}
}

// sendSigned performs an HMAC-signed member API call: canonical string
// METHOD|PATH|TIMESTAMP|NONCE|BODY signed with the member's secret key.
// It reports failures as errors so worker goroutines can use it directly.
func sendSigned(app *testApp, m memberKeys, method, path, body string) (*http.Response, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	nonce := fmt.Sprintf("nonce-%d-%d", nonceSeq.Add(1), time.Now().UnixNano())

	canonical := fmt.Sprintf("%s|%s|%s|%s|%s", method, path, timestamp, nonce, body)
	mac := hmac.New(sha256.New, []byte(m.secretKey))
	mac.Write([]byte(canonical))
	signature := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequest(method, app.server.URL+path, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-DAO-Access-Key", m.accessKey)
	req.Header.Set("X-DAO-Signature", signature)
	req.Header.Set("X-DAO-Timestamp", timestamp)
	req.Header.Set("X-DAO-Nonce", nonce)

	return http.DefaultClient.Do(req)
}

func signedRequest(t *testing.T, app *testApp, m memberKeys, method, path, body string) *http.Response {
	t.Helper()
	resp, err := sendSigned(app, m, method, path, body)
	require.NoError(t, err)
	return resp
}

func login(t *testing.T, app *testApp, m memberKeys) string {
	t.Helper()

	body := fmt.Sprintf(`{"username":%q,"password":%q}`, m.username, m.password)
	resp, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &result)
	require.NotEmpty(t, result.Token)
	return result.Token
}

func authedRequest(t *testing.T, app *testApp, token, method, path, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, app.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// decodeData unwraps the success envelope into out and closes the body.
func decodeData(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// decodeErrorCode pulls error_code from the error envelope and closes the body.
func decodeErrorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		ErrorCode string `json:"error_code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.ErrorCode
}

// proposalView is the wire form of a proposal as the tests need it.
type proposalView struct {
	ID            uint64   `json:"id"`
	Proposer      string   `json:"proposer"`
	Target        string   `json:"target"`
	Method        string   `json:"method"`
	State         string   `json:"state"`
	FailureReason string   `json:"failure_reason"`
	VotesYes      uint64   `json:"votes_yes"`
	VotesNo       uint64   `json:"votes_no"`
	Voters        []string `json:"voters"`
}

type tickView struct {
	Claimed   int `json:"claimed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type statsView struct {
	InitialSupply uint64 `json:"initial_supply"`
	Burned        uint64 `json:"burned"`
	Circulating   uint64 `json:"circulating"`
	Accounts      int    `json:"accounts"`
}

func getBalance(t *testing.T, app *testApp, token string) uint64 {
	t.Helper()

	resp := authedRequest(t, app, token, http.MethodGet, "/api/v1/ledger/balance", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Balance uint64 `json:"balance"`
	}
	decodeData(t, resp, &result)
	return result.Balance
}

func getAccounts(t *testing.T, app *testApp) map[string]uint64 {
	t.Helper()

	resp, err := http.Get(app.server.URL + "/api/v1/ledger/accounts")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []struct {
		Owner  string `json:"owner"`
		Tokens uint64 `json:"tokens"`
	}
	decodeData(t, resp, &items)

	accounts := make(map[string]uint64, len(items))
	for _, item := range items {
		accounts[item.Owner] = item.Tokens
	}
	return accounts
}

func getProposal(t *testing.T, app *testApp, id uint64) proposalView {
	t.Helper()

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/proposals/%d", app.server.URL, id))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p proposalView
	decodeData(t, resp, &p)
	return p
}

func getStats(t *testing.T, app *testApp, governorToken string) statsView {
	t.Helper()

	resp := authedRequest(t, app, governorToken, http.MethodGet, "/api/v1/admin/ledger/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats statsView
	decodeData(t, resp, &stats)
	return stats
}

// submitProposal submits on behalf of m and returns the created proposal.
// message is JSON-encoded into the base64 wire form a client SDK would send.
func submitProposal(t *testing.T, app *testApp, m memberKeys, targetName, method string, message []byte) proposalView {
	t.Helper()

	body, err := json.Marshal(struct {
		Target  string `json:"target"`
		Method  string `json:"method"`
		Message []byte `json:"message,omitempty"`
	}{Target: targetName, Method: method, Message: message})
	require.NoError(t, err)

	resp := signedRequest(t, app, m, http.MethodPost, "/api/v1/proposals", string(body))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var p proposalView
	decodeData(t, resp, &p)
	return p
}

func castVote(t *testing.T, app *testApp, m memberKeys, proposalID uint64, choice string) *http.Response {
	t.Helper()
	path := fmt.Sprintf("/api/v1/proposals/%d/votes", proposalID)
	return signedRequest(t, app, m, http.MethodPost, path, fmt.Sprintf(`{"choice":%q}`, choice))
}

func runTick(t *testing.T, app *testApp, governorToken string) tickView {
	t.Helper()

	resp := authedRequest(t, app, governorToken, http.MethodPost, "/api/v1/admin/tick", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report tickView
	decodeData(t, resp, &report)
	return report
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Status       string `json:"status"`
		Dependencies map[string]struct {
			Status string `json:"status"`
		} `json:"dependencies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "healthy", result.Dependencies["redis"].Status)
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := login(t, app, app.alice)
	assert.NotEmpty(t, token)

	// Wrong password is rejected without leaking which part was wrong.
	body := fmt.Sprintf(`{"username":%q,"password":"WrongPass123!"}`, app.alice.username)
	resp, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_001", decodeErrorCode(t, resp))
}

func TestTransfer_Settles(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp := signedRequest(t, app, app.alice, http.MethodPost, "/api/v1/ledger/transfers",
		`{"to":"member-beta","amount":40}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var receipt struct {
		From       string `json:"from"`
		To         string `json:"to"`
		Amount     uint64 `json:"amount"`
		Fee        uint64 `json:"fee"`
		NewBalance uint64 `json:"new_balance"`
	}
	decodeData(t, resp, &receipt)
	assert.Equal(t, "member-alpha", receipt.From)
	assert.Equal(t, "member-beta", receipt.To)
	assert.Equal(t, uint64(40), receipt.Amount)
	assert.Equal(t, uint64(1), receipt.Fee)
	assert.Equal(t, uint64(959), receipt.NewBalance)

	accounts := getAccounts(t, app)
	assert.Equal(t, uint64(959), accounts["member-alpha"])
	assert.Equal(t, uint64(540), accounts["member-beta"])

	// The fee left circulation entirely.
	stats := getStats(t, app, login(t, app, app.governor))
	assert.Equal(t, uint64(1500), stats.InitialSupply)
	assert.Equal(t, uint64(1), stats.Burned)
	assert.Equal(t, uint64(1499), stats.Circulating)
	assert.Equal(t, stats.InitialSupply, stats.Circulating+stats.Burned)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// Beta holds 500; sending all 500 leaves nothing for the fee.
	resp := signedRequest(t, app, app.bob, http.MethodPost, "/api/v1/ledger/transfers",
		`{"to":"member-alpha","amount":500}`)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "LED_001", decodeErrorCode(t, resp))

	accounts := getAccounts(t, app)
	assert.Equal(t, uint64(500), accounts["member-beta"])
	assert.Equal(t, uint64(1000), accounts["member-alpha"])
}

func TestHMACAuth_RejectsBadSignature(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	forged := app.alice
	forged.secretKey = "not-the-real-secret"

	resp := signedRequest(t, app, forged, http.MethodPost, "/api/v1/ledger/transfers",
		`{"to":"member-beta","amount":1}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "SEC_002", decodeErrorCode(t, resp))
}

func TestHMACAuth_RejectsUnknownAccessKey(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	stranger := app.alice
	stranger.accessKey = "ak_does_not_exist"

	resp := signedRequest(t, app, stranger, http.MethodPost, "/api/v1/ledger/transfers",
		`{"to":"member-beta","amount":1}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "SEC_001", decodeErrorCode(t, resp))
}

func TestHMACAuth_RejectsReplayedNonce(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	body := `{"to":"member-beta","amount":5}`
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	nonce := fmt.Sprintf("replay-nonce-%d", time.Now().UnixNano())

	canonical := fmt.Sprintf("POST|/api/v1/ledger/transfers|%s|%s|%s", timestamp, nonce, body)
	mac := hmac.New(sha256.New, []byte(app.alice.secretKey))
	mac.Write([]byte(canonical))
	signature := hex.EncodeToString(mac.Sum(nil))

	send := func() *http.Response {
		req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/ledger/transfers",
			strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-DAO-Access-Key", app.alice.accessKey)
		req.Header.Set("X-DAO-Signature", signature)
		req.Header.Set("X-DAO-Timestamp", timestamp)
		req.Header.Set("X-DAO-Nonce", nonce)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	first := send()
	first.Body.Close()
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := send()
	assert.Equal(t, http.StatusConflict, second.StatusCode)
	assert.Equal(t, "SEC_004", decodeErrorCode(t, second))

	// Only the first transfer settled.
	accounts := getAccounts(t, app)
	assert.Equal(t, uint64(994), accounts["member-alpha"])
}

func TestBalance_RequiresJWT(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/api/v1/ledger/balance")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = authedRequest(t, app, "not-a-jwt", http.MethodGet, "/api/v1/ledger/balance", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := login(t, app, app.alice)
	assert.Equal(t, uint64(1000), getBalance(t, app, token))
}

func TestProposal_LifecycleToSucceeded(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	message := []byte(`{"name":"launch party","date":"2026-09-01","venue":"atrium"}`)
	p := submitProposal(t, app, app.alice, targetPrincipal, "create_event", message)
	assert.Equal(t, uint64(1), p.ID)
	assert.Equal(t, "OPEN", p.State)
	assert.Equal(t, "member-alpha", p.Proposer)

	// The deposit was debited and burned at submission time.
	accounts := getAccounts(t, app)
	assert.Equal(t, uint64(990), accounts["member-alpha"])

	// Alpha's live balance (990) clears the threshold in one ballot.
	resp := castVote(t, app, app.alice, p.ID, "YES")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var voted proposalView
	decodeData(t, resp, &voted)
	assert.Equal(t, "ACCEPTED", voted.State)
	assert.Equal(t, uint64(990), voted.VotesYes)

	governorToken := login(t, app, app.governor)
	report := runTick(t, app, governorToken)
	assert.Equal(t, tickView{Claimed: 1, Succeeded: 1, Failed: 0}, report)

	assert.Equal(t, "SUCCEEDED", getProposal(t, app, p.ID).State)

	// The invocation really reached the target daemon.
	eventsResp, err := http.Get(app.targetSrv.URL + "/events")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, eventsResp.StatusCode)
	var events []struct {
		Name  string `json:"name"`
		Venue string `json:"venue"`
	}
	decodeData(t, eventsResp, &events)
	require.Len(t, events, 1)
	assert.Equal(t, "launch party", events[0].Name)
	assert.Equal(t, "atrium", events[0].Venue)

	// Nothing left to claim.
	assert.Equal(t, tickView{}, runTick(t, app, governorToken))
}

func TestProposal_RejectedNeverExecutes(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := submitProposal(t, app, app.bob, targetPrincipal, "create_event",
		[]byte(`{"name":"rejected gala","date":"2026-10-01"}`))

	resp := castVote(t, app, app.alice, p.ID, "NO")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var voted proposalView
	decodeData(t, resp, &voted)
	assert.Equal(t, "REJECTED", voted.State)
	assert.Equal(t, uint64(1000), voted.VotesNo)

	governorToken := login(t, app, app.governor)
	assert.Equal(t, tickView{}, runTick(t, app, governorToken))
	assert.Equal(t, "REJECTED", getProposal(t, app, p.ID).State)

	// The deposit stays burned even though the proposal never ran.
	stats := getStats(t, app, governorToken)
	assert.Equal(t, uint64(10), stats.Burned)
}

func TestProposal_ExecutionFailureIsRecorded(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := submitProposal(t, app, app.alice, targetPrincipal, "transmogrify",
		[]byte(`{"subject":"frog"}`))

	resp := castVote(t, app, app.alice, p.ID, "YES")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	governorToken := login(t, app, app.governor)
	report := runTick(t, app, governorToken)
	assert.Equal(t, tickView{Claimed: 1, Succeeded: 0, Failed: 1}, report)

	failed := getProposal(t, app, p.ID)
	assert.Equal(t, "FAILED", failed.State)
	assert.Contains(t, failed.FailureReason, "transmogrify")
	assert.Contains(t, failed.FailureReason, "code: 404")

	// Failure is final: nothing is retried on later ticks.
	assert.Equal(t, tickView{}, runTick(t, app, governorToken))
	assert.Equal(t, "FAILED", getProposal(t, app, p.ID).State)
}

func TestVote_DuplicateBallotRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := submitProposal(t, app, app.alice, targetPrincipal, "create_event",
		[]byte(`{"name":"annual meetup","date":"2026-11-20"}`))

	resp := castVote(t, app, app.alice, p.ID, "YES")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = castVote(t, app, app.alice, p.ID, "NO")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "GOV_002", decodeErrorCode(t, resp))
}

func TestVote_AfterCloseTalliesWithoutTransition(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := submitProposal(t, app, app.alice, targetPrincipal, "create_event",
		[]byte(`{"name":"closed vote","date":"2026-12-01"}`))

	resp := castVote(t, app, app.alice, p.ID, "YES")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	require.Equal(t, "ACCEPTED", getProposal(t, app, p.ID).State)

	// A late NO above the threshold still lands in the tally but the
	// outcome is already fixed.
	resp = castVote(t, app, app.bob, p.ID, "NO")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var late proposalView
	decodeData(t, resp, &late)
	assert.Equal(t, "ACCEPTED", late.State)
	assert.Equal(t, uint64(500), late.VotesNo)
	assert.Len(t, late.Voters, 2)
}

func TestVote_WithoutLedgerAccountRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := submitProposal(t, app, app.alice, targetPrincipal, "create_event",
		[]byte(`{"name":"no account","date":"2027-01-15"}`))

	// The governor is a registered member but holds no tokens.
	resp := castVote(t, app, app.governor, p.ID, "YES")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "LED_002", decodeErrorCode(t, resp))
}

func TestAdminParams_SelfApplied(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	governorToken := login(t, app, app.governor)
	resp := authedRequest(t, app, governorToken, http.MethodPatch, "/api/v1/admin/params",
		`{"proposal_submission_deposit":10000}`)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	paramsResp, err := http.Get(app.server.URL + "/api/v1/params")
	require.NoError(t, err)
	var params struct {
		TransferFee               uint64 `json:"transfer_fee"`
		ProposalSubmissionDeposit uint64 `json:"proposal_submission_deposit"`
	}
	decodeData(t, paramsResp, &params)
	assert.Equal(t, uint64(10000), params.ProposalSubmissionDeposit)
	assert.Equal(t, uint64(1), params.TransferFee)

	// Nobody can afford the new deposit, so submissions bounce.
	body, err := json.Marshal(struct {
		Target string `json:"target"`
		Method string `json:"method"`
	}{Target: targetPrincipal, Method: "create_event"})
	require.NoError(t, err)
	submitResp := signedRequest(t, app, app.alice, http.MethodPost, "/api/v1/proposals", string(body))
	assert.Equal(t, http.StatusPaymentRequired, submitResp.StatusCode)
	assert.Equal(t, "LED_001", decodeErrorCode(t, submitResp))
}

func TestAdminParams_ForeignCallerSilentlyIgnored(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceToken := login(t, app, app.alice)
	resp := authedRequest(t, app, aliceToken, http.MethodPatch, "/api/v1/admin/params",
		`{"transfer_fee":50}`)
	resp.Body.Close()
	// Same 204 as the privileged path, so callers cannot probe for it.
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	paramsResp, err := http.Get(app.server.URL + "/api/v1/params")
	require.NoError(t, err)
	var params struct {
		TransferFee uint64 `json:"transfer_fee"`
	}
	decodeData(t, paramsResp, &params)
	assert.Equal(t, uint64(1), params.TransferFee)
}

func TestAdminOverride_Semantics(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := submitProposal(t, app, app.alice, targetPrincipal, "create_event",
		[]byte(`{"name":"override me","date":"2027-02-02"}`))

	governorToken := login(t, app, app.governor)
	aliceToken := login(t, app, app.alice)

	// A foreign caller is dropped silently: same 204, nothing changes.
	resp := authedRequest(t, app, aliceToken, http.MethodPut,
		fmt.Sprintf("/api/v1/admin/proposals/%d/state", p.ID), `{"state":"ACCEPTED"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "OPEN", getProposal(t, app, p.ID).State)

	// Unknown proposal ids are a silent no-op as well.
	resp = authedRequest(t, app, governorToken, http.MethodPut,
		"/api/v1/admin/proposals/999/state", `{"state":"FAILED","reason":"operator veto"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The engine's own principal can force a legal transition.
	resp = authedRequest(t, app, governorToken, http.MethodPut,
		fmt.Sprintf("/api/v1/admin/proposals/%d/state", p.ID), `{"state":"ACCEPTED"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "ACCEPTED", getProposal(t, app, p.ID).State)

	// But not an illegal one.
	resp = authedRequest(t, app, governorToken, http.MethodPut,
		fmt.Sprintf("/api/v1/admin/proposals/%d/state", p.ID), `{"state":"OPEN"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "GOV_003", decodeErrorCode(t, resp))
	assert.Equal(t, "ACCEPTED", getProposal(t, app, p.ID).State)
}

func TestAdminMembers_SelfOnly(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	newMember := `{"principal":"member-gamma","username":"carol","password":"CarolPass123!"}`

	aliceToken := login(t, app, app.alice)
	resp := authedRequest(t, app, aliceToken, http.MethodPost, "/api/v1/admin/members", newMember)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "AUTH_005", decodeErrorCode(t, resp))

	governorToken := login(t, app, app.governor)
	resp = authedRequest(t, app, governorToken, http.MethodPost, "/api/v1/admin/members", newMember)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Principal string `json:"principal"`
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
	}
	decodeData(t, resp, &created)
	assert.Equal(t, "member-gamma", created.Principal)
	assert.NotEmpty(t, created.AccessKey)
	assert.NotEmpty(t, created.SecretKey)

	// Principals are enrolled at most once.
	resp = authedRequest(t, app, governorToken, http.MethodPost, "/api/v1/admin/members", newMember)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminExport_CSV(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := submitProposal(t, app, app.alice, targetPrincipal, "create_event",
		[]byte(`{"name":"export me","date":"2027-03-03"}`))

	governorToken := login(t, app, app.governor)
	resp := authedRequest(t, app, governorToken, http.MethodGet, "/api/v1/admin/proposals/export", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "id,submitted_at,proposer,target,method,state,votes_yes,votes_no,voters,failure_reason", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], fmt.Sprintf("%d,", p.ID))
	assert.Contains(t, lines[1], "create_event")
}
