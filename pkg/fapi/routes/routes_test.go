package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/quatton/fina/pkg/completion"
	"github.com/quatton/fina/pkg/credstore"
	"github.com/quatton/fina/pkg/db/dbtest"
	"github.com/quatton/fina/pkg/fapi"
	"github.com/quatton/fina/pkg/fapi/services"
	"github.com/quatton/fina/pkg/fapi/services/iam"
	"github.com/quatton/fina/pkg/fapi/services/identity"
	"github.com/quatton/fina/pkg/fapi/services/parser"
	"github.com/quatton/fina/pkg/fapi/services/transactions"
	"github.com/quatton/fina/pkg/fauth"
	"github.com/quatton/fina/pkg/flog"
	"github.com/quatton/fina/pkg/otp"
	"github.com/quatton/fina/pkg/password"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type outbox struct {
	mu   sync.Mutex
	last map[string]string
}

func (o *outbox) Send(_ context.Context, to, _, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		o.last = map[string]string{}
	}
	o.last[to] = body
	return nil
}

func (o *outbox) code(t *testing.T, email string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	const prefix = "Your OTP is "
	body := o.last[email]
	i := strings.Index(body, prefix)
	if i < 0 {
		t.Fatalf("no otp sent to %s", email)
	}
	return body[i+len(prefix) : i+len(prefix)+6]
}

// newCompletionServer answers every chat completion with answer.
func newCompletionServer(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": answer},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAPI(t *testing.T) (humatest.TestAPI, *outbox) {
	t.Helper()

	db := dbtest.NewSQLite(t)
	store := credstore.NewBunStore(db)
	logger := flog.NewQuiet()
	mail := &outbox{}
	tokens := fauth.NewIssuer(testSecret, fauth.DefaultTTL)

	resolver := identity.NewResolver(identity.Deps{
		Store:  store,
		Hasher: password.NewHasher(bcrypt.MinCost),
		OTP:    otp.NewManager(store, mail),
		Tokens: tokens,
		Logger: logger,
	})
	iamSvc := iam.NewIAMService(tokens, logger)
	llm := newCompletionServer(t, `{"content":"new phone","currency":"USD","amount":"500","type":"expense","date":null,"category":"Devices","tags":"Personal","notes":null}`)
	completer := completion.NewOpenAI(completion.Config{BaseURL: llm.URL + "/v1", APIKey: "sk-test", Model: "test-model", HTTPClient: llm.Client()})
	svcs := services.NewServices(resolver, iamSvc, transactions.NewService(db), parser.NewService(completer), logger)

	_, api := humatest.New(t, fapi.Config())
	api.UseMiddleware(iamSvc.Middleware())
	RegisterAPI(api, svcs)
	return api, mail
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return out
}

type tokenBody struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func signup(t *testing.T, api humatest.TestAPI, email, pw string) string {
	t.Helper()
	resp := api.Post("/auth/signup", map[string]any{"email": email, "password": pw})
	if resp.Code != http.StatusOK {
		t.Fatalf("signup %s: status %d body %s", email, resp.Code, resp.Body.String())
	}
	return decode[tokenBody](t, resp.Body.Bytes()).AccessToken
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func TestGeneralRoutes(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Get("/ping")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"healthy"`) {
		t.Fatalf("ping: %d %s", resp.Code, resp.Body.String())
	}

	resp = api.Get("/")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), welcomeMessage) {
		t.Fatalf("index: %d %s", resp.Code, resp.Body.String())
	}
}

func TestSignupAndLogin(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Post("/auth/signup", map[string]any{"email": "a@x.com", "password": "pw1"})
	if resp.Code != http.StatusOK {
		t.Fatalf("signup: status %d body %s", resp.Code, resp.Body.String())
	}
	tok := decode[tokenBody](t, resp.Body.Bytes())
	if tok.TokenType != "bearer" || tok.ExpiresIn != 3600 {
		t.Errorf("unexpected token body %+v", tok)
	}
	claims, err := fauth.NewIssuer(testSecret, fauth.DefaultTTL).Verify(tok.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != "1" {
		t.Errorf("sub = %q, want 1", claims.Subject)
	}

	resp = api.Post("/auth/signup", map[string]any{"email": "a@x.com", "password": "pw2"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup: status %d, want 400", resp.Code)
	}

	resp = api.Post("/auth/login", map[string]any{"email": "a@x.com", "password": "pw1"})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", resp.Code, resp.Body.String())
	}

	resp = api.Post("/auth/login", map[string]any{"email": "a@x.com", "password": "wrong"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d, want 401", resp.Code)
	}

	resp = api.Post("/auth/signup", map[string]any{"email": "not-an-email", "password": "pw"})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("malformed email: status %d, want 422", resp.Code)
	}
}

func TestMe(t *testing.T) {
	api, _ := newTestAPI(t)
	token := signup(t, api, "a@x.com", "pw1")

	resp := api.Get("/auth/me")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me: status %d, want 401", resp.Code)
	}

	resp = api.Get("/auth/me", bearer("garbage"))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("bad token me: status %d, want 401", resp.Code)
	}

	resp = api.Get("/auth/me", bearer(token))
	if resp.Code != http.StatusOK {
		t.Fatalf("me: status %d body %s", resp.Code, resp.Body.String())
	}
	body := decode[struct {
		User struct {
			ID       int64  `json:"id"`
			Email    string `json:"email"`
			Provider string `json:"provider"`
		} `json:"user"`
	}](t, resp.Body.Bytes())
	if body.User.ID != 1 || body.User.Email != "a@x.com" || body.User.Provider != "local" {
		t.Errorf("unexpected user %+v", body.User)
	}
}

func TestOtpFlow(t *testing.T) {
	api, mail := newTestAPI(t)
	signup(t, api, "a@x.com", "pw1")

	resp := api.Post("/auth/password/otp/request", map[string]any{"email": "nobody@x.com"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown email: status %d, want 404", resp.Code)
	}

	resp = api.Post("/auth/password/otp/request", map[string]any{"email": "a@x.com"})
	if resp.Code != http.StatusOK {
		t.Fatalf("otp request: status %d body %s", resp.Code, resp.Body.String())
	}
	code := mail.code(t, "a@x.com")

	verify := map[string]any{"email": "a@x.com", "otp": code, "new_password": "pw2"}
	resp = api.Post("/auth/password/otp/verify", verify)
	if resp.Code != http.StatusOK {
		t.Fatalf("otp verify: status %d body %s", resp.Code, resp.Body.String())
	}

	resp = api.Post("/auth/password/otp/verify", verify)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("reused otp: status %d, want 400", resp.Code)
	}

	resp = api.Post("/auth/login", map[string]any{"email": "a@x.com", "password": "pw2"})
	if resp.Code != http.StatusOK {
		t.Fatalf("login with new password: status %d", resp.Code)
	}
}

func TestOAuthRoutes_UnknownProvider(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Get("/auth/oauth/twitter/start")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("start: status %d, want 404", resp.Code)
	}

	resp = api.Post("/auth/oauth/twitter/callback", map[string]any{"code": "c"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("callback: status %d, want 404", resp.Code)
	}
}

func TestLogout(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Post("/auth/logout")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Logged out") {
		t.Fatalf("logout: %d %s", resp.Code, resp.Body.String())
	}
}

func TestTransactionRoutes(t *testing.T) {
	api, _ := newTestAPI(t)
	alice := signup(t, api, "a@x.com", "pw")
	bob := signup(t, api, "b@x.com", "pw")

	entry := map[string]any{
		"content":  "Lunch",
		"currency": "USD",
		"amount":   12.5,
		"type":     "expense",
		"date":     "2025-02-01",
		"category": "Food",
		"tags":     "work",
	}

	resp := api.Post("/addTransaction", entry)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous add: status %d, want 401", resp.Code)
	}

	resp = api.Post("/addTransaction", bearer(alice), entry)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Transaction added successfully") {
		t.Fatalf("add: %d %s", resp.Code, resp.Body.String())
	}

	bad := map[string]any{"content": "x", "currency": "USD", "amount": 1, "type": "transfer", "category": "c", "tags": ""}
	resp = api.Post("/addTransaction", bearer(alice), bad)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid type: status %d, want 422", resp.Code)
	}

	type listed struct {
		ID     int64   `json:"id"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
	}

	resp = api.Get("/transactions", bearer(alice))
	if resp.Code != http.StatusOK {
		t.Fatalf("list: %d %s", resp.Code, resp.Body.String())
	}
	txs := decode[[]listed](t, resp.Body.Bytes())
	if len(txs) != 1 || txs[0].Amount != 12.5 || txs[0].Date != "2025-02-01" {
		t.Fatalf("unexpected list %+v", txs)
	}
	id := txs[0].ID

	resp = api.Get("/transactions", bearer(bob))
	if got := decode[[]listed](t, resp.Body.Bytes()); len(got) != 0 {
		t.Fatalf("bob sees %d transactions", len(got))
	}

	entry["amount"] = 20.0
	path := fmt.Sprintf("/updateTransaction/%d", id)
	resp = api.Put(path, bearer(bob), entry)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("foreign update: status %d, want 404", resp.Code)
	}
	resp = api.Put(path, bearer(alice), entry)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Transaction updated successfully") {
		t.Fatalf("update: %d %s", resp.Code, resp.Body.String())
	}

	path = fmt.Sprintf("/deleteTransaction/%d", id)
	resp = api.Delete(path, bearer(bob))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: status %d, want 404", resp.Code)
	}
	resp = api.Delete(path, bearer(alice))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Transaction deleted successfully") {
		t.Fatalf("delete: %d %s", resp.Code, resp.Body.String())
	}
	resp = api.Delete(path, bearer(alice))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("second delete: status %d, want 404", resp.Code)
	}
}

func TestGenerate(t *testing.T) {
	api, _ := newTestAPI(t)
	token := signup(t, api, "a@x.com", "pw")

	prompt := map[string]any{"prompt": "new phone for 500USD"}

	resp := api.Post("/generate", prompt)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous generate: status %d, want 401", resp.Code)
	}

	resp = api.Post("/generate", bearer(token), map[string]any{"prompt": ""})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty prompt: status %d, want 422", resp.Code)
	}

	resp = api.Post("/generate", bearer(token), prompt)
	if resp.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", resp.Code, resp.Body.String())
	}
	body := decode[struct {
		Raw         string         `json:"raw"`
		Transaction map[string]any `json:"transaction"`
	}](t, resp.Body.Bytes())
	if body.Transaction["content"] != "new phone" || body.Transaction["category"] != "Devices" {
		t.Errorf("unexpected parsed transaction %+v", body.Transaction)
	}
	if !strings.Contains(body.Raw, `"new phone"`) {
		t.Errorf("raw answer missing: %q", body.Raw)
	}
}
