package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"nps-merchant-gateway/internal/service"
)

// fakeGateway stands in for the NPS switch. It checks Basic auth and the
// request signature, then answers with the reply registered for the path.
type fakeGateway struct {
	t        *testing.T
	server   *httptest.Server
	username string
	password string
	secret   string

	mu      sync.Mutex
	replies map[string]fakeReply
	calls   map[string]int
	bodies  map[string]map[string]string
}

type fakeReply struct {
	status int
	body   string
}

// signingOrder lists the body fields each endpoint signs, in order.
var signingOrder = map[string][]string{
	"/GetPaymentInstrumentDetails": {"MerchantId", "MerchantName"},
	"/GetServiceCharge":            {"Amount", "MerchantId", "MerchantName", "InstrumentCode"},
	"/GetProcessId":                {"Amount", "MerchantId", "MerchantName", "MerchantTxnId"},
	"/CheckTransactionStatus":      {"MerchantId", "MerchantName", "MerchantTxnId"},
}

func newFakeGateway(t *testing.T, username, password, secret string) *fakeGateway {
	t.Helper()
	g := &fakeGateway{
		t:        t,
		username: username,
		password: password,
		secret:   secret,
		replies:  make(map[string]fakeReply),
		calls:    make(map[string]int),
		bodies:   make(map[string]map[string]string),
	}
	g.server = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.server.Close)
	return g
}

func (g *fakeGateway) reply(path string, status int, body string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies[path] = fakeReply{status: status, body: body}
}

func (g *fakeGateway) callCount(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[path]
}

func (g *fakeGateway) totalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

func (g *fakeGateway) lastBody(path string) map[string]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bodies[path]
}

func (g *fakeGateway) serve(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.calls[r.URL.Path]++
	reply, ok := g.replies[r.URL.Path]
	g.mu.Unlock()

	user, pass, hasAuth := r.BasicAuth()
	if !hasAuth || user != g.username || pass != g.password {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
		return
	}

	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	g.mu.Lock()
	g.bodies[r.URL.Path] = body
	g.mu.Unlock()

	fields := make([]string, 0, 4)
	for _, name := range signingOrder[r.URL.Path] {
		fields = append(fields, body[name])
	}
	if !service.NewHMACSignatureService().Verify(g.secret, body["Signature"], fields...) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"1","message":"Error","errors":[{"error_code":"S01","error_message":"Invalid signature"}]}`))
		return
	}

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no reply registered"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.status)
	_, _ = w.Write([]byte(reply.body))
}
