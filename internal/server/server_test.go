package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/cryptopicks/internal/clock"
	"github.com/rickgao/cryptopicks/internal/engine"
	"github.com/rickgao/cryptopicks/internal/model"
	"github.com/rickgao/cryptopicks/internal/session"
)

var epoch = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

// constRand always returns the same draw.
type constRand float64

func (r constRand) Float64() float64 { return float64(r) }

type testEnv struct {
	engine *engine.Engine
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	assets := []model.Asset{
		{ID: 1, Symbol: "BTC", Name: "Bitcoin", Rank: 1, BasePrice: 63250, Line: 63500, IV: 45.5, Volume24h: 28500000000},
		{ID: 2, Symbol: "ETH", Name: "Ethereum", Rank: 2, BasePrice: 3125.50, Line: 3150, IV: 52.3, Volume24h: 15200000000},
	}
	eng, err := engine.New(engine.DefaultConfig(), assets, engine.Options{
		Clock: clock.NewFake(epoch),
		Rand:  constRand(0.75),
	})
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}

	sessions := session.NewManager(eng.Registry(), 0, nil)
	srv := New(DefaultConfig(), eng, sessions, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		eng.Stop(context.Background())
	})
	return &testEnv{engine: eng, server: ts}
}

// do sends a request and decodes a JSON response into out (if non-nil).
func (e *testEnv) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	var sv sessionView
	if code := e.do(t, http.MethodPost, "/sessions", "", &sv); code != http.StatusCreated {
		t.Fatalf("POST /sessions = %d, want 201", code)
	}
	return sv.ID
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	var health struct {
		Status     string         `json:"status"`
		Components map[string]any `json:"components"`
	}
	if code := env.do(t, http.MethodGet, "/health", "", &health); code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", code)
	}
	if health.Status != "degraded" {
		t.Errorf("status = %q, want degraded while the feed is stopped", health.Status)
	}
	if health.Components["assets"] != float64(2) {
		t.Errorf("components.assets = %v, want 2", health.Components["assets"])
	}
}

func TestListAssets(t *testing.T) {
	env := newTestEnv(t)

	var assets []assetView
	if code := env.do(t, http.MethodGet, "/assets", "", &assets); code != http.StatusOK {
		t.Fatalf("GET /assets = %d, want 200", code)
	}
	if len(assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(assets))
	}
	if assets[0].Symbol != "BTC" || assets[1].Symbol != "ETH" {
		t.Errorf("order = [%s %s], want [BTC ETH]", assets[0].Symbol, assets[1].Symbol)
	}
	if assets[0].PriceDisplay != "$63250.00" {
		t.Errorf("PriceDisplay = %q, want $63250.00", assets[0].PriceDisplay)
	}
	if assets[0].VolumeDisplay != "$28.50B" {
		t.Errorf("VolumeDisplay = %q, want $28.50B", assets[0].VolumeDisplay)
	}
	if assets[0].Flash != "" {
		t.Errorf("Flash = %q before any tick, want empty", assets[0].Flash)
	}
}

func TestGetAsset(t *testing.T) {
	env := newTestEnv(t)
	env.engine.Step()

	var a assetView
	if code := env.do(t, http.MethodGet, "/assets/1", "", &a); code != http.StatusOK {
		t.Fatalf("GET /assets/1 = %d, want 200", code)
	}
	if a.Flash != "up" {
		t.Errorf("Flash = %q, want up", a.Flash)
	}
	if a.Odds == nil || a.Odds.AssetID != 1 {
		t.Fatalf("Odds = %+v, want quote for asset 1", a.Odds)
	}
	if a.Odds.Over <= 0 || a.Odds.Over >= 1 {
		t.Errorf("Odds.Over = %v, want in (0, 1)", a.Odds.Over)
	}

	if len(a.Targets) != 6 {
		t.Fatalf("len(Targets) = %d, want 6", len(a.Targets))
	}
	byPred := make(map[string]targetView)
	for _, tv := range a.Targets {
		byPred[tv.Predicate] = tv
	}
	over10 := byPred["Over 10x"]
	if want := a.BasePrice * 1.06; math.Abs(over10.Target-want) > 1e-6 {
		t.Errorf("Over 10x target = %v, want %v", over10.Target, want)
	}
	if !(over10.Probability < byPred["Over 2x"].Probability) {
		t.Errorf("Over 10x probability %v, want below Over 2x %v", over10.Probability, byPred["Over 2x"].Probability)
	}
	if under2 := byPred["Under 2x"]; under2.Target >= a.BasePrice || under2.TargetDisplay == "" {
		t.Errorf("Under 2x = %+v, want a displayed target below %v", under2, a.BasePrice)
	}

	if code := env.do(t, http.MethodGet, "/assets/99", "", nil); code != http.StatusNotFound {
		t.Errorf("GET /assets/99 = %d, want 404", code)
	}
	if code := env.do(t, http.MethodGet, "/assets/btc", "", nil); code != http.StatusBadRequest {
		t.Errorf("GET /assets/btc = %d, want 400", code)
	}
}

func TestFlags(t *testing.T) {
	env := newTestEnv(t)
	env.engine.Step()

	var flags map[string]string
	if code := env.do(t, http.MethodGet, "/flags", "", &flags); code != http.StatusOK {
		t.Fatalf("GET /flags = %d, want 200", code)
	}
	if flags["1"] != "up" || flags["2"] != "up" {
		t.Errorf("flags = %v, want both up", flags)
	}
}

func TestPicksAndPayout(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	base := "/sessions/" + id

	var tv toggleView
	if code := env.do(t, http.MethodPost, base+"/picks", `{"asset_id":1,"predicate":"Over 4x"}`, &tv); code != http.StatusOK {
		t.Fatalf("toggle = %d, want 200", code)
	}
	if tv.Outcome != "added" || !tv.Valid || len(tv.Picks) != 1 {
		t.Errorf("toggle = %+v, want added, valid, 1 pick", tv)
	}
	env.do(t, http.MethodPost, base+"/picks", `{"asset_id":2,"predicate":"Under 10x"}`, &tv)

	var pv payoutView
	if code := env.do(t, http.MethodGet, base+"/payout?stake=5", "", &pv); code != http.StatusOK {
		t.Fatalf("payout = %d, want 200", code)
	}
	if pv.TotalMultiplier != 40 || pv.Payout != 200 || pv.Stake != 5 {
		t.Errorf("payout = %+v, want 5 x40 = 200", pv.PayoutResult)
	}
	if pv.PayoutDisplay != "200.00" || pv.Picks != 2 {
		t.Errorf("payout view = %+v", pv)
	}

	// Session stake is used when the query has none.
	env.do(t, http.MethodGet, base+"/payout", "", &pv)
	if pv.Stake != 10 || pv.Payout != 400 {
		t.Errorf("default-stake payout = %+v, want 10 x40 = 400", pv.PayoutResult)
	}

	for _, bad := range []string{"abc", "0", "-1"} {
		if code := env.do(t, http.MethodGet, base+"/payout?stake="+bad, "", nil); code != http.StatusBadRequest {
			t.Errorf("payout?stake=%s = %d, want 400", bad, code)
		}
	}

	var picks picksView
	env.do(t, http.MethodGet, base+"/picks", "", &picks)
	if len(picks.Picks) != 2 || picks.Picks[0].AssetID != 1 || picks.Picks[1].AssetID != 2 {
		t.Errorf("picks = %+v, want [1 2]", picks.Picks)
	}
}

func TestTogglePick_ReplaceAndDeselect(t *testing.T) {
	env := newTestEnv(t)
	base := "/sessions/" + env.createSession(t)

	var tv toggleView
	env.do(t, http.MethodPost, base+"/picks", `{"asset_id":1,"predicate":"Over 2x"}`, &tv)
	first := tv.Picks[0].EntryPrice

	env.engine.Step()
	env.do(t, http.MethodPost, base+"/picks", `{"asset_id":1,"predicate":"Under 2x"}`, &tv)
	if tv.Outcome != "replaced" || len(tv.Picks) != 1 {
		t.Fatalf("toggle = %+v, want replaced with 1 pick", tv)
	}
	if tv.Picks[0].EntryPrice == first {
		t.Errorf("EntryPrice = %v, want recaptured after the price moved", tv.Picks[0].EntryPrice)
	}

	env.do(t, http.MethodPost, base+"/picks", `{"asset_id":1,"predicate":"Under 2x"}`, &tv)
	if tv.Outcome != "removed" || len(tv.Picks) != 0 {
		t.Errorf("toggle = %+v, want removed with 0 picks", tv)
	}

	env.do(t, http.MethodPost, base+"/picks", `{"asset_id":2,"predicate":"Sideways"}`, &tv)
	if tv.Valid || tv.Picks[0].Multiplier != 1 {
		t.Errorf("lenient toggle = %+v, want invalid predicate at 1x", tv)
	}
}

func TestTogglePick_Errors(t *testing.T) {
	env := newTestEnv(t)
	base := "/sessions/" + env.createSession(t)

	if code := env.do(t, http.MethodPost, base+"/picks", `{"asset_id":99,"predicate":"Over 2x"}`, nil); code != http.StatusNotFound {
		t.Errorf("unknown asset = %d, want 404", code)
	}
	if code := env.do(t, http.MethodPost, base+"/picks", `not json`, nil); code != http.StatusBadRequest {
		t.Errorf("bad body = %d, want 400", code)
	}

	var picks picksView
	env.do(t, http.MethodGet, base+"/picks", "", &picks)
	if len(picks.Picks) != 0 {
		t.Errorf("picks = %+v, want none after failed toggles", picks.Picks)
	}
}

func TestRemovePick(t *testing.T) {
	env := newTestEnv(t)
	base := "/sessions/" + env.createSession(t)

	env.do(t, http.MethodPost, base+"/picks", `{"asset_id":1,"predicate":"Over 2x"}`, nil)
	env.do(t, http.MethodPost, base+"/picks", `{"asset_id":2,"predicate":"Over 2x"}`, nil)

	var picks picksView
	if code := env.do(t, http.MethodDelete, base+"/picks/1", "", &picks); code != http.StatusOK {
		t.Fatalf("DELETE pick = %d, want 200", code)
	}
	if len(picks.Picks) != 1 || picks.Picks[0].AssetID != 2 {
		t.Errorf("picks = %+v, want only ETH", picks.Picks)
	}

	if code := env.do(t, http.MethodDelete, base+"/picks/1", "", nil); code != http.StatusOK {
		t.Errorf("DELETE missing pick = %d, want 200", code)
	}
	if code := env.do(t, http.MethodDelete, base+"/picks/99", "", nil); code != http.StatusNotFound {
		t.Errorf("DELETE unknown asset = %d, want 404", code)
	}
	if code := env.do(t, http.MethodDelete, base+"/picks/x", "", nil); code != http.StatusBadRequest {
		t.Errorf("DELETE bad asset id = %d, want 400", code)
	}
}

func TestSetStake(t *testing.T) {
	env := newTestEnv(t)
	base := "/sessions/" + env.createSession(t)
	env.do(t, http.MethodPost, base+"/picks", `{"asset_id":1,"predicate":"Over 4x"}`, nil)

	var res model.PayoutResult
	if code := env.do(t, http.MethodPut, base+"/stake", `{"stake":"25.50"}`, &res); code != http.StatusOK {
		t.Fatalf("PUT stake = %d, want 200", code)
	}
	if res.Stake != 25.5 || res.Payout != 102 {
		t.Errorf("result = %+v, want 25.5 x4 = 102", res)
	}

	env.do(t, http.MethodPut, base+"/stake", `{"stake":12}`, &res)
	if res.Stake != 12 {
		t.Errorf("numeric stake = %v, want 12", res.Stake)
	}

	for _, body := range []string{`{"stake":"abc"}`, `{"stake":0}`, `{"stake":"-3"}`, `{}`} {
		if code := env.do(t, http.MethodPut, base+"/stake", body, nil); code != http.StatusBadRequest {
			t.Errorf("PUT stake %s = %d, want 400", body, code)
		}
	}

	var picks picksView
	env.do(t, http.MethodGet, base+"/picks", "", &picks)
	if picks.Stake != 12 {
		t.Errorf("stake = %v after rejected updates, want 12", picks.Stake)
	}
}

func TestPayout_OverflowingStakeRejected(t *testing.T) {
	env := newTestEnv(t)
	base := "/sessions/" + env.createSession(t)
	env.do(t, http.MethodPost, base+"/picks", `{"asset_id":1,"predicate":"Over 10x"}`, nil)

	resp, err := http.Get(env.server.URL + base + "/payout?stake=1e308")
	if err != nil {
		t.Fatalf("GET payout: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("GET payout stake=1e308 = %d, want 400", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Errorf("body = %v, want an error message", body)
	}

	if code := env.do(t, http.MethodPut, base+"/stake", `{"stake":"1e308"}`, nil); code != http.StatusBadRequest {
		t.Errorf("PUT stake 1e308 = %d, want 400", code)
	}

	var res model.PayoutResult
	if code := env.do(t, http.MethodGet, base+"/payout?stake=1e12", "", &res); code != http.StatusOK {
		t.Fatalf("GET payout stake=1e12 = %d, want 200", code)
	}
	if res.Payout != 1e13 {
		t.Errorf("payout = %v, want 1e13", res.Payout)
	}
}

func TestSessions_UnknownAndDelete(t *testing.T) {
	env := newTestEnv(t)

	if code := env.do(t, http.MethodGet, "/sessions/nope/picks", "", nil); code != http.StatusNotFound {
		t.Errorf("unknown session = %d, want 404", code)
	}

	id := env.createSession(t)
	if code := env.do(t, http.MethodDelete, "/sessions/"+id, "", nil); code != http.StatusNoContent {
		t.Errorf("DELETE session = %d, want 204", code)
	}
	if code := env.do(t, http.MethodGet, "/sessions/"+id+"/payout", "", nil); code != http.StatusNotFound {
		t.Errorf("deleted session = %d, want 404", code)
	}
	if code := env.do(t, http.MethodDelete, "/sessions/"+id, "", nil); code != http.StatusNotFound {
		t.Errorf("second DELETE = %d, want 404", code)
	}
}

func TestSessions_Isolated(t *testing.T) {
	env := newTestEnv(t)
	a, b := env.createSession(t), env.createSession(t)

	env.do(t, http.MethodPost, "/sessions/"+a+"/picks", `{"asset_id":1,"predicate":"Over 10x"}`, nil)

	var pv payoutView
	env.do(t, http.MethodGet, "/sessions/"+b+"/payout", "", &pv)
	if pv.TotalMultiplier != 1 || pv.Picks != 0 {
		t.Errorf("session b payout = %+v, want untouched", pv)
	}
}

func readStream(t *testing.T, conn *websocket.Conn) streamMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg streamMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read stream message: %v", err)
	}
	return msg
}

func TestStream(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	snap := readStream(t, conn)
	if snap.Type != msgSnapshot || snap.Tick.Seq != 0 || len(snap.Tick.Prices) != 2 {
		t.Errorf("snapshot = %+v, want seq 0 with 2 prices", snap)
	}

	if err := env.engine.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	msg := readStream(t, conn)
	if msg.Type != msgTick || msg.Tick.Seq != 1 {
		t.Fatalf("message = %+v, want tick seq 1", msg)
	}
	if msg.Tick.Prices[0].Flash != "up" || msg.Tick.Prices[0].Symbol != "BTC" {
		t.Errorf("prices[0] = %+v, want BTC flagged up", msg.Tick.Prices[0])
	}

	if err := env.engine.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	var ce *websocket.CloseError
	if !errors.As(err, &ce) || ce.Code != websocket.CloseGoingAway {
		t.Errorf("read after engine stop = %v, want close going away", err)
	}
}

func TestStream_ClientDisconnectUnsubscribes(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	readStream(t, conn)

	if env.engine.Hub().Len() != 1 {
		t.Fatalf("Hub().Len() = %d, want 1", env.engine.Hub().Len())
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.engine.Hub().Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription not released after client disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
