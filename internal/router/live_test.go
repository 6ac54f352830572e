package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v (resp %v)", path, err, resp)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestOrderSocketFollowsMutations(t *testing.T) {
	app := newTestApp(t, false)
	srv := httptest.NewServer(app.e)
	defer srv.Close()

	tok := app.token(t, "alice")
	expect(t, app.do(http.MethodPost, "/orders/", `{"id":"o1","user_id":"alice","status":"created"}`, tok), http.StatusOK)

	conn := dialWS(t, srv, "/ws/orders/o1")
	var snap map[string]any
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatal(err)
	}
	if snap["status"] != "created" || snap["driver_id"] != nil {
		t.Fatalf("first snapshot = %v", snap)
	}

	expect(t, app.do(http.MethodPatch, "/orders/o1/status?status=picked_up", "", tok), http.StatusOK)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatal(err)
	}
	snap = nil
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatal(err)
	}
	if snap["status"] != "picked_up" {
		t.Fatalf("second snapshot = %v", snap)
	}
	app.notify.Wait()
}

func TestDriverSocketReportsNullUntilLocated(t *testing.T) {
	app := newTestApp(t, false)
	srv := httptest.NewServer(app.e)
	defer srv.Close()

	tok := app.token(t, "alice")
	expect(t, app.do(http.MethodPost, "/drivers/", `{"id":"d1","name":"Dan","phone":"555"}`, tok), http.StatusOK)

	conn := dialWS(t, srv, "/ws/drivers/d1/location")
	var snap map[string]any
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatal(err)
	}
	if snap["driver_id"] != "d1" || snap["lat"] != nil || snap["lng"] != nil {
		t.Fatalf("first snapshot = %v", snap)
	}

	expect(t, app.do(http.MethodPost, "/drivers/d1/location", `{"lat":1.5,"lng":-2.25}`, tok), http.StatusOK)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatal(err)
	}
	snap = nil
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatal(err)
	}
	if snap["lat"] != 1.5 || snap["lng"] != -2.25 {
		t.Fatalf("second snapshot = %v", snap)
	}
}

func TestUnknownDriverSocketSendsNulls(t *testing.T) {
	app := newTestApp(t, false)
	srv := httptest.NewServer(app.e)
	defer srv.Close()

	conn := dialWS(t, srv, "/ws/drivers/ghost/location")
	var snap map[string]any
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatal(err)
	}
	if snap["driver_id"] != "ghost" || snap["lat"] != nil {
		t.Fatalf("snapshot = %v", snap)
	}
}

func TestSocketAuthWhenRequired(t *testing.T) {
	app := newTestApp(t, true)
	srv := httptest.NewServer(app.e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/drivers/d1/location"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake to fail without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %v", resp)
	}

	conn := dialWS(t, srv, "/ws/drivers/d1/location?token="+app.token(t, "alice"))
	var snap map[string]any
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatal(err)
	}
	if snap["driver_id"] != "d1" {
		t.Fatalf("snapshot = %v", snap)
	}
}
