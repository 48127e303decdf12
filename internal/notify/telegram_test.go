package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTelegramGatewaySend(t *testing.T) {
	var gotPath string
	var gotReq sendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(sendMessageResponse{OK: true})
	}))
	defer srv.Close()

	gw := NewTelegramGateway("test-token", srv.URL)
	if err := gw.Send(context.Background(), 42, "your appointment is soon"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Fatalf("request path = %q, want /bottest-token/sendMessage", gotPath)
	}
	if gotReq.ChatID != 42 || gotReq.Text != "your appointment is soon" {
		t.Fatalf("request body = %+v", gotReq)
	}
}

func TestTelegramGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(sendMessageResponse{OK: false, Description: "chat not found"})
	}))
	defer srv.Close()

	gw := NewTelegramGateway("test-token", srv.URL)
	err := gw.Send(context.Background(), 42, "hello")
	if err == nil {
		t.Fatal("Send succeeded on an ok:false response")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("error %q does not carry the API description", err)
	}
}

func TestTelegramGatewayGarbageResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	gw := NewTelegramGateway("test-token", srv.URL)
	if err := gw.Send(context.Background(), 42, "hello"); err == nil {
		t.Fatal("Send succeeded on a non-JSON response")
	}
}
