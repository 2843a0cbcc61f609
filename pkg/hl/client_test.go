package hl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientSpotMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if body["type"] != "spotMeta" {
			t.Errorf("wrong info type: %v", body["type"])
		}
		json.NewEncoder(w).Encode(testSpotMeta())
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	meta, err := client.SpotMeta(context.Background())
	if err != nil {
		t.Fatalf("failed to fetch meta: %v", err)
	}
	if len(meta.Tokens) != 3 || len(meta.Universe) != 2 {
		t.Errorf("unexpected meta: %d tokens, %d pairs", len(meta.Tokens), len(meta.Universe))
	}
}

func TestClientBuilderFee(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["type"] != "builderInfo" {
			t.Errorf("wrong info type: %v", body["type"])
		}
		if body["user"] == "" {
			t.Error("missing user")
		}
		w.Write([]byte(`{"builderFee":10}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	fee, err := client.BuilderFee(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("failed to fetch builder fee: %v", err)
	}
	if fee != 10 {
		t.Errorf("got fee %d, want 10", fee)
	}
}

func TestClientExchangeOk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exchange" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"status": "ok",
			"response": {
				"type": "order",
				"data": {"statuses": [{"resting": {"oid": 77}}, {"error": "Insufficient balance"}]}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	resp, err := client.Exchange(context.Background(), ExchangeRequest{Nonce: 1})
	if err != nil {
		t.Fatalf("failed to submit: %v", err)
	}

	statuses := resp.Response.Data.Statuses
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}
	if statuses[0].Resting == nil || statuses[0].Resting.Oid != 77 {
		t.Errorf("wrong resting status: %+v", statuses[0])
	}
	if statuses[1].Error != "Insufficient balance" {
		t.Errorf("wrong error status: %+v", statuses[1])
	}
}

func TestClientExchangeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "err", "response": "User or API Wallet does not exist."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.Exchange(context.Background(), ExchangeRequest{Nonce: 1})
	if err == nil {
		t.Fatal("expected error for err status")
	}
	if !strings.Contains(err.Error(), "User or API Wallet does not exist.") {
		t.Errorf("venue message lost: %v", err)
	}
}

func TestClientStatusErrorMessages(t *testing.T) {
	cases := []struct {
		status int
		want   string
	}{
		{http.StatusUnauthorized, "authentication failed - please reconnect your wallet"},
		{http.StatusForbidden, "authentication failed - please reconnect your wallet"},
		{http.StatusInternalServerError, "server error - please try again later"},
		{http.StatusBadGateway, "server error - please try again later"},
		{http.StatusBadRequest, "unexpected response"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		client := NewClient(srv.URL, nil)
		_, err := client.SpotMeta(context.Background())
		srv.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("status %d: got %q, want substring %q", tc.status, err, tc.want)
		}
	}
}

func TestClientTimeoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client disconnect and
		// cancels the request context; otherwise Close() deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.SpotMeta(ctx)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "request timed out - please try again") {
		t.Errorf("got %q, want timeout message", err)
	}
}

func TestClientNetworkErrorMessage(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", nil)
	_, err := client.SpotMeta(context.Background())
	if err == nil {
		t.Fatal("expected connection error")
	}
	if !strings.Contains(err.Error(), "network error - please check your connection") {
		t.Errorf("got %q, want network error message", err)
	}
}
