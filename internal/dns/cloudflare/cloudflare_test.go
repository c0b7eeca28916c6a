package cloudflare

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		APIBase:  server.URL,
		ZoneID:   "zone-1",
		APIToken: "token-1",
	})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return server, client
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{ZoneID: "z"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid without token, got %v", err)
	}
	if _, err := New(Config{APIToken: "t"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid without zone, got %v", err)
	}
}

func TestListRecordsByName(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/zones/zone-1/dns_records") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "foo.domku.my.id" {
			t.Fatalf("unexpected name query %q", got)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer token-1" {
			t.Fatalf("unexpected auth header %q", auth)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"result": []map[string]interface{}{
				{"id": "rec-1", "type": "A", "name": "foo.domku.my.id", "content": "1.2.3.4"},
			},
		})
	})

	records, err := client.ListRecordsByName(context.Background(), "Foo.Domku.My.Id")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "rec-1" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestCreateRecordSendsFixedParams(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body failed: %v", err)
		}
		if body["type"] != "A" || body["name"] != "foo" || body["content"] != "1.2.3.4" {
			t.Fatalf("unexpected body %+v", body)
		}
		if body["ttl"] != float64(1) {
			t.Fatalf("expected ttl 1, got %v", body["ttl"])
		}
		if body["proxied"] != false {
			t.Fatalf("expected proxied false, got %v", body["proxied"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"result":  map[string]interface{}{"id": "rec-9", "type": "A", "name": "foo"},
		})
	})

	record, err := client.CreateRecord(context.Background(), CreateInput{Type: "a", Name: "Foo", Content: "1.2.3.4"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if record.ID != "rec-9" {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestCreateRecordPrivateIPRejected(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"errors": []map[string]interface{}{
				{"code": 9041, "message": "DNS record content is a private IP address"},
			},
		})
	})

	_, err := client.CreateRecord(context.Background(), CreateInput{Type: "A", Name: "foo", Content: "10.0.0.1"})
	if !errors.Is(err, ErrPrivateIPRejected) {
		t.Fatalf("expected ErrPrivateIPRejected, got %v", err)
	}
}

func TestDeleteRecordAPIError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("unexpected method %s", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"errors": []map[string]interface{}{
				{"code": 81044, "message": "Record does not exist"},
			},
		})
	})

	err := client.DeleteRecord(context.Background(), "rec-1")
	if !errors.Is(err, ErrAPIError) {
		t.Fatalf("expected ErrAPIError, got %v", err)
	}
}
