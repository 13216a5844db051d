package netboxclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fleetsync/fleetsync/pkg/reconcile"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(Config{BaseURL: srv.URL + "/api/", Token: "testtoken", Retries: 1})
	return c, srv
}

func TestLookupDeviceByNameFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token testtoken" {
			t.Fatalf("missing token header, got %q", got)
		}
		if r.URL.Path != "/api/dcim/devices/" || r.URL.Query().Get("name") != "sw1" {
			t.Fatalf("unexpected request: %s %s", r.URL.Path, r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(listEnvelope{
			Count:   1,
			Results: []json.RawMessage{[]byte(`{"id": 5, "name": "sw1"}`)},
		})
	})

	obj, found, err := c.LookupDeviceByName(context.Background(), "sw1")
	if err != nil || !found {
		t.Fatalf("expected found, got found=%v err=%v", found, err)
	}
	if obj.ID != "5" || obj.Key() != "sw1" {
		t.Fatalf("unexpected object: %+v", obj)
	}
}

func TestLookupDeviceByNameNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(listEnvelope{Count: 0, Results: nil})
	})

	_, found, err := c.LookupDeviceByName(context.Background(), "ghost")
	if err != nil || found {
		t.Fatalf("expected not found, got found=%v err=%v", found, err)
	}
}

func TestCreateSendsJSONBody(t *testing.T) {
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"id": 9, "name": gotBody["name"]})
	})

	obj, err := c.Create(context.Background(), reconcile.KindDevice, map[string]string{"name": "sw2", "site": "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["name"] != "sw2" {
		t.Fatalf("body not sent correctly: %+v", gotBody)
	}
	if obj.ID != "9" {
		t.Fatalf("unexpected object: %+v", obj)
	}
}

func TestGetOrCreateReturnsExistingWithoutPosting(t *testing.T) {
	posted := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posted = true
		}
		json.NewEncoder(w).Encode(listEnvelope{
			Count:   1,
			Results: []json.RawMessage{[]byte(`{"id": 1, "name": "DC1", "slug": "dc1"}`)},
		})
	})

	obj, err := c.GetOrCreate(context.Background(), reconcile.KindSite, "DC1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if posted {
		t.Fatal("expected no create call when object already exists")
	}
	if obj.ID != "1" {
		t.Fatalf("unexpected object: %+v", obj)
	}
}

func TestRetriesOnServerErrorThenSucceeds(t *testing.T) {
	attempts := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"detail":"overloaded"}`))
			return
		}
		json.NewEncoder(w).Encode(listEnvelope{Count: 0, Results: nil})
	})
	c.cfg.RetryDelay = 1

	_, _, err := c.LookupDeviceByName(context.Background(), "sw1")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", attempts)
	}
}

func TestRejectedPayloadIsNotRetried(t *testing.T) {
	attempts := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"name":["already exists"]}`))
	})

	_, err := c.Create(context.Background(), reconcile.KindDevice, map[string]string{"name": "dup"})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected no retry on 4xx, got %d attempts", attempts)
	}
}

func TestBulkCreateDecodesArrayResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body []map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		out := make([]map[string]any, len(body))
		for i, b := range body {
			out[i] = map[string]any{"id": i + 1, "name": b["name"]}
		}
		json.NewEncoder(w).Encode(out)
	})

	objs, err := c.BulkCreate(context.Background(), reconcile.KindInterface, []map[string]string{
		{"name": "Gi0/1"}, {"name": "Gi0/2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objs) != 2 || objs[1].ID != "2" {
		t.Fatalf("unexpected objects: %+v", objs)
	}
}

func TestAssignMACPatchesMacAddress(t *testing.T) {
	var gotBody map[string]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Fatalf("expected PATCH, got %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"id": 3})
	})

	if err := c.AssignMAC(context.Background(), "3", "aa:bb:cc:dd:ee:ff"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["mac_address"] != "aa:bb:cc:dd:ee:ff" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
}

func TestListRemoteAppliesScope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tenant") != "acme" {
			t.Fatalf("expected tenant filter, got %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(listEnvelope{Count: 0, Results: nil})
	})

	_, err := c.ListRemote(context.Background(), reconcile.KindDevice, reconcile.Scope{Tenant: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
