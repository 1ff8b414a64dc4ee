package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", WithHTTPClient(srv.Client()))
}

func TestClient_Do_AuthorizationOnlyWithToken(t *testing.T) {
	var got []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get("Accept") != "application/json" {
			t.Fatalf("unexpected default headers: %v", r.Header)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatalf("expected X-Request-ID header")
		}
		_, _ = w.Write([]byte(`{}`))
	})

	if err := c.Do(context.Background(), "/health", Request{}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Do(context.Background(), "/auth/me", Request{Token: "abc"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 || got[0] != "" || got[1] != "Bearer abc" {
		t.Fatalf("unexpected Authorization headers: %q", got)
	}
}

func TestClient_Do_JoinsBaseURLAndEndpoint(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	var out map[string]string
	if err := c.Do(context.Background(), "/health", Request{}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/api/health" {
		t.Fatalf("expected /api/health, got %s", path)
	}
	if out["status"] != "healthy" {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestClient_Do_CallerHeadersOverrideDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/plain" {
			t.Fatalf("expected overridden Accept, got %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.Do(context.Background(), "/x", Request{Headers: http.Header{"Accept": {"text/plain"}}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_EncodesJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("invalid json body: %v", err)
		}
		if body["username"] != "user" || body["password"] != "user123" {
			t.Fatalf("unexpected body: %+v", body)
		}
		_, _ = w.Write([]byte(`{"message":"Login successful","user":{"id":3,"username":"user","role":"end_user"},"token":"tok"}`))
	})

	res, err := c.Login(context.Background(), "user", "user123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token != "tok" || res.User == nil || res.User.Role != domain.RoleEndUser {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestClient_Do_ErrorTranslation(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
		target  error
	}{
		{"unauthorized", http.StatusUnauthorized, "", "Authentication failed. Please log in again.", domain.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, "", "Access denied. You do not have permission to perform this action.", domain.ErrForbidden},
		{"not found", http.StatusNotFound, "<h1>Not Found</h1>", "API endpoint not found: /missing", domain.ErrNotFound},
		{"server", http.StatusInternalServerError, "", "Internal server error. Please try again later.", domain.ErrServer},
		{"other", http.StatusTeapot, "", "Request failed with status 418", nil},
		{"backend message wins", http.StatusBadRequest, `{"error":"Missing required fields"}`, "Missing required fields", nil},
		{"backend message on 401", http.StatusUnauthorized, `{"error":"Token has expired"}`, "Token has expired", domain.ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			out := map[string]any{}
			err := c.Do(context.Background(), "/missing", Request{}, &out)

			var httpErr *domain.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected *domain.HTTPError, got %T (%v)", err, err)
			}
			if httpErr.Status != tc.status || httpErr.Message != tc.message || httpErr.Endpoint != "/missing" {
				t.Fatalf("unexpected error: %+v", httpErr)
			}
			if tc.target != nil && !errors.Is(err, tc.target) {
				t.Fatalf("expected errors.Is(%v)", tc.target)
			}
			if len(out) != 0 {
				t.Fatalf("expected no data on failure, got %+v", out)
			}
		})
	}
}

func TestClient_Do_NetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	c := New("http://helpdesk.invalid/api", WithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, cause
	})))

	err := c.Do(context.Background(), "/tickets", Request{Token: "t"}, nil)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved")
	}
	if err.Error() != "Unable to connect to the help desk server. Please check your connection." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestClient_Do_RawMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"database":"sqlite","tables":{"users":3}}`))
	})

	raw, err := c.DatabaseInfo(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"database":"sqlite","tables":{"users":3}}` {
		t.Fatalf("unexpected raw body: %s", raw)
	}
}

func TestClient_TestConnection(t *testing.T) {
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","version":"1.0.0"}`))
	})
	if !ok.TestConnection(context.Background()) {
		t.Fatalf("expected healthy backend to pass")
	}

	failing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if failing.TestConnection(context.Background()) {
		t.Fatalf("expected 503 to fail")
	}

	unreachable := New("http://helpdesk.invalid/api", WithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial failed")
	})))
	if unreachable.TestConnection(context.Background()) {
		t.Fatalf("expected transport failure to fail")
	}
}

func TestClient_ListTickets_QueryOnlyNonZero(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"tickets":[{"id":1,"subject":"VPN","status":"open","created_at":"2024-05-01T10:00:00.123456"}],"total_count":1,"limit":20,"offset":0,"has_more":false}`))
	})

	page, err := c.ListTickets(context.Background(), "tok", ports.TicketFilter{Status: "open", Limit: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query != "limit=20&status=open" {
		t.Fatalf("unexpected query: %q", query)
	}
	if page.TotalCount != 1 || len(page.Tickets) != 1 || page.Tickets[0].Status != domain.StatusOpen {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Tickets[0].CreatedAt.IsZero() {
		t.Fatalf("expected naive timestamp to decode")
	}

	if _, err := c.ListTickets(context.Background(), "tok", ports.TicketFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query != "" {
		t.Fatalf("expected empty query for zero filter, got %q", query)
	}
}

func TestClient_UploadAttachment_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tickets/7/attachments" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary=") {
			t.Fatalf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		f, fh, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file field: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if fh.Filename != "log.txt" || string(data) != "boom" {
			t.Fatalf("unexpected upload: %s %q", fh.Filename, data)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"File uploaded successfully","attachment":{"id":9,"filename":"log.txt","file_size":4}}`))
	})

	att, err := c.UploadAttachment(context.Background(), "tok", 7, "log.txt", strings.NewReader("boom"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.ID != 9 || att.FileSize != 4 {
		t.Fatalf("unexpected attachment: %+v", att)
	}
}

func TestClient_DownloadAttachment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/attachments/4/download" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("payload"))
	})

	var buf bytes.Buffer
	n, err := c.DownloadAttachment(context.Background(), "tok", 4, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 || buf.String() != "payload" {
		t.Fatalf("unexpected download: %d %q", n, buf.String())
	}
}

func TestClient_AssignTicket_NullClearsAssignee(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"assigned_to_id":null}` {
			t.Fatalf("unexpected body: %s", body)
		}
		_, _ = w.Write([]byte(`{"ticket":{"id":2,"status":"open"}}`))
	})

	ticket, err := c.AssignTicket(context.Background(), "tok", 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.ID != 2 || ticket.AssignedToID != nil {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}
}

func TestClient_GetTicket_EmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	if _, err := c.GetTicket(context.Background(), "tok", 1); err == nil {
		t.Fatalf("expected error for missing ticket")
	}
}
