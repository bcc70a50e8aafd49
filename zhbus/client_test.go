package zhbus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient starts a fake upstream and returns a client pointed at it.
func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv
}

func TestGetStationList_Example(t *testing.T) {
	var gotPath, gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"id":"s1","name":"Central"},{"id":"s2","name":"North"}]`))
	})

	list, err := c.GetStationList(context.Background(), "12")
	if err != nil {
		t.Fatalf("GetStationList: %v", err)
	}
	if gotPath != EndpointStationList {
		t.Errorf("path = %q, want %q", gotPath, EndpointStationList)
	}
	if gotQuery != "id=12" {
		t.Errorf("query = %q, want id=12", gotQuery)
	}
	if list.LineID != "12" {
		t.Errorf("LineID = %q, want 12", list.LineID)
	}
	if len(list.Stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(list.Stations))
	}
	want := []Station{{ID: "s1", Name: "Central", Order: 1}, {ID: "s2", Name: "North", Order: 2}}
	for i, s := range list.Stations {
		if s.ID != want[i].ID || s.Name != want[i].Name || s.Order != want[i].Order {
			t.Errorf("station %d = %+v, want %+v", i, s, want[i])
		}
	}
}

func TestGetStationList_PreservesOrder(t *testing.T) {
	ids := []string{"z", "a", "m", "b", "y", "c"}
	body := "["
	for i, id := range ids {
		if i > 0 {
			body += ","
		}
		body += `{"Id":"` + id + `","Name":"stop-` + id + `"}`
	}
	body += "]"

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})
	list, err := c.GetStationList(context.Background(), "7")
	if err != nil {
		t.Fatalf("GetStationList: %v", err)
	}
	if len(list.Stations) != len(ids) {
		t.Fatalf("expected %d stations, got %d", len(ids), len(list.Stations))
	}
	for i, id := range ids {
		if list.Stations[i].ID != id {
			t.Errorf("position %d: got %q, want %q", i, list.Stations[i].ID, id)
		}
	}
}

func TestGetStationList_LiteralLineID(t *testing.T) {
	tests := []string{"12", "0001", "abc-9", "线路3"}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			var calls int32
			var got string
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				got = r.URL.Query().Get("id")
				_, _ = w.Write([]byte(`[]`))
			})
			if _, err := c.GetStationList(context.Background(), id); err != nil {
				t.Fatalf("GetStationList: %v", err)
			}
			if calls != 1 {
				t.Errorf("expected exactly 1 request, got %d", calls)
			}
			if got != id {
				t.Errorf("id param = %q, want %q", got, id)
			}
		})
	}
}

func TestGetLineDetailByName_KeyRoundTrip(t *testing.T) {
	names := []string{"3", "3路", "K1 快线", "a&b=c", "100%+", "东/西"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			var q url.Values
			var path string
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				q, path = r.URL.Query(), r.URL.Path
				_, _ = w.Write([]byte(`{"flag":1002,"data":[]}`))
			})
			if _, err := c.GetLineDetailByName(context.Background(), name); err != nil {
				t.Fatalf("GetLineDetailByName: %v", err)
			}
			if path != EndpointBusQuery {
				t.Errorf("path = %q, want %q", path, EndpointBusQuery)
			}
			if got := q.Get("handlerName"); got != "GetLineListByLineName" {
				t.Errorf("handlerName = %q", got)
			}
			if got := q.Get("key"); got != name {
				t.Errorf("key = %q, want %q", got, name)
			}
		})
	}
}

func TestGetLineDetailByName_Matches(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		count int
	}{
		{"none", `{"flag":1002,"data":[]}`, 0},
		{"null data", `{"flag":1002,"data":null}`, 0},
		{"one", `{"flag":1002,"data":[{"Id":"a1","LineNumber":"3","FromStation":"拱北","ToStation":"香洲"}]}`, 1},
		{"many", `[{"id":1,"name":"3"},{"id":2,"name":"3"}]`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			lines, err := c.GetLineDetailByName(context.Background(), "3")
			if err != nil {
				t.Fatalf("GetLineDetailByName: %v", err)
			}
			if len(lines) != tt.count {
				t.Errorf("expected %d lines, got %d", tt.count, len(lines))
			}
		})
	}
}

func TestGetRealTimeStatus_QueryAndNoCaching(t *testing.T) {
	var calls int32
	var rawQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		rawQuery = r.URL.RawQuery
		if r.URL.Path != EndpointRealTime {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"flag":1002,"data":[{"BusNumber":"粤C12345","CurrentStation":"香洲","LastPosition":"2"}]}`))
	})

	for i := 0; i < 2; i++ {
		st, err := c.GetRealTimeStatus(context.Background(), "3", "拱北")
		if err != nil {
			t.Fatalf("GetRealTimeStatus: %v", err)
		}
		if st.LineName != "3" || st.HeadStation != "拱北" {
			t.Errorf("status references %q/%q", st.LineName, st.HeadStation)
		}
		if len(st.Vehicles) != 1 || st.Vehicles[0].ID != "粤C12345" {
			t.Errorf("unexpected vehicles: %+v", st.Vehicles)
		}
		if st.ReceivedAt.IsZero() {
			t.Error("ReceivedAt should be set")
		}
	}
	if calls != 2 {
		t.Errorf("expected 2 upstream requests, got %d", calls)
	}
	want := "id=3&fromStation=" + url.QueryEscape("拱北")
	if rawQuery != want {
		t.Errorf("query = %q, want %q", rawQuery, want)
	}
}

func TestHTTPStatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	ctx := context.Background()

	calls := map[string]func() error{
		"stations": func() error { _, err := c.GetStationList(ctx, "1"); return err },
		"lines":    func() error { _, err := c.GetLineDetailByName(ctx, "1"); return err },
		"realtime": func() error { _, err := c.GetRealTimeStatus(ctx, "1", "A"); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("expected *QueryError, got %v", err)
			}
			if qe.Kind != KindHTTPStatus || qe.StatusCode != 500 {
				t.Errorf("got kind %v status %d, want http status 500", qe.Kind, qe.StatusCode)
			}
			if !errors.Is(err, ErrHTTPStatus) || errors.Is(err, ErrDecode) || errors.Is(err, ErrNetwork) {
				t.Errorf("errors.Is classification wrong for %v", err)
			}
		})
	}
}

func TestDecodeError(t *testing.T) {
	bodies := map[string]string{
		"not json":       `<html>oops</html>`,
		"truncated":      `[{"id":"s1"`,
		"scalar data":    `{"data":"x"}`,
		"missing name":   `[{"id":"s1"}]`,
		"non-object row": `[1,2,3]`,
		"empty body":     ``,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := c.GetStationList(context.Background(), "1")
			if KindOf(err) != KindDecode {
				t.Errorf("expected decode error, got %v", err)
			}
		})
	}
}

func TestCancelledInFlight(t *testing.T) {
	started := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	_, err := c.GetRealTimeStatus(ctx, "3", "A")
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected cancelled error, got %v", err)
	}
}

func TestCancelledBeforeSend(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetStationList(ctx, "1")
	if KindOf(err) != KindCancelled {
		t.Fatalf("expected cancelled error, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no request, got %d", calls)
	}
}

func TestTimeoutIsNetworkError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}, WithTimeout(50*time.Millisecond))

	_, err := c.GetLineDetailByName(context.Background(), "3")
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected *QueryError, got %v", err)
	}
	if qe.Kind != KindNetwork || !qe.Timeout {
		t.Errorf("got kind %v timeout %v, want network timeout", qe.Kind, qe.Timeout)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(base)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.GetStationList(context.Background(), "1")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestEmptyArguments(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	ctx := context.Background()

	if _, err := c.GetStationList(ctx, ""); !errors.Is(err, ErrEmptyArgument) {
		t.Errorf("stations: got %v", err)
	}
	if _, err := c.GetLineDetailByName(ctx, ""); !errors.Is(err, ErrEmptyArgument) {
		t.Errorf("lines: got %v", err)
	}
	if _, err := c.GetRealTimeStatus(ctx, "3", ""); !errors.Is(err, ErrEmptyArgument) {
		t.Errorf("realtime: got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no requests, got %d", calls)
	}
}

func TestRequestHeaders(t *testing.T) {
	var lang, ua, accept string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		lang, ua, accept = r.Header.Get("Accept-Language"), r.Header.Get("User-Agent"), r.Header.Get("Accept")
		_, _ = w.Write([]byte(`[]`))
	}, WithLocale("zh-CN"), WithUserAgent("zhbus-test"))

	if _, err := c.GetStationList(context.Background(), "1"); err != nil {
		t.Fatalf("GetStationList: %v", err)
	}
	if lang != "zh-CN" || ua != "zhbus-test" || accept != "application/json" {
		t.Errorf("headers: lang=%q ua=%q accept=%q", lang, ua, accept)
	}
}

func TestNewClient_BaseURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		wantErr bool
		want    string
	}{
		{"origin", "http://bus.example.com", false, "http://bus.example.com/api/zhbus/StationList/GetStationList?id=1"},
		{"trailing slash", "http://bus.example.com/", false, "http://bus.example.com/api/zhbus/StationList/GetStationList?id=1"},
		{"prefix", "https://proxy.example.com/transit/", false, "https://proxy.example.com/transit/api/zhbus/StationList/GetStationList?id=1"},
		{"no scheme", "bus.example.com", true, ""},
		{"ftp", "ftp://bus.example.com", true, ""},
		{"empty", "", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.base)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.base)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			if got := c.buildURL(EndpointStationList, param{"id", "1"}); got != tt.want {
				t.Errorf("buildURL = %q, want %q", got, tt.want)
			}
		})
	}
}
