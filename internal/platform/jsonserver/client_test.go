package jsonserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"bookgraph/internal/apperr"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authors/1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":1,"name":"Ursula K. Le Guin"}`))
		case "/authors/2":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{}`))
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`boom`))
		case "/garbage":
			_, _ = w.Write([]byte(`{not json`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, Options{})
	ctx := context.Background()

	t.Run("decodes body", func(t *testing.T) {
		var got record
		resp, err := client.Get(ctx, "/authors/1", &got)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, record{ID: 1, Name: "Ursula K. Le Guin"}, got)
	})

	t.Run("404 is NotFound", func(t *testing.T) {
		var got record
		_, err := client.Get(ctx, "authors/2", &got)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})

	t.Run("5xx is UpstreamFailure", func(t *testing.T) {
		_, err := client.Get(ctx, "/broken", nil)
		assert.True(t, errors.Is(err, apperr.ErrUpstreamFailure))
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("undecodable body is UpstreamFailure", func(t *testing.T) {
		var got record
		_, err := client.Get(ctx, "/garbage", &got)
		assert.True(t, errors.Is(err, apperr.ErrUpstreamFailure))
	})
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, Options{Timeout: time.Second})
	_, err := client.Get(context.Background(), "/authors/1", &record{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUpstreamFailure))
	assert.False(t, errors.Is(err, apperr.ErrNotFound))
}

func TestClientWrites(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		received = append(received, r.Method+" "+r.URL.Path)
		mu.Unlock()

		switch r.Method {
		case http.MethodPost, http.MethodPatch:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var in map[string]any
			if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&in)) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			in["id"] = 9
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(in)
		case http.MethodDelete:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, Options{})
	ctx := context.Background()

	var created record
	_, err := client.Post(ctx, "/authors", map[string]any{"name": "Octavia Butler"}, &created)
	require.NoError(t, err)
	assert.Equal(t, record{ID: 9, Name: "Octavia Butler"}, created)

	var patched record
	_, err = client.Patch(ctx, "/authors/9", map[string]any{"name": "Octavia E. Butler"}, &patched)
	require.NoError(t, err)
	assert.Equal(t, "Octavia E. Butler", patched.Name)

	_, err = client.Delete(ctx, "/authors/9")
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /authors", "PATCH /authors/9", "DELETE /authors/9"}, received)
}

// Each response echoes the requested page as its total count; interleaved
// calls must each see only their own headers.
func TestClientPaginationIsPerCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("_page"))
		time.Sleep(time.Duration(page%5) * time.Millisecond)
		w.Header().Set("X-Total-Count", strconv.Itoa(page))
		if page%2 == 0 {
			w.Header().Set("Link", fmt.Sprintf(`<http://x/books?_page=%d>; rel="next"`, page+1))
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, Options{RPS: 1000})

	const calls = 40
	var wg sync.WaitGroup
	errs := make(chan error, calls)
	for i := 1; i <= calls; i++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			var out []record
			resp, err := client.Get(context.Background(), fmt.Sprintf("/books?_page=%d", page), &out)
			if err != nil {
				errs <- err
				return
			}
			info, err := resp.Pagination.PageInfo(0, page)
			if err != nil {
				errs <- err
				return
			}
			if info.TotalCount != page || info.HasNextPage != (page%2 == 0) {
				errs <- fmt.Errorf("page %d saw total=%d next=%v", page, info.TotalCount, info.HasNextPage)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestClientAbandonedRequestStillCompletes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(`{"id":1,"name":"a"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got record
	_, err := NewClient(srv.URL, Options{}).Get(ctx, "/authors/1", &got)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)
}

func TestClientPingHonorsDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := NewClient(srv.URL, Options{Timeout: 5 * time.Second}).Ping(ctx, "/authors?_limit=1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUpstreamFailure))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClientEncodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, Options{}).Post(context.Background(), "/authors", map[string]any{"name": make(chan int)}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUpstreamFailure))
	assert.Contains(t, err.Error(), "POST /authors: encode body")
}

func TestClientMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	client := NewClient(srv.URL, Options{Metrics: metrics})

	var out []record
	_, err := client.Get(context.Background(), "/books?_page=1", &out)
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "/books/3", &out)
	require.NoError(t, err)

	assert.Equal(t, float64(2), promtest.ToFloat64(metrics.Requests.WithLabelValues("GET", "books", "200")))
}

func TestResourceOf(t *testing.T) {
	assert.Equal(t, "userBooks", resourceOf("/userBooks/12"))
	assert.Equal(t, "books", resourceOf("/books?_page=1"))
	assert.Equal(t, "authors", resourceOf("authors"))
	assert.Equal(t, "root", resourceOf("/"))
}
