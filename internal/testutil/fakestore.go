package testutil

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const defaultStorePageSize = 10

// Collections served by FakeStore.
var Collections = []string{"authors", "books", "users", "reviews", "bookAuthors", "userBooks"}

type row = map[string]any

// FakeStore is an in-memory imitation of a json-server resource store. It
// supports CRUD on every collection, equality filters, q full-text search,
// _sort/_order, _limit/_page with Link and X-Total-Count headers and
// _expand of a parent record.
type FakeStore struct {
	*httptest.Server

	mu       sync.Mutex
	data     map[string][]row
	requests []string
	failures []failure
}

type failure struct {
	method string
	prefix string
	status int
}

func NewFakeStore() *FakeStore {
	s := &FakeStore{data: make(map[string][]row)}
	for _, c := range Collections {
		s.data[c] = nil
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Seed stores records in collection. Records are JSON-encoded, so entity
// structs and plain maps both work. Records without an id are assigned one.
func (s *FakeStore) Seed(collection string, records ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			panic(err)
		}
		r := row{}
		if err := json.Unmarshal(raw, &r); err != nil {
			panic(err)
		}
		s.insert(collection, r)
	}
}

// Rows returns a copy of the records currently in collection.
func (s *FakeStore) Rows(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.data[collection]))
	for _, r := range s.data[collection] {
		out = append(out, copyRow(r))
	}
	return out
}

// FailWith makes every request whose method matches and whose path starts
// with prefix answer with status. An empty method matches any method.
func (s *FakeStore) FailWith(method, prefix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, prefix: prefix, status: status})
}

// Requests returns every request received so far as "METHOD /path?query".
func (s *FakeStore) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many requests matched method and started with prefix.
func (s *FakeStore) Count(method, prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		m, target, _ := strings.Cut(r, " ")
		if m == method && strings.HasPrefix(target, prefix) {
			n++
		}
	}
	return n
}

func (s *FakeStore) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, r.Method+" "+r.URL.RequestURI())
	for _, f := range s.failures {
		if (f.method == "" || f.method == r.Method) && strings.HasPrefix(r.URL.Path, f.prefix) {
			http.Error(w, http.StatusText(f.status), f.status)
			return
		}
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	rows, ok := s.data[parts[0]]
	if !ok || len(parts) > 2 {
		writeJSON(w, http.StatusNotFound, row{})
		return
	}
	collection := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.list(w, r, collection, rows)
		case http.MethodPost:
			in := row{}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				writeJSON(w, http.StatusBadRequest, row{"error": err.Error()})
				return
			}
			delete(in, "id")
			writeJSON(w, http.StatusCreated, copyRow(s.insert(collection, in)))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idx := indexOf(rows, parts[1])
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, row{})
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.expand(copyRow(rows[idx]), r.URL.Query()["_expand"]))
	case http.MethodPatch, http.MethodPut:
		in := row{}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, row{"error": err.Error()})
			return
		}
		delete(in, "id")
		for k, v := range in {
			rows[idx][k] = v
		}
		writeJSON(w, http.StatusOK, copyRow(rows[idx]))
	case http.MethodDelete:
		s.data[collection] = append(rows[:idx:idx], rows[idx+1:]...)
		writeJSON(w, http.StatusOK, row{})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *FakeStore) list(w http.ResponseWriter, r *http.Request, collection string, rows []row) {
	query := r.URL.Query()
	matched := make([]row, 0, len(rows))
	for _, rec := range rows {
		if matches(rec, query) {
			matched = append(matched, rec)
		}
	}

	if field := query.Get("_sort"); field != "" {
		desc := strings.EqualFold(query.Get("_order"), "desc")
		sort.SliceStable(matched, func(i, j int) bool {
			if desc {
				return less(matched[j][field], matched[i][field])
			}
			return less(matched[i][field], matched[j][field])
		})
	}

	total := len(matched)
	limit, hasLimit := intParam(query, "_limit")
	page, hasPage := intParam(query, "_page")
	switch {
	case hasPage:
		if !hasLimit || limit <= 0 {
			limit = defaultStorePageSize
		}
		if page < 1 {
			page = 1
		}
		start := min((page-1)*limit, total)
		end := min(start+limit, total)
		matched = matched[start:end]
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		if link := linkHeader(r, page, limit, total); link != "" {
			w.Header().Set("Link", link)
		}
	case hasLimit && limit >= 0:
		matched = matched[:min(limit, total)]
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
	}

	out := make([]row, 0, len(matched))
	for _, rec := range matched {
		out = append(out, s.expand(copyRow(rec), query["_expand"]))
	}
	writeJSON(w, http.StatusOK, out)
}

// expand embeds the parent record named by each entry of parents, so
// _expand=book on a userBooks row adds "book" looked up by "bookId".
func (s *FakeStore) expand(rec row, parents []string) row {
	for _, parent := range parents {
		id, ok := rec[parent+"Id"]
		if !ok {
			continue
		}
		rows := s.data[parent+"s"]
		if idx := indexOf(rows, formatValue(id)); idx >= 0 {
			rec[parent] = copyRow(rows[idx])
		}
	}
	return rec
}

func (s *FakeStore) insert(collection string, r row) row {
	if _, ok := r["id"]; !ok {
		next := 1
		for _, existing := range s.data[collection] {
			if n, err := strconv.Atoi(formatValue(existing["id"])); err == nil && n >= next {
				next = n + 1
			}
		}
		r["id"] = float64(next)
	}
	s.data[collection] = append(s.data[collection], r)
	return r
}

func matches(rec row, query url.Values) bool {
	for key, values := range query {
		if strings.HasPrefix(key, "_") {
			continue
		}
		if key == "q" {
			if !containsText(rec, values[0]) {
				return false
			}
			continue
		}
		v, ok := rec[key]
		if !ok {
			return false
		}
		found := false
		for _, want := range values {
			if formatValue(v) == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsText(rec row, q string) bool {
	q = strings.ToLower(q)
	for _, v := range rec {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

func less(a, b any) bool {
	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	if aNum && bNum {
		return af < bf
	}
	return formatValue(a) < formatValue(b)
}

func linkHeader(r *http.Request, page, limit, total int) string {
	last := int(math.Ceil(float64(total) / float64(limit)))
	if last < 1 {
		last = 1
	}
	pageURL := func(p int) string {
		q := r.URL.Query()
		q.Set("_page", strconv.Itoa(p))
		q.Set("_limit", strconv.Itoa(limit))
		return fmt.Sprintf("<http://%s%s?%s>", r.Host, r.URL.Path, q.Encode())
	}

	links := []string{pageURL(1) + `; rel="first"`}
	if page > 1 {
		links = append(links, pageURL(page-1)+`; rel="prev"`)
	}
	if page < last {
		links = append(links, pageURL(page+1)+`; rel="next"`)
	}
	links = append(links, pageURL(last)+`; rel="last"`)
	return strings.Join(links, ", ")
}

func intParam(q url.Values, key string) (int, bool) {
	raw := q.Get(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func indexOf(rows []row, id string) int {
	for i, r := range rows {
		if formatValue(r["id"]) == id {
			return i
		}
	}
	return -1
}

func formatValue(v any) string {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func copyRow(r row) row {
	out := make(row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
