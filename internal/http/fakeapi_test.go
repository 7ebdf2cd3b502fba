package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/mirror"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiLine struct {
	ProductID map[string]any `json:"productId"`
	Quantity  int            `json:"quantity"`
}

// fakeAPI emulates the backend JSON contract for a handful of users.
type fakeAPI struct {
	mu          sync.Mutex
	users       map[string]map[string]any
	carts       map[string][]apiLine
	removed     []string
	added       map[string]int
	checkoutURL string
	confirmOK   bool
	statusSet   map[string]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users: map[string]map[string]any{
			"tok-user":  {"_id": "u1", "name": "Ann", "email": "ann@example.com", "role": "user"},
			"tok-admin": {"_id": "a1", "name": "Root", "email": "root@example.com", "role": "admin"},
		},
		carts:       map[string][]apiLine{},
		added:       map[string]int{},
		checkoutURL: "https://pay.example.com/cs_123",
		confirmOK:   true,
		statusSet:   map[string]string{},
	}
}

func product(id, name string, price float64) map[string]any {
	return map[string]any{"_id": id, "name": name, "price": price, "image": "", "stock": 10}
}

func (f *fakeAPI) userID(r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	u, ok := f.users[token]
	if !ok {
		return "", false
	}
	return u["_id"].(string), true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/products") {
				next.ServeHTTP(w, r)
				return
			}
			f.mu.Lock()
			_, ok := f.userID(r)
			f.mu.Unlock()
			if !ok {
				http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/user", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		writeJSON(w, f.users[token])
	})
	r.Get("/products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{product("p1", "Mug", 10), product("p2", "Tea", 2.5)})
	})
	r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "p1" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, product("p1", "Mug", 10))
	})
	r.Get("/cart", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		uid, _ := f.userID(r)
		items := f.carts[uid]
		if items == nil {
			items = []apiLine{}
		}
		writeJSON(w, map[string]any{"items": items})
	})
	r.Post("/cart", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		uid, _ := f.userID(r)
		f.added[body.ProductID] += body.Quantity
		for i := range f.carts[uid] {
			if f.carts[uid][i].ProductID["_id"] == body.ProductID {
				f.carts[uid][i].Quantity += body.Quantity
				w.WriteHeader(http.StatusCreated)
				return
			}
		}
		f.carts[uid] = append(f.carts[uid], apiLine{ProductID: product(body.ProductID, "Item "+body.ProductID, 4), Quantity: body.Quantity})
		w.WriteHeader(http.StatusCreated)
	})
	r.Delete("/cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		uid, _ := f.userID(r)
		id := chi.URLParam(r, "id")
		f.removed = append(f.removed, id)
		kept := f.carts[uid][:0]
		for _, l := range f.carts[uid] {
			if l.ProductID["_id"] != id {
				kept = append(kept, l)
			}
		}
		f.carts[uid] = kept
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/checkout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, map[string]string{"url": f.checkoutURL})
	})
	r.Post("/checkout/confirm-payment", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.confirmOK {
			writeJSON(w, map[string]any{"success": false})
			return
		}
		writeJSON(w, map[string]any{"success": true, "order": map[string]any{"_id": "o1", "status": "Paid", "totalAmount": 20}})
	})
	r.Get("/orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{map[string]any{"_id": "o1", "status": "Paid"}})
	})
	r.Get("/orders/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{map[string]any{"_id": "o1", "status": "Paid"}, map[string]any{"_id": "o2", "status": "Pending"}})
	})
	r.Put("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.statusSet[chi.URLParam(r, "id")] = body.Status
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func (f *fakeAPI) seed(userID string, lines ...apiLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[userID] = lines
}

func (f *fakeAPI) removals() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

type testEnv struct {
	api      *fakeAPI
	router   http.Handler
	sessions *session.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	sessions := session.NewManager(client, mirror.NewMemory(0), session.Config{
		UndoWindow: time.Hour,
	}, zap.NewNop())
	t.Cleanup(sessions.Close)

	router := NewRouter(client, sessions, RouterConfig{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}, zap.NewNop())
	return &testEnv{api: api, router: router, sessions: sessions}
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
