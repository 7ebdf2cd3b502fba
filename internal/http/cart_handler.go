package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pending"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct{}

func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CartViewDTO struct {
	Items              []domain.CartLineItem `json:"items"`
	TotalAmount        string                `json:"totalAmount"`
	Loading            bool                  `json:"loading"`
	Error              string                `json:"error,omitempty"`
	Pending            []pending.Ticket      `json:"pending"`
	RecentlyCheckedOut bool                  `json:"recentlyCheckedOut"`
}

type RemovalResponseDTO struct {
	Ticket pending.Ticket `json:"ticket"`
	Cart   CartViewDTO    `json:"cart"`
}

func (h *CartHandler) view(r *http.Request, s *session.Session) CartViewDTO {
	st := s.Store().State()
	items := st.Cart.Items
	if items == nil {
		items = make([]domain.CartLineItem, 0)
	}
	return CartViewDTO{
		Items:              items,
		TotalAmount:        st.Cart.TotalAmount.StringFixed(2),
		Loading:            st.Loading,
		Error:              st.Error,
		Pending:            s.Pending().Pending(),
		RecentlyCheckedOut: s.RecentlyCheckedOut(r.Context()),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	respondJSON(w, http.StatusOK, h.view(r, s))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := s.AddItem(r.Context(), req.ProductID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.view(r, s))
}

// POST /api/v1/cart/reload
func (h *CartHandler) Reload(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	if err := s.Store().Load(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view(r, s))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	ticket, err := s.Pending().RequestRemoval(r.Context(), productID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, RemovalResponseDTO{
		Ticket: ticket,
		Cart:   h.view(r, s),
	})
}

// POST /api/v1/cart/items/{product_id}/undo
func (h *CartHandler) UndoRemoval(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	productID := chi.URLParam(r, "product_id")

	if !s.Pending().Undo(productID) {
		respondError(w, http.StatusConflict, "not_restorable", "removal can no longer be undone")
		return
	}
	respondJSON(w, http.StatusOK, h.view(r, s))
}
