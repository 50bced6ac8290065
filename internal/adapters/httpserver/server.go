package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/modaviva/shop/internal/domain"
	"github.com/modaviva/shop/internal/usecase"
)

type Server struct {
	mux    *http.ServeMux
	orders *usecase.OrderUC
	promos *usecase.PromoUC

	adminToken []byte
}

func New(o *usecase.OrderUC, p *usecase.PromoUC) http.Handler {
	s := &Server{mux: http.NewServeMux(), orders: o, promos: p}

	tok := os.Getenv("ADMIN_API_TOKEN")
	if tok == "" {
		tok = "dev-admin-token"
	}
	s.adminToken = []byte(tok)

	s.routes()
	return Chain(s.mux,
		PublicRateLimit(map[string]int{
			"/api/checkout":           10,
			"/api/promocode/validate": 30,
		}),
		RateLimit(120),
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/checkout", s.apiCheckout)
	s.mux.HandleFunc("/api/promocode/validate", s.apiPromoValidate)
	s.mux.HandleFunc("/api/orders/lookup", s.apiOrderLookup)
	s.mux.HandleFunc("/api/orders/my", s.apiMyOrders)

	s.mux.HandleFunc("/admin/orders", s.adminOrders)
	s.mux.HandleFunc("/admin/orders/export", s.adminOrdersExport)
	// PUT /admin/orders/{customOrderId}/status
	s.mux.HandleFunc("/admin/orders/", s.adminOrderStatus)
}

func (s *Server) apiCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	var req struct {
		CustomerDetails usecase.CustomerDetails `json:"customerDetails"`
		Items           []usecase.CheckoutItem  `json:"items"`
		ShippingInfo    usecase.ShippingInfo    `json:"shippingInfo"`
		PromoCode       string                  `json:"promoCode"`
	}
	if err := dec.Decode(&req); err != nil {
		writeError(w, 400, "invalid request body")
		return
	}

	in := usecase.CheckoutInput{
		Customer:  req.CustomerDetails,
		Items:     req.Items,
		Shipping:  req.ShippingInfo,
		PromoCode: req.PromoCode,
		UserID:    sessionUserID(r),
		// Standard checkout: payment capture happens after order creation.
		Payment: domain.PaymentDetails{Method: "Standard Checkout", Status: "Pending Payment"},
	}
	order, err := s.orders.CreateOrder(r.Context(), in)
	if err != nil {
		code, msg := checkoutError(err)
		if code >= 500 {
			log.Error().Err(err).Msg("checkout failed")
		}
		writeError(w, code, msg)
		return
	}
	writeJSON(w, 201, map[string]any{
		"message":    "Order created successfully!",
		"orderId":    order.CustomOrderID,
		"grandTotal": order.GrandTotal,
	})
}

// checkoutError maps the coordinator's error taxonomy onto HTTP codes:
// validation 400, stale catalog state 404/409, conflicts 409, everything
// else a generic retriable 500.
func checkoutError(err error) (int, string) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidLineItem),
		errors.Is(err, domain.ErrInvalidShipping):
		return 400, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return 404, "product data not found for an item in your cart"
	case errors.Is(err, domain.ErrVariantInactive):
		return 409, err.Error()
	case errors.As(err, &stockErr):
		return 409, "an item in your cart is no longer available in the requested quantity"
	case errors.Is(err, domain.ErrDuplicateOrderID):
		return 409, "could not assign an order id, please retry"
	default:
		return 500, "could not create the order, please try again"
	}
}

func (s *Server) apiPromoValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
	var req struct {
		Code      string `json:"code"`
		CartItems []struct {
			ProductID uuid.UUID `json:"productId"`
			Price     float64   `json:"price"`
			Quantity  int       `json:"quantity"`
		} `json:"cartItems"`
	}
	if err := dec.Decode(&req); err != nil || req.Code == "" {
		writeError(w, 400, "promo code and cart items are required")
		return
	}
	lines := make([]usecase.CartLine, 0, len(req.CartItems))
	for _, it := range req.CartItems {
		lines = append(lines, usecase.CartLine{ProductID: it.ProductID, UnitPrice: it.Price, Quantity: it.Quantity})
	}

	res, err := s.promos.Preview(r.Context(), req.Code, lines, sessionUserID(r))
	if err != nil {
		var inel *domain.PromoIneligibleError
		if errors.As(err, &inel) {
			code := 400
			if inel.Reason == domain.PromoNotFound {
				code = 404
			}
			writeError(w, code, inel.Message())
			return
		}
		log.Error().Err(err).Msg("promo validate failed")
		writeError(w, 500, "could not validate the promo code")
		return
	}
	writeJSON(w, 200, map[string]any{
		"id":                res.Promo.ID,
		"code":              res.Promo.Code,
		"description":       res.Promo.Description,
		"discountType":      res.Promo.DiscountType,
		"discountValue":     res.Promo.DiscountValue,
		"minPurchaseAmount": res.Promo.MinPurchaseAmount,
		"maxDiscountAmount": res.Promo.MaxDiscountAmount,
		"discountAmount":    res.Discount.DiscountAmount,
	})
}

func (s *Server) apiOrderLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	q := r.URL.Query()
	orderID := q.Get("orderId")
	email := q.Get("email")
	if orderID == "" || email == "" {
		writeError(w, 400, "order id and email are required for lookup")
		return
	}
	order, err := s.orders.Lookup(r.Context(), orderID, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, 404, "order not found or your identifying information does not match")
			return
		}
		log.Error().Err(err).Msg("order lookup failed")
		writeError(w, 500, "could not look up the order")
		return
	}
	writeJSON(w, 200, order)
}

func (s *Server) apiMyOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	uid := sessionUserID(r)
	if uid == nil {
		writeError(w, 401, "authentication required to view your orders")
		return
	}
	orders, err := s.orders.ListForUser(r.Context(), *uid)
	if err != nil {
		log.Error().Err(err).Msg("list user orders failed")
		writeError(w, 500, "could not list orders")
		return
	}
	writeJSON(w, 200, orders)
}

func (s *Server) adminOrders(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	orders, err := s.orders.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list orders failed")
		writeError(w, 500, "could not list orders")
		return
	}
	writeJSON(w, 200, orders)
}

func (s *Server) adminOrderStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPut {
		http.Error(w, "method", 405)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/admin/orders/")
	customOrderID, ok := strings.CutSuffix(rest, "/status")
	if !ok || customOrderID == "" || strings.Contains(customOrderID, "/") {
		http.NotFound(w, r)
		return
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 2048))
	var req struct {
		Status string `json:"status"`
	}
	if err := dec.Decode(&req); err != nil {
		writeError(w, 400, "invalid request body")
		return
	}
	order, err := s.orders.TransitionStatus(r.Context(), customOrderID, domain.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			writeError(w, 400, "invalid status value")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, 404, "order not found for status update")
		default:
			log.Error().Err(err).Str("order", customOrderID).Msg("status update failed")
			writeError(w, 500, "could not update the order status")
		}
		return
	}
	writeJSON(w, 200, order)
}

func (s *Server) adminOrdersExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	orders, err := s.orders.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("order export failed")
		writeError(w, 500, "could not export orders")
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Orders"
	_ = f.SetSheetName("Sheet1", sheet)
	headers := []string{"Order ID", "Date", "Email", "Status", "Items", "SubTotal", "Discount", "Promo Code", "Shipping", "Grand Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for row, o := range orders {
		units := 0
		for _, it := range o.Items {
			units += it.Quantity
		}
		values := []any{
			o.CustomOrderID,
			o.OrderDate.Format("2006-01-02 15:04"),
			o.Email,
			string(o.Status),
			units,
			o.SubTotal,
			o.DiscountAmount,
			o.Promo.Code,
			o.ShippingCost,
			o.GrandTotal,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=orders.xlsx")
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("write xlsx")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}
