// Package handler содержит HTTP-обработчики API POS-шлюза.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"puntoventa/internal/backend"
	"puntoventa/internal/cart"
	"puntoventa/internal/catalog"
	"puntoventa/internal/ledger"
	"puntoventa/internal/middleware"
	"puntoventa/internal/model"
	"puntoventa/internal/session"
)

// Backend описывает контракт внешнего POS API, используемый обработчиками.
type Backend interface {
	SalesToday(ctx context.Context, token string) ([]model.Sale, error)
	CashStatus(ctx context.Context, token string) (*model.RegisterStatus, error)
	OpenRegister(ctx context.Context, token string, req backend.OpenRequest) (*model.RegisterStatus, error)
	CloseRegister(ctx context.Context, token string, req backend.CloseRequest) (*model.RegisterStatus, error)
	CashMovements(ctx context.Context, token string) ([]model.CashMovement, error)
	CreateCashMovement(ctx context.Context, token string, req backend.MovementRequest) (*model.CashMovement, error)
	Products(ctx context.Context, token string) ([]model.Product, error)
	CreateProduct(ctx context.Context, token string, req backend.ProductCreate) (*model.Product, error)
	UpdateProduct(ctx context.Context, token, id string, req backend.ProductUpdate) (*model.Product, error)
	CreateVariant(ctx context.Context, token string, req backend.VariantCreate) (*model.Variant, error)
	UpdateVariant(ctx context.Context, token, id string, req backend.VariantUpdate) (*model.Variant, error)
	Clients(ctx context.Context, token, query string) ([]model.Client, error)
	CreateClient(ctx context.Context, token string, req backend.ClientCreate) (*model.Client, error)
	UpdateClient(ctx context.Context, token, id string, req backend.ClientUpdate) (*model.Client, error)
	ProcessSale(ctx context.Context, token string, req model.SaleRequest) (*model.Sale, error)
}

// Handler реализует HTTP-обработчики API POS-шлюза.
type Handler struct {
	api      Backend
	sessions *session.Store
	logger   *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(api Backend, sessions *session.Store, logger *zap.Logger) *Handler {
	return &Handler{
		api:      api,
		sessions: sessions,
		logger:   logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail отвечает в формате ошибок внешнего API: {"detail": ...}.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeBackendError передаёт статус и detail внешнего API дословно либо
// логирует неожиданную ошибку как внутреннюю.
func (h *Handler) writeBackendError(w http.ResponseWriter, err error, op string) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		writeDetail(w, apiErr.Status, apiErr.Detail)
		return
	}
	h.logger.Error(op, zap.Error(err))
	writeDetail(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// operatorKey возвращает ключ сессии оформления: идентификатор оператора,
// а для непрозрачных токенов без claims — сам токен.
func operatorKey(ctx context.Context) string {
	if id, ok := middleware.UserIDFromContext(ctx); ok {
		return id
	}
	token, _ := middleware.TokenFromContext(ctx)
	return token
}

type dashboardResponse struct {
	SalesToday []model.Sale          `json:"ventas_hoy"`
	SalesTotal float64               `json:"total_ventas"`
	CashStatus *model.RegisterStatus `json:"caja,omitempty"`
}

// GetDashboard возвращает сводку дня: сегодняшние продажи и состояние кассы.
// Обе выборки необязательны: сбой одной не валит сводку целиком.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	resp := dashboardResponse{SalesToday: []model.Sale{}}

	sales, err := h.api.SalesToday(r.Context(), token)
	if err != nil {
		h.logger.Warn("dashboard sales fetch failed", zap.Error(err))
	} else {
		resp.SalesToday = sales
		for _, s := range sales {
			resp.SalesTotal += s.Total
		}
	}

	status, err := h.api.CashStatus(r.Context(), token)
	if err != nil {
		h.logger.Warn("dashboard cash status fetch failed", zap.Error(err))
	} else {
		resp.CashStatus = status
	}

	writeJSON(w, http.StatusOK, resp)
}

type cashResponse struct {
	Status           *model.RegisterStatus `json:"caja"`
	Movements        []model.CashMovement  `json:"movimientos"`
	TotalIncome      float64               `json:"total_ingresos"`
	TotalExpense     float64               `json:"total_egresos"`
	EstimatedBalance *float64              `json:"saldo_estimado,omitempty"`
}

// GetCash возвращает состояние кассы, а для открытой смены — движения,
// их суммы и оценочный остаток.
func (h *Handler) GetCash(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	status, err := h.api.CashStatus(r.Context(), token)
	if err != nil {
		h.writeBackendError(w, err, "get cash status error")
		return
	}

	resp := cashResponse{Status: status, Movements: []model.CashMovement{}}

	if status.State == model.RegisterOpen {
		movements, err := h.api.CashMovements(r.Context(), token)
		if err != nil {
			h.writeBackendError(w, err, "get cash movements error")
			return
		}
		resp.Movements = movements
		resp.TotalIncome, resp.TotalExpense = ledger.Totals(movements)

		balance, err := ledger.EstimatedBalance(*status, movements)
		if err == nil {
			resp.EstimatedBalance = &balance
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type openCashRequest struct {
	OpeningAmount float64 `json:"monto_apertura"`
}

// OpenCash открывает кассовую смену от имени текущего оператора.
func (h *Handler) OpenCash(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "usuario no autenticado")
		return
	}
	token, _ := middleware.TokenFromContext(r.Context())

	var req openCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if req.OpeningAmount < 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "el monto de apertura no puede ser negativo")
		return
	}

	status, err := h.api.OpenRegister(r.Context(), token, backend.OpenRequest{
		OpeningAmount: req.OpeningAmount,
		UserID:        userID,
	})
	if err != nil {
		h.writeBackendError(w, err, "open register error")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

type closeCashRequest struct {
	DeclaredCash float64 `json:"monto_real_efectivo"`
	Notes        string  `json:"observaciones"`
	Confirm      bool    `json:"confirmar"`
}

// CloseCash закрывает кассовую смену. Закрытие необратимо, поэтому без
// явного подтверждения оператора запрос отклоняется до любого сетевого
// вызова.
func (h *Handler) CloseCash(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	var req closeCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if !req.Confirm {
		writeDetail(w, http.StatusPreconditionRequired, "el cierre de caja requiere confirmación explícita")
		return
	}

	status, err := h.api.CloseRegister(r.Context(), token, backend.CloseRequest{
		DeclaredCash: req.DeclaredCash,
		Notes:        req.Notes,
	})
	if err != nil {
		h.writeBackendError(w, err, "close register error")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

type movementRequest struct {
	Type        model.MovementType `json:"tipo"`
	Amount      float64            `json:"monto"`
	Description string             `json:"descripcion"`
}

// CreateMovement регистрирует ручное движение наличных. Ввод проверяется
// локально, движение по закрытой кассе отклоняется до сетевого вызова
// записи.
func (h *Handler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	if err := ledger.ValidateMovement(req.Type, req.Amount, req.Description); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	status, err := h.api.CashStatus(r.Context(), token)
	if err != nil {
		h.writeBackendError(w, err, "cash status before movement error")
		return
	}
	if status.State != model.RegisterOpen {
		writeDetail(w, http.StatusConflict, "no hay una caja abierta")
		return
	}

	movement, err := h.api.CreateCashMovement(r.Context(), token, backend.MovementRequest{
		Type:        req.Type,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		h.writeBackendError(w, err, "create movement error")
		return
	}

	writeJSON(w, http.StatusCreated, movement)
}

// GetCart возвращает текущую корзину оператора с итогами.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(operatorKey(r.Context()))
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type scanRequest struct {
	Code string `json:"codigo"`
}

// Scan сопоставляет отсканированный код с каталогом и добавляет вариант
// в корзину оператора.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())
	sess := h.sessions.Get(operatorKey(r.Context()))

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeDetail(w, http.StatusBadRequest, "código vacío")
		return
	}

	products, err := h.api.Products(r.Context(), token)
	if err != nil {
		h.writeBackendError(w, err, "products fetch for scan error")
		return
	}

	_, err = sess.Scan(req.Code, catalog.NewIndex(products))
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			writeDetail(w, http.StatusNotFound, "no se encontró producto con SKU/ID: "+strings.TrimSpace(req.Code))
		case errors.Is(err, cart.ErrOutOfStock):
			writeDetail(w, http.StatusConflict, "producto sin stock disponible")
		case errors.Is(err, cart.ErrStockExceeded):
			writeDetail(w, http.StatusConflict, "stock insuficiente para agregar otra unidad")
		default:
			h.logger.Error("scan error", zap.Error(err), zap.String("code", req.Code))
			writeDetail(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}

	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

// AdjustItem изменяет количество строки корзины на произвольную дельту.
func (h *Handler) AdjustItem(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(operatorKey(r.Context()))
	variantID := chi.URLParam(r, "variantID")

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	if err := sess.Adjust(variantID, req.Delta); err != nil {
		if errors.Is(err, cart.ErrStockExceeded) {
			writeDetail(w, http.StatusConflict, "stock insuficiente")
			return
		}
		h.logger.Error("adjust item error", zap.Error(err), zap.String("variant", variantID))
		writeDetail(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// RemoveItem удаляет строку корзины.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(operatorKey(r.Context()))
	sess.Remove(chi.URLParam(r, "variantID"))
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type selectClientRequest struct {
	ClientID string `json:"cliente_id"`
}

// SelectClient выбирает клиента продажи. Пустой идентификатор означает
// consumidor final.
func (h *Handler) SelectClient(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(operatorKey(r.Context()))

	var req selectClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	sess.SetClient(req.ClientID)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type selectPaymentRequest struct {
	Method model.PaymentMethod `json:"metodo_pago"`
}

// SelectPayment выбирает способ оплаты продажи.
func (h *Handler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(operatorKey(r.Context()))

	var req selectPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if req.Method == "" {
		writeDetail(w, http.StatusBadRequest, "método de pago vacío")
		return
	}

	sess.SetPayment(req.Method)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type checkoutResponse struct {
	Sale *model.Sale  `json:"venta"`
	Cart session.View `json:"carrito"`
}

// Checkout отправляет корзину во внешний API продаж. Принятая продажа
// очищает сессию; отклонённая оставляет её без изменений для повтора.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())
	sess := h.sessions.Get(operatorKey(r.Context()))

	sale, err := sess.Checkout(r.Context(), token, h.api)
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			writeDetail(w, http.StatusBadRequest, "el carrito está vacío")
			return
		}
		h.writeBackendError(w, err, "process sale error")
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{Sale: sale, Cart: sess.Snapshot()})
}

// ClearCart отбрасывает корзину по явной команде оператора.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(operatorKey(r.Context()))
	sess.Clear()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// GetProducts возвращает товары каталога с вложенными вариантами.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	products, err := h.api.Products(r.Context(), token)
	if err != nil {
		h.writeBackendError(w, err, "get products error")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// CreateProduct создаёт товар во внешнем каталоге.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	var req backend.ProductCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "el nombre del producto es obligatorio")
		return
	}

	product, err := h.api.CreateProduct(r.Context(), token, req)
	if err != nil {
		h.writeBackendError(w, err, "create product error")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct частично обновляет товар.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	var req backend.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	product, err := h.api.UpdateProduct(r.Context(), token, chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeBackendError(w, err, "update product error")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateVariant создаёт вариант товара.
func (h *Handler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	var req backend.VariantCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if req.ProductID == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "producto_id es obligatorio")
		return
	}

	variant, err := h.api.CreateVariant(r.Context(), token, req)
	if err != nil {
		h.writeBackendError(w, err, "create variant error")
		return
	}
	writeJSON(w, http.StatusCreated, variant)
}

// UpdateVariant частично обновляет вариант товара.
func (h *Handler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	var req backend.VariantUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	variant, err := h.api.UpdateVariant(r.Context(), token, chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeBackendError(w, err, "update variant error")
		return
	}
	writeJSON(w, http.StatusOK, variant)
}

// GetClients возвращает клиентов, при ?query= — результат поиска.
func (h *Handler) GetClients(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	clients, err := h.api.Clients(r.Context(), token, r.URL.Query().Get("query"))
	if err != nil {
		h.writeBackendError(w, err, "get clients error")
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// CreateClient создаёт клиента.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	var req backend.ClientCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "el nombre del cliente es obligatorio")
		return
	}

	client, err := h.api.CreateClient(r.Context(), token, req)
	if err != nil {
		h.writeBackendError(w, err, "create client error")
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

// UpdateClient частично обновляет клиента.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())

	var req backend.ClientUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	client, err := h.api.UpdateClient(r.Context(), token, chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeBackendError(w, err, "update client error")
		return
	}
	writeJSON(w, http.StatusOK, client)
}
