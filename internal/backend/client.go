// Package backend предоставляет типизированный клиент внешнего POS API
// (продажи, касса, каталог, клиенты).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"puntoventa/internal/model"
)

// Client инкапсулирует HTTP-взаимодействие с внешним POS API.
// Запросы не повторяются автоматически: неудачу оператор повторяет вручную.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError переносит ответ внешнего API с кодом вне 2xx или сбой транспорта.
// Поле Detail показывается оператору дословно.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend [%d]: %s", e.Status, e.Detail)
}

// NewClient создаёт HTTP-клиент для обращения к POS API по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// OpenRequest — тело POST /caja/apertura.
type OpenRequest struct {
	OpeningAmount float64 `json:"monto_apertura"`
	UserID        string  `json:"usuario_id"`
}

// CloseRequest — тело POST /caja/cierre.
type CloseRequest struct {
	DeclaredCash float64 `json:"monto_real_efectivo"`
	Notes        string  `json:"observaciones,omitempty"`
}

// MovementRequest — тело POST /caja/movimiento.
type MovementRequest struct {
	Type        model.MovementType `json:"tipo"`
	Amount      float64            `json:"monto"`
	Description string             `json:"descripcion"`
}

// ProductCreate — тело POST /productos/.
type ProductCreate struct {
	Name        string  `json:"nombre"`
	Description *string `json:"descripcion,omitempty"`
	BrandID     *int64  `json:"marca_id,omitempty"`
}

// ProductUpdate — тело PATCH /productos/{id}; отправляются только заданные поля.
type ProductUpdate struct {
	Name        *string `json:"nombre,omitempty"`
	Description *string `json:"descripcion,omitempty"`
	BrandID     *int64  `json:"marca_id,omitempty"`
}

// VariantCreate — тело POST /productos/variante.
type VariantCreate struct {
	ProductID string   `json:"producto_id"`
	SKU       *string  `json:"sku,omitempty"`
	Size      *string  `json:"talle,omitempty"`
	Color     *string  `json:"color,omitempty"`
	SalePrice float64  `json:"precio_venta"`
	Stock     *int     `json:"stock_actual,omitempty"`
	MinStock  *int     `json:"stock_minimo,omitempty"`
	CostPrice *float64 `json:"precio_costo,omitempty"`
}

// VariantUpdate — тело PATCH /productos/variante/{id}.
type VariantUpdate struct {
	SKU       *string  `json:"sku,omitempty"`
	Size      *string  `json:"talle,omitempty"`
	Color     *string  `json:"color,omitempty"`
	SalePrice *float64 `json:"precio_venta,omitempty"`
	CostPrice *float64 `json:"precio_costo,omitempty"`
	MinStock  *int     `json:"stock_minimo,omitempty"`
}

// ClientCreate — тело POST /clientes/.
type ClientCreate struct {
	Name    string  `json:"nombre"`
	TaxID   *string `json:"dni_cuit,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"telefono,omitempty"`
	Address *string `json:"direccion,omitempty"`
	City    *string `json:"ciudad,omitempty"`
	VATKind *string `json:"tipo_iva,omitempty"`
}

// ClientUpdate — тело PATCH /clientes/{id}.
type ClientUpdate struct {
	Name    *string `json:"nombre,omitempty"`
	TaxID   *string `json:"dni_cuit,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"telefono,omitempty"`
	Address *string `json:"direccion,omitempty"`
	City    *string `json:"ciudad,omitempty"`
	VATKind *string `json:"tipo_iva,omitempty"`
}

// SalesToday возвращает список завершённых за сегодня продаж.
func (c *Client) SalesToday(ctx context.Context, token string) ([]model.Sale, error) {
	var out []model.Sale
	if err := c.do(ctx, token, http.MethodGet, "/ventas/hoy", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CashStatus возвращает текущее состояние кассы.
func (c *Client) CashStatus(ctx context.Context, token string) (*model.RegisterStatus, error) {
	var out model.RegisterStatus
	if err := c.do(ctx, token, http.MethodGet, "/caja/estado", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OpenRegister открывает кассовую смену с указанной суммой и оператором.
func (c *Client) OpenRegister(ctx context.Context, token string, req OpenRequest) (*model.RegisterStatus, error) {
	var out model.RegisterStatus
	if err := c.do(ctx, token, http.MethodPost, "/caja/apertura", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CloseRegister закрывает кассовую смену с объявленной суммой наличных.
func (c *Client) CloseRegister(ctx context.Context, token string, req CloseRequest) (*model.RegisterStatus, error) {
	var out model.RegisterStatus
	if err := c.do(ctx, token, http.MethodPost, "/caja/cierre", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CashMovements возвращает движения по открытой кассе.
func (c *Client) CashMovements(ctx context.Context, token string) ([]model.CashMovement, error) {
	var out []model.CashMovement
	if err := c.do(ctx, token, http.MethodGet, "/caja/movimientos", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCashMovement регистрирует ручное движение наличных.
func (c *Client) CreateCashMovement(ctx context.Context, token string, req MovementRequest) (*model.CashMovement, error) {
	var out model.CashMovement
	if err := c.do(ctx, token, http.MethodPost, "/caja/movimiento", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Products возвращает товары с вложенными вариантами.
func (c *Client) Products(ctx context.Context, token string) ([]model.Product, error) {
	var out []model.Product
	if err := c.do(ctx, token, http.MethodGet, "/productos/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProduct создаёт товар.
func (c *Client) CreateProduct(ctx context.Context, token string, req ProductCreate) (*model.Product, error) {
	var out model.Product
	if err := c.do(ctx, token, http.MethodPost, "/productos/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct частично обновляет товар.
func (c *Client) UpdateProduct(ctx context.Context, token, id string, req ProductUpdate) (*model.Product, error) {
	var out model.Product
	if err := c.do(ctx, token, http.MethodPatch, "/productos/"+id, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVariant создаёт вариант товара.
func (c *Client) CreateVariant(ctx context.Context, token string, req VariantCreate) (*model.Variant, error) {
	var out model.Variant
	if err := c.do(ctx, token, http.MethodPost, "/productos/variante", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateVariant частично обновляет вариант товара.
func (c *Client) UpdateVariant(ctx context.Context, token, id string, req VariantUpdate) (*model.Variant, error) {
	var out model.Variant
	if err := c.do(ctx, token, http.MethodPatch, "/productos/variante/"+id, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Clients возвращает клиентов, при непустом query — результат поиска.
func (c *Client) Clients(ctx context.Context, token, query string) ([]model.Client, error) {
	var q url.Values
	if query != "" {
		q = url.Values{"query": []string{query}}
	}
	var out []model.Client
	if err := c.do(ctx, token, http.MethodGet, "/clientes/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateClient создаёт клиента.
func (c *Client) CreateClient(ctx context.Context, token string, req ClientCreate) (*model.Client, error) {
	var out model.Client
	if err := c.do(ctx, token, http.MethodPost, "/clientes/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateClient частично обновляет клиента.
func (c *Client) UpdateClient(ctx context.Context, token, id string, req ClientUpdate) (*model.Client, error) {
	var out model.Client
	if err := c.do(ctx, token, http.MethodPatch, "/clientes/"+id, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProcessSale отправляет продажу во внешний API продаж.
func (c *Client) ProcessSale(ctx context.Context, token string, req model.SaleRequest) (*model.Sale, error) {
	var out model.Sale
	if err := c.do(ctx, token, http.MethodPost, "/ventas/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type detailBody struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, body, out any) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("backend client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Status: http.StatusBadGateway, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail := detailBody{}
		_ = json.NewDecoder(resp.Body).Decode(&detail)
		if detail.Detail == "" {
			detail.Detail = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Detail: detail.Detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
