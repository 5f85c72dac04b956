// Package model содержит доменные сущности POS-шлюза.
package model

// PaymentMethod именует способ оплаты так, как его ожидает API продаж.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Efectivo"
	PaymentCard PaymentMethod = "Tarjeta"
	PaymentQR   PaymentMethod = "QR"
)

// DefaultPaymentMethod восстанавливается после каждой принятой продажи.
const DefaultPaymentMethod = PaymentCash

// RegisterState описывает состояние кассовой смены (caja).
type RegisterState string

const (
	RegisterOpen   RegisterState = "abierta"
	RegisterClosed RegisterState = "cerrada"
)

// MovementType описывает направление ручного движения наличных.
type MovementType string

const (
	MovementIncome  MovementType = "ingreso"
	MovementExpense MovementType = "egreso"
)

// Product описывает товар каталога с вложенными вариантами.
// Каталогом владеет внешний API, шлюз его только читает.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"nombre"`
	Description *string   `json:"descripcion,omitempty"`
	BrandID     *int64    `json:"marca_id,omitempty"`
	CreatedAt   string    `json:"created_at,omitempty"`
	Variants    []Variant `json:"variantes"`
}

// Variant описывает конкретную покупаемую единицу товара (уровень SKU).
type Variant struct {
	ID        string  `json:"id"`
	ProductID string  `json:"producto_id"`
	SKU       string  `json:"sku,omitempty"`
	Size      string  `json:"talle,omitempty"`
	Color     string  `json:"color,omitempty"`
	SalePrice float64 `json:"precio_venta"`
	CostPrice float64 `json:"precio_costo,omitempty"`
	Stock     int     `json:"stock_actual"`
	MinStock  int     `json:"stock_minimo,omitempty"`
}

// CatalogVariant — вариант, развёрнутый из дерева товаров для сканирования
// и добавления в корзину.
type CatalogVariant struct {
	VariantID string  `json:"variante_id"`
	ProductID string  `json:"producto_id"`
	Name      string  `json:"nombre"`
	SKU       string  `json:"sku"`
	Size      string  `json:"talle"`
	Color     string  `json:"color"`
	Price     float64 `json:"precio_venta"`
	Stock     int     `json:"stock_actual"`
}

// Client описывает клиента магазина.
type Client struct {
	ID        string `json:"id"`
	Name      string `json:"nombre"`
	TaxID     string `json:"dni_cuit,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"telefono,omitempty"`
	Address   string `json:"direccion,omitempty"`
	City      string `json:"ciudad,omitempty"`
	VATKind   string `json:"tipo_iva,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Sale описывает завершённую продажу, как её возвращает API продаж.
type Sale struct {
	ID            string  `json:"id"`
	Total         float64 `json:"total"`
	PaymentMethod string  `json:"metodo_pago"`
	CreatedAt     string  `json:"created_at"`
}

// RegisterStatus описывает текущее состояние кассы. Переходы состояния
// выполняет только внешний API, шлюз их лишь отражает.
type RegisterStatus struct {
	ID            string        `json:"id"`
	State         RegisterState `json:"estado"`
	OpeningAmount float64       `json:"monto_apertura"`
	OpenedAt      string        `json:"fecha_apertura"`
	DeclaredCash  *float64      `json:"monto_real_efectivo,omitempty"`
}

// CashMovement — ручное движение наличных по открытой кассе.
// Неизменяемо после создания. Выручка от продаж сюда не попадает.
type CashMovement struct {
	ID          string       `json:"id"`
	RegisterID  string       `json:"caja_id"`
	Type        MovementType `json:"tipo"`
	Amount      float64      `json:"monto"`
	Description string       `json:"descripcion"`
	UserID      string       `json:"usuario_id,omitempty"`
	CreatedAt   string       `json:"created_at"`
}

// SaleItem — одна строка отправляемой продажи.
type SaleItem struct {
	VariantID string  `json:"variante_id"`
	Quantity  int     `json:"cantidad"`
	UnitPrice float64 `json:"precio_unitario"`
}

// SaleRequest — тело запроса POST /ventas/. Поле Total считается локально
// и отправляется для перекрёстной проверки: авторитетную сумму считает
// сервер и может отклонить запрос при расхождении.
type SaleRequest struct {
	ClientID      *string    `json:"cliente_id"`
	PaymentMethod string     `json:"metodo_pago"`
	Items         []SaleItem `json:"items"`
	Total         float64    `json:"total"`
}
