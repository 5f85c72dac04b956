// Package cart реализует корзину точки продаж для текущей сессии оформления.
//
// Корзина живёт только в памяти сессии: она очищается после принятой
// продажи или по явной команде и никогда не сохраняется между сессиями.
package cart

import (
	"errors"

	"puntoventa/internal/model"
)

// ErrOutOfStock возвращается при добавлении варианта с нулевым остатком.
var ErrOutOfStock = errors.New("variant out of stock")

// ErrStockExceeded возвращается, когда количество превысило бы потолок остатка.
var ErrStockExceeded = errors.New("stock ceiling exceeded")

// ErrEmptyCart возвращается при попытке оформить пустую корзину.
var ErrEmptyCart = errors.New("cart is empty")

// Line — одна строка корзины для конкретного варианта.
// Цена фиксируется в момент добавления и больше не перечитывается из каталога.
type Line struct {
	VariantID string  `json:"variante_id"`
	ProductID string  `json:"producto_id"`
	Name      string  `json:"nombre"`
	SKU       string  `json:"sku"`
	Size      string  `json:"talle"`
	Color     string  `json:"color"`
	UnitPrice float64 `json:"precio_unitario"`
	Quantity  int     `json:"cantidad"`
	// StockCeiling — остаток варианта в момент создания строки.
	StockCeiling int `json:"stock_maximo"`
}

// Totals содержит производные суммы корзины.
type Totals struct {
	Items  int     `json:"total_items"`
	Amount float64 `json:"total"`
}

// Cart — упорядоченный список строк, уникальных по идентификатору варианта.
type Cart struct {
	lines []Line
}

// New создаёт пустую корзину.
func New() *Cart {
	return &Cart{}
}

// Add добавляет вариант в корзину. Если строка для варианта уже есть,
// её количество увеличивается на единицу в пределах потолка остатка.
// При ошибке корзина остаётся без изменений.
func (c *Cart) Add(v model.CatalogVariant) error {
	for i := range c.lines {
		if c.lines[i].VariantID != v.VariantID {
			continue
		}
		if c.lines[i].Quantity+1 > c.lines[i].StockCeiling {
			return ErrStockExceeded
		}
		c.lines[i].Quantity++
		return nil
	}

	if v.Stock <= 0 {
		return ErrOutOfStock
	}

	c.lines = append(c.lines, Line{
		VariantID:    v.VariantID,
		ProductID:    v.ProductID,
		Name:         v.Name,
		SKU:          v.SKU,
		Size:         v.Size,
		Color:        v.Color,
		UnitPrice:    v.Price,
		Quantity:     1,
		StockCeiling: v.Stock,
	})
	return nil
}

// Adjust изменяет количество строки на signed delta. Итог <= 0 удаляет
// строку целиком, превышение потолка возвращает ErrStockExceeded и
// оставляет прежнее количество. Неизвестный вариант — no-op: защита от
// устаревших ссылок из интерфейса.
func (c *Cart) Adjust(variantID string, delta int) error {
	for i := range c.lines {
		if c.lines[i].VariantID != variantID {
			continue
		}

		newQty := c.lines[i].Quantity + delta
		if newQty <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
		if newQty > c.lines[i].StockCeiling {
			return ErrStockExceeded
		}
		c.lines[i].Quantity = newQty
		return nil
	}
	return nil
}

// Remove безусловно удаляет строку варианта, если она есть. Идемпотентна.
func (c *Cart) Remove(variantID string) {
	for i := range c.lines {
		if c.lines[i].VariantID == variantID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Lines возвращает копию строк корзины в порядке добавления.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Empty сообщает, пуста ли корзина.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Totals считает количество единиц и сумму корзины. Округление не
// применяется: форматирование валюты — забота слоя отображения.
func (c *Cart) Totals() Totals {
	var t Totals
	for _, l := range c.lines {
		t.Items += l.Quantity
		t.Amount += float64(l.Quantity) * l.UnitPrice
	}
	return t
}

// Clear отбрасывает все строки корзины.
func (c *Cart) Clear() {
	c.lines = nil
}

// BuildSaleRequest собирает тело продажи для внешнего API продаж.
// Пустой clientID означает покупателя без карточки (consumidor final).
func BuildSaleRequest(c *Cart, clientID string, method model.PaymentMethod) (*model.SaleRequest, error) {
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	items := make([]model.SaleItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, model.SaleItem{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	req := &model.SaleRequest{
		PaymentMethod: string(method),
		Items:         items,
		Total:         c.Totals().Amount,
	}
	if clientID != "" {
		req.ClientID = &clientID
	}
	return req, nil
}
