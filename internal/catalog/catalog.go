// Package catalog разворачивает дерево товаров внешнего API в плоский
// список вариантов для сканирования.
package catalog

import (
	"errors"
	"strings"

	"puntoventa/internal/model"
)

// ErrNotFound возвращается, когда код не совпал ни с одним вариантом.
var ErrNotFound = errors.New("variant not found")

// Index хранит развёрнутые варианты в порядке обхода каталога.
type Index struct {
	entries []model.CatalogVariant
}

// NewIndex строит индекс по списку товаров с вложенными вариантами.
func NewIndex(products []model.Product) *Index {
	idx := &Index{}
	for _, p := range products {
		for _, v := range p.Variants {
			idx.entries = append(idx.entries, model.CatalogVariant{
				VariantID: v.ID,
				ProductID: p.ID,
				Name:      p.Name,
				SKU:       v.SKU,
				Size:      v.Size,
				Color:     v.Color,
				Price:     v.SalePrice,
				Stock:     v.Stock,
			})
		}
	}
	return idx
}

// Resolve сопоставляет отсканированный код с вариантом: сначала SKU без
// учёта регистра, затем точное совпадение идентификатора. Частичные и
// неоднозначные совпадения не распознаются.
func (i *Index) Resolve(code string) (model.CatalogVariant, error) {
	term := strings.ToLower(strings.TrimSpace(code))
	if term == "" {
		return model.CatalogVariant{}, ErrNotFound
	}

	for _, e := range i.entries {
		if e.SKU != "" && strings.ToLower(e.SKU) == term {
			return e, nil
		}
	}
	for _, e := range i.entries {
		if e.VariantID == term {
			return e, nil
		}
	}
	return model.CatalogVariant{}, ErrNotFound
}

// Entries возвращает развёрнутые варианты в порядке каталога.
func (i *Index) Entries() []model.CatalogVariant {
	out := make([]model.CatalogVariant, len(i.entries))
	copy(out, i.entries)
	return out
}
