// Package catalog предоставляет каталог товаров, доступный только для чтения.
package catalog

import (
	"errors"

	"github.com/mmeshcher/checkout-system/internal/model"
)

// ErrProductNotFound возвращается при запросе неизвестного товара.
var ErrProductNotFound = errors.New("product not found")

// Catalog хранит товары, загруженные один раз при старте процесса.
// После создания каталог не изменяется, поэтому доступ не требует блокировок.
type Catalog struct {
	byID    map[int64]model.Product
	ordered []model.Product
}

// New создаёт каталог из переданного списка товаров.
func New(products []model.Product) *Catalog {
	c := &Catalog{
		byID:    make(map[int64]model.Product, len(products)),
		ordered: make([]model.Product, len(products)),
	}
	copy(c.ordered, products)
	for _, p := range products {
		c.byID[p.ID] = p
	}
	return c
}

// Default возвращает каталог с тестовыми товарами.
func Default() *Catalog {
	return New([]model.Product{
		{ID: 1, Name: "Тестовый товар 1", Price: 1000, Description: "Описание товара 1"},
		{ID: 2, Name: "Тестовый товар 2", Price: 2000, Description: "Описание товара 2"},
		{ID: 3, Name: "Тестовый товар 3", Price: 3000, Description: "Описание товара 3"},
	})
}

// Get возвращает товар по идентификатору.
func (c *Catalog) Get(id int64) (model.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return model.Product{}, ErrProductNotFound
	}
	return p, nil
}

// List возвращает копию списка товаров в порядке добавления.
func (c *Catalog) List() []model.Product {
	res := make([]model.Product, len(c.ordered))
	copy(res, c.ordered)
	return res
}
