package catalog

import (
	"errors"
	"testing"

	"github.com/mmeshcher/checkout-system/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	products := c.List()
	if len(products) != 3 {
		t.Fatalf("len(products) = %d, want 3", len(products))
	}

	p, err := c.Get(1)
	if err != nil {
		t.Fatalf("Get(1) error: %v", err)
	}
	if p.Name != "Тестовый товар 1" || p.Price != 1000 {
		t.Fatalf("unexpected product: %+v", p)
	}
}

func TestGet_UnknownProduct(t *testing.T) {
	c := Default()

	_, err := c.Get(99)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestList_ReturnsCopy(t *testing.T) {
	c := New([]model.Product{
		{ID: 1, Name: "original", Price: 100},
	})

	list := c.List()
	list[0].Name = "mutated"

	p, err := c.Get(1)
	if err != nil {
		t.Fatalf("Get(1) error: %v", err)
	}
	if p.Name != "original" {
		t.Fatalf("catalog mutated through List: %+v", p)
	}
}
