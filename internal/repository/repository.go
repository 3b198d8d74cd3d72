// Package repository содержит реализации хранилища заказов.
package repository

import (
	"context"
	"errors"

	"github.com/mmeshcher/checkout-system/internal/model"
)

// ErrOrderNotFound возвращается, если заказ с указанным идентификатором не найден.
var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition возвращается при попытке изменить статус заказа,
	// уже находящегося в конечном состоянии.
	ErrInvalidTransition = errors.New("order already resolved")
)

// OrderDraft содержит данные нового заказа до присвоения идентификатора.
// Поля товара — снимок каталога на момент оформления.
type OrderDraft struct {
	ProductID     int64
	ProductName   string
	Price         int64
	CustomerName  string
	CustomerEmail string
	PaymentRef    string
}

// Store описывает контракт хранилища заказов. Реализация выбирается один раз
// при старте процесса: PostgreSQL при заданном DATABASE_URI, иначе память.
type Store interface {
	Close() error
	CreateOrder(ctx context.Context, draft OrderDraft) (int64, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	GetOrderStatus(ctx context.Context, id int64) (model.OrderStatus, error)
	SetNotificationRef(ctx context.Context, id int64, ref int64) error
	SetOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error
}
