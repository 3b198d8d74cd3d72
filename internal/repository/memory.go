package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mmeshcher/checkout-system/internal/model"
)

// MemoryStore хранит заказы в памяти процесса. Используется при пустом
// DATABASE_URI и в тестах. Данные живут до перезапуска процесса.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*model.Order
}

// NewMemoryStore создаёт пустое хранилище заказов в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[int64]*model.Order),
	}
}

// Close ничего не делает: у хранилища в памяти нет внешних ресурсов.
func (s *MemoryStore) Close() error {
	return nil
}

// CreateOrder сохраняет новый заказ в статусе pending и возвращает присвоенный идентификатор.
func (s *MemoryStore) CreateOrder(_ context.Context, draft OrderDraft) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	o := &model.Order{
		ID:            s.nextID,
		ProductID:     draft.ProductID,
		ProductName:   draft.ProductName,
		Price:         draft.Price,
		CustomerName:  draft.CustomerName,
		CustomerEmail: draft.CustomerEmail,
		PaymentRef:    draft.PaymentRef,
		Status:        model.OrderStatusPending,
		CreatedAt:     time.Now(),
	}
	s.orders[o.ID] = o

	return o.ID, nil
}

// GetOrder возвращает копию записи заказа.
func (s *MemoryStore) GetOrder(_ context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	res := *o
	if o.NotificationRef != nil {
		ref := *o.NotificationRef
		res.NotificationRef = &ref
	}
	return &res, nil
}

// GetOrderStatus возвращает текущий статус заказа.
func (s *MemoryStore) GetOrderStatus(_ context.Context, id int64) (model.OrderStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return "", ErrOrderNotFound
	}
	return o.Status, nil
}

// SetNotificationRef сохраняет идентификатор отправленного уведомления.
func (s *MemoryStore) SetNotificationRef(_ context.Context, id int64, ref int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.NotificationRef = &ref
	return nil
}

// SetOrderStatus переводит заказ в конечный статус. Попытка изменить уже
// решённый заказ завершается ErrInvalidTransition, статус не меняется.
func (s *MemoryStore) SetOrderStatus(_ context.Context, id int64, status model.OrderStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("status %q is not terminal", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	if o.Status != model.OrderStatusPending {
		return ErrInvalidTransition
	}
	o.Status = status
	return nil
}
