// Package service реализует бизнес-логику оформления и подтверждения заказов.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/checkout-system/internal/catalog"
	"github.com/mmeshcher/checkout-system/internal/model"
	"github.com/mmeshcher/checkout-system/internal/repository"
	"github.com/mmeshcher/checkout-system/internal/session"
	"github.com/mmeshcher/checkout-system/internal/validation"
)

// ErrInvalidAction возвращается, если решение оператора не approve и не reject.
var (
	ErrInvalidAction = errors.New("invalid action")
	// ErrNoActiveOrder возвращается при опросе статуса без привязанного заказа.
	ErrNoActiveOrder = errors.New("no active order bound to session")
)

// Действия оператора по заказу.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ValidationError описывает незаполненные обязательные поля формы.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Store описывает контракт хранилища заказов, используемый сервисом.
type Store interface {
	CreateOrder(ctx context.Context, draft repository.OrderDraft) (int64, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	GetOrderStatus(ctx context.Context, id int64) (model.OrderStatus, error)
	SetNotificationRef(ctx context.Context, id int64, ref int64) error
	SetOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error
}

// Notifier описывает контракт отправки уведомления о новом заказе.
// Нулевой идентификатор означает, что уведомление не было отправлено.
type Notifier interface {
	Notify(ctx context.Context, orderID int64, productName string, price int64, customerName string) (int64, error)
}

// Service управляет жизненным циклом заказа: оформление, уведомление
// оператора, опрос статуса и приём решения.
type Service struct {
	store         Store
	catalog       *catalog.Catalog
	notifier      Notifier
	notifyTimeout time.Duration
	logger        *zap.Logger
}

// NewService создаёт сервис с указанным хранилищем, каталогом и нотификатором.
func NewService(store Store, cat *catalog.Catalog, notifier Notifier, notifyTimeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		store:         store,
		catalog:       cat,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		logger:        logger,
	}
}

// ListProducts возвращает все товары каталога.
func (s *Service) ListProducts() []model.Product {
	return s.catalog.List()
}

// StartCheckout проверяет, что товар существует, и возвращает его данные
// для формы оформления. Состояние не меняется.
func (s *Service) StartCheckout(productID int64) (model.Product, error) {
	return s.catalog.Get(productID)
}

// SubmitCheckout оформляет заказ: проверяет поля формы, сохраняет заказ со
// снимком товара и усечённым номером карты, после чего отправляет уведомление
// оператору. Ошибка уведомления не мешает оформлению.
func (s *Service) SubmitCheckout(ctx context.Context, productID int64, form model.CheckoutForm) (int64, error) {
	product, err := s.catalog.Get(productID)
	if err != nil {
		return 0, err
	}

	if missing := validation.MissingCheckoutFields(form); len(missing) > 0 {
		return 0, &ValidationError{Missing: missing}
	}

	draft := repository.OrderDraft{
		ProductID:     product.ID,
		ProductName:   product.Name,
		Price:         product.Price,
		CustomerName:  form.Name,
		CustomerEmail: form.Email,
		PaymentRef:    validation.PaymentReference(form.CardNumber),
	}

	id, err := s.store.CreateOrder(ctx, draft)
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}

	s.notify(ctx, id, product, form.Name)

	return id, nil
}

func (s *Service) notify(ctx context.Context, orderID int64, product model.Product, customerName string) {
	if s.notifier == nil {
		return
	}

	nctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	ref, err := s.notifier.Notify(nctx, orderID, product.Name, product.Price, customerName)
	if err != nil {
		s.logger.Warn("order notification failed",
			zap.Int64("orderID", orderID),
			zap.Error(err),
		)
		return
	}
	if ref == 0 {
		return
	}

	if err := s.store.SetNotificationRef(ctx, orderID, ref); err != nil {
		s.logger.Warn("save notification ref failed",
			zap.Int64("orderID", orderID),
			zap.Int64("ref", ref),
			zap.Error(err),
		)
	}
}

// PollStatus возвращает текущий статус заказа, привязанного к сессии.
func (s *Service) PollStatus(ctx context.Context, b session.Binding) (model.OrderStatus, error) {
	if !b.Present {
		return "", ErrNoActiveOrder
	}
	return s.store.GetOrderStatus(ctx, b.OrderID)
}

// GetOrder возвращает полную запись заказа для отображения.
func (s *Service) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// Resolve применяет решение оператора к заказу. Повторное решение по уже
// завершённому заказу возвращает repository.ErrInvalidTransition, статус
// при этом не меняется.
func (s *Service) Resolve(ctx context.Context, orderID int64, action string) (model.OrderStatus, error) {
	var status model.OrderStatus
	switch action {
	case ActionApprove:
		status = model.OrderStatusApproved
	case ActionReject:
		status = model.OrderStatusRejected
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	if err := s.store.SetOrderStatus(ctx, orderID, status); err != nil {
		return "", err
	}

	s.logger.Info("order resolved",
		zap.Int64("orderID", orderID),
		zap.String("action", action),
	)

	return status, nil
}
