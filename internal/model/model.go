// Package model содержит доменные сущности сервиса оформления заказов.
package model

import "time"

// Product описывает товар каталога. Каталог заполняется один раз при старте
// процесса и не изменяется во время работы.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       int64
}

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
)

// IsTerminal сообщает, является ли статус конечным. Из конечного статуса
// переходы запрещены.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusApproved || s == OrderStatusRejected
}

// Order описывает заказ: снимок данных товара на момент оформления, данные
// покупателя и текущий статус. PaymentRef хранит только последние четыре
// символа номера карты, полный номер в систему не попадает.
type Order struct {
	ID              int64
	ProductID       int64
	ProductName     string
	Price           int64
	CustomerName    string
	CustomerEmail   string
	PaymentRef      string
	Status          OrderStatus
	CreatedAt       time.Time
	NotificationRef *int64
}

// CheckoutForm содержит поля формы оформления заказа в том виде, в котором
// их прислал покупатель.
type CheckoutForm struct {
	Name       string
	Email      string
	CardNumber string
	ExpiryDate string
	CVV        string
}
