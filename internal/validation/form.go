// Package validation содержит функции валидации входных данных.
package validation

import "github.com/mmeshcher/checkout-system/internal/model"

// MissingCheckoutFields возвращает имена обязательных полей формы оформления
// заказа, оставленных пустыми. Проверяется только наличие значений.
func MissingCheckoutFields(f model.CheckoutForm) []string {
	var missing []string

	if f.Name == "" {
		missing = append(missing, "name")
	}
	if f.Email == "" {
		missing = append(missing, "email")
	}
	if f.CardNumber == "" {
		missing = append(missing, "card_number")
	}
	if f.ExpiryDate == "" {
		missing = append(missing, "expiry_date")
	}
	if f.CVV == "" {
		missing = append(missing, "cvv")
	}

	return missing
}

// PaymentReference возвращает усечённое представление номера карты:
// только последние четыре символа. Полный номер нигде не сохраняется.
func PaymentReference(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
}
