// Package session связывает браузерную сессию с последним оформленным заказом.
package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	orderCookieName = "order_token"
	orderCookieTTL  = 24 * time.Hour
)

// Binding содержит идентификатор заказа, привязанного к сессии. Это явный
// контекст опроса статуса: бизнес-логика не знает, откуда он получен.
type Binding struct {
	OrderID int64
	Present bool
}

// Manager подписывает и проверяет cookie с идентификатором заказа.
type Manager struct {
	secretKey []byte
}

// NewManager создаёт менеджер сессий с указанным секретным ключом.
// При пустом ключе генерируется случайный: подписи переживут только
// текущий процесс, чего достаточно для разработки.
func NewManager(secret string) *Manager {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("dev-secret-key")
		}
	}

	return &Manager{
		secretKey: key,
	}
}

// Bind привязывает заказ к сессии, устанавливая подписанный cookie.
func (m *Manager) Bind(w http.ResponseWriter, orderID int64) {
	cookie := &http.Cookie{
		Name:     orderCookieName,
		Value:    m.signOrderID(orderID),
		Path:     "/",
		Expires:  time.Now().Add(orderCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

// FromRequest извлекает привязку заказа из запроса. При отсутствии cookie
// или неверной подписи возвращается пустая привязка.
func (m *Manager) FromRequest(r *http.Request) Binding {
	cookie, err := r.Cookie(orderCookieName)
	if err != nil {
		return Binding{}
	}

	id, ok := m.parseCookie(cookie.Value)
	if !ok {
		return Binding{}
	}

	return Binding{OrderID: id, Present: true}
}

func (m *Manager) signOrderID(orderID int64) string {
	idStr := strconv.FormatInt(orderID, 10)
	mac := hmac.New(sha256.New, m.secretKey)
	mac.Write([]byte(idStr))
	return idStr + "." + hex.EncodeToString(mac.Sum(nil))
}

func (m *Manager) parseCookie(cookieValue string) (int64, bool) {
	parts := strings.Split(cookieValue, ".")
	if len(parts) != 2 {
		return 0, false
	}

	idStr := parts[0]
	signature := parts[1]

	mac := hmac.New(sha256.New, m.secretKey)
	mac.Write([]byte(idStr))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return 0, false
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}
