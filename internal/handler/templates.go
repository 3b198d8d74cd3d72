package handler

import "html/template"

// Минимальные страницы покупательского сценария. Полноценная вёрстка
// не входит в задачи сервиса.

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="ru">
<head><meta charset="utf-8"><title>Магазин</title></head>
<body>
<h1>Товары</h1>
<ul>
{{range .Products}}<li><a href="/product/{{.ID}}">{{.Name}}</a> — {{.Price}} руб.</li>
{{end}}</ul>
</body>
</html>
`))

var productTmpl = template.Must(template.New("product").Parse(`<!DOCTYPE html>
<html lang="ru">
<head><meta charset="utf-8"><title>{{.Product.Name}}</title></head>
<body>
<h1>{{.Product.Name}}</h1>
<p>{{.Product.Description}}</p>
<p>Цена: {{.Product.Price}} руб.</p>
<a href="/checkout/{{.Product.ID}}">Купить</a>
</body>
</html>
`))

var checkoutTmpl = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html lang="ru">
<head><meta charset="utf-8"><title>Оформление заказа</title></head>
<body>
<h1>Оформление заказа: {{.Product.Name}}</h1>
<p>К оплате: {{.Product.Price}} руб.</p>
{{if .Error}}<p>{{.Error}}</p>{{end}}
<form method="post" action="/checkout/{{.Product.ID}}">
<label>Имя <input name="name" value="{{.Form.Name}}"></label><br>
<label>Email <input name="email" value="{{.Form.Email}}"></label><br>
<label>Номер карты <input name="card_number"></label><br>
<label>Срок действия <input name="expiry_date"></label><br>
<label>CVV <input name="cvv"></label><br>
<button type="submit">Оплатить</button>
</form>
</body>
</html>
`))

var pendingTmpl = template.Must(template.New("pending").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="3">
<title>Ожидание подтверждения</title>
</head>
<body>
<h1>Платёж обрабатывается</h1>
<p>Заказ ожидает подтверждения. Страница обновится автоматически.</p>
</body>
</html>
`))

var resultTmpl = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="ru">
<head><meta charset="utf-8"><title>Результат оплаты</title></head>
<body>
<h1>{{.Message}}</h1>
{{if .OrderID}}<p>Номер заказа: {{.OrderID}}</p>{{end}}
<a href="/">Вернуться в каталог</a>
</body>
</html>
`))
