// Package receipt met en forme le ticket de caisse d'une vente.
package receipt

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"pos_back_end/internal/cart"
	"pos_back_end/internal/models"
)

const (
	lineWidth = 40
	qrSize    = 256
)

type Line struct {
	Name        string  `json:"name"`
	VariantName string  `json:"variant_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

type Receipt struct {
	StoreName     string    `json:"store_name"`
	StoreAddress  string    `json:"store_address"`
	StorePhone    string    `json:"store_phone"`
	Header        string    `json:"header"`
	Footer        string    `json:"footer"`
	Currency      string    `json:"currency"`
	TransactionID string    `json:"transaction_id"`
	Date          time.Time `json:"date"`
	PaymentMethod string    `json:"payment_method"`
	Lines         []Line    `json:"lines"`
	Subtotal      float64   `json:"subtotal"`
	TaxRate       float64   `json:"tax_rate"`
	Tax           float64   `json:"tax"`
	Total         float64   `json:"total"`
}

// Build assemble le ticket avec les réglages courants du magasin.
func Build(o models.Order, st models.Settings) Receipt {
	r := Receipt{
		StoreName:     st.StoreName,
		StoreAddress:  st.StoreAddress,
		StorePhone:    st.StorePhone,
		Header:        st.ReceiptHeader,
		Footer:        st.ReceiptFooter,
		Currency:      st.Currency,
		TransactionID: o.ID,
		Date:          o.CreatedAt,
		PaymentMethod: o.PaymentMethod.Label(),
		Subtotal:      o.Subtotal,
		TaxRate:       st.TaxRate,
		Tax:           o.Tax,
		Total:         o.Total,
		Lines:         make([]Line, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		line := Line{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: cart.UnitPrice(item),
		}
		if v, ok := item.SelectedVariant(); ok {
			line.VariantName = v.Name
		}
		line.Amount = line.UnitPrice * float64(item.Quantity)
		r.Lines = append(r.Lines, line)
	}
	return r
}

func (r Receipt) money(v float64) string {
	return fmt.Sprintf("%s%.2f", r.Currency, v)
}

// Text : ticket à largeur fixe pour imprimante thermique.
func (r Receipt) Text() string {
	var b strings.Builder
	sep := strings.Repeat("-", lineWidth) + "\n"

	center := func(s string) {
		if s == "" {
			return
		}
		pad := max(0, (lineWidth-len([]rune(s)))/2)
		b.WriteString(strings.Repeat(" ", pad) + s + "\n")
	}
	row := func(left, right string) {
		gap := max(1, lineWidth-len([]rune(left))-len([]rune(right)))
		b.WriteString(left + strings.Repeat(" ", gap) + right + "\n")
	}

	center(strings.ToUpper(r.StoreName))
	center(r.StoreAddress)
	center(r.StorePhone)
	center(r.Header)
	center(r.Date.Format("2006-01-02 15:04"))
	b.WriteString(sep)

	for _, l := range r.Lines {
		row(l.Name, fmt.Sprintf("x%d %s", l.Quantity, r.money(l.Amount)))
		if l.VariantName != "" {
			b.WriteString("  " + l.VariantName + "\n")
		}
	}

	b.WriteString(sep)
	row("Subtotal", r.money(r.Subtotal))
	row(fmt.Sprintf("Tax (%g%%)", r.TaxRate), r.money(r.Tax))
	row("TOTAL", r.money(r.Total))
	row("Payment", r.PaymentMethod)
	b.WriteString(sep)
	center("#" + r.TransactionID)
	center(r.Footer)
	return b.String()
}

var htmlTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
	"money": func(currency string, v float64) string { return fmt.Sprintf("%s%.2f", currency, v) },
	"date":  func(t time.Time) string { return t.Format("2006-01-02 15:04") },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Receipt #{{.TransactionID}}</title></head>
<body style="font-family: monospace; max-width: 360px; margin: auto;">
  <div style="text-align: center; border-bottom: 1px dashed #ccc; padding-bottom: 12px;">
    <h3>{{upper .StoreName}}</h3>
    <div>{{.StoreAddress}}</div>
    <div>{{.StorePhone}}</div>
    <p><strong>{{.Header}}</strong></p>
    <small>{{date .Date}}</small>
  </div>
  <table style="width: 100%; margin: 12px 0;">
    {{- range .Lines}}
    <tr>
      <td>{{.Name}}{{if .VariantName}}<br><small>{{.VariantName}}</small>{{end}}</td>
      <td style="text-align: right;">x{{.Quantity}} {{money $.Currency .Amount}}</td>
    </tr>
    {{- end}}
  </table>
  <table style="width: 100%; border-top: 1px dashed #ccc;">
    <tr><td>Subtotal</td><td style="text-align: right;">{{money .Currency .Subtotal}}</td></tr>
    <tr><td>Tax ({{.TaxRate}}%)</td><td style="text-align: right;">{{money .Currency .Tax}}</td></tr>
    <tr><td><strong>Total</strong></td><td style="text-align: right;"><strong>{{money .Currency .Total}}</strong></td></tr>
    <tr><td>Payment</td><td style="text-align: right;">{{.PaymentMethod}}</td></tr>
  </table>
  {{- if .QRImage}}
  <div style="text-align: center; margin-top: 12px;"><img src="{{.QRImage}}" alt="QR" width="128" height="128"></div>
  {{- end}}
  <p style="text-align: center;">Transaction #{{.TransactionID}}<br>{{.Footer}}</p>
</body>
</html>`))

// HTML rend le ticket pour l'email, avec le QR code intégré.
func (r Receipt) HTML() (string, error) {
	qr, err := r.QRDataURI()
	if err != nil {
		return "", err
	}

	data := struct {
		Receipt
		QRImage template.URL
	}{Receipt: r, QRImage: template.URL(qr)}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendu ticket: %w", err)
	}
	return buf.String(), nil
}

// QRPayload : identifiant de transaction et total, lus par le scanner de retour.
func (r Receipt) QRPayload() string {
	return fmt.Sprintf("%s|%.2f", r.TransactionID, r.Total)
}

// QRCode encode QRPayload en PNG.
func (r Receipt) QRCode() ([]byte, error) {
	return qrcode.Encode(r.QRPayload(), qrcode.Medium, qrSize)
}

// QRDataURI prêt à mettre dans <img src="...">
func (r Receipt) QRDataURI() (string, error) {
	png, err := r.QRCode()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
