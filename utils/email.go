package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"canteen_manager/config"
	"canteen_manager/logger"

	"gopkg.in/gomail.v2"
)

type OrderReceiptData struct {
	TokenNumber int
	UserName    string
	Items       []ReceiptLine
	TotalAmount string
	PickupTime  string
	PaymentRef  string
	CreatedAt   string
}

type ReceiptLine struct {
	Name     string
	Quantity int
	Price    string
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<h2>Token #{{.TokenNumber}}</h2>
<p>Hi {{.UserName}}, your order is being prepared.</p>
<table>
{{range .Items}}<tr><td>{{.Quantity}}x</td><td>{{.Name}}</td><td>{{.Price}}</td></tr>
{{end}}</table>
<p><b>Total:</b> {{.TotalAmount}}</p>
<p><b>Pickup:</b> {{.PickupTime}}</p>
<p><b>Placed:</b> {{.CreatedAt}}</p>
<p><small>Payment {{.PaymentRef}}</small></p>
<img src="cid:token_qr" alt="token QR" />
</body></html>`))

// Dial sends a prepared message. Tests replace it.
var Dial = func(m *gomail.Message) error {
	cfg := config.Get()
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return d.DialAndSend(m)
}

// BuildOrderReceiptEmail renders the receipt with the token QR embedded inline.
func BuildOrderReceiptEmail(from, to string, data OrderReceiptData) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := receiptTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Order confirmed - Token #%d", data.TokenNumber))
	m.SetBody("text/html", body.String())

	qrBytes, err := GenerateQRCode(fmt.Sprintf("TOKEN-%d", data.TokenNumber), 300)
	if err == nil {
		m.Embed("token_qr.png", gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(qrBytes)
			return err
		}), gomail.SetHeader(map[string][]string{
			"Content-Type":        {"image/png"},
			"Content-ID":          {"<token_qr>"},
			"Content-Disposition": {"inline"},
		}))
	}
	return m, nil
}

// SendOrderReceiptEmail sends the receipt in the background when SMTP is set up.
func SendOrderReceiptEmail(to string, data OrderReceiptData) {
	cfg := config.Get()
	if !cfg.SMTPEnabled() || to == "" {
		return
	}
	go func() {
		m, err := BuildOrderReceiptEmail(cfg.SMTPFrom, to, data)
		if err != nil {
			logger.WithError(err).Warn("receipt email not rendered")
			return
		}
		if err := Dial(m); err != nil {
			logger.WithError(err).WithField("token", data.TokenNumber).Warn("receipt email not sent")
		}
	}()
}
