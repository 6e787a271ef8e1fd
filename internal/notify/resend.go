package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/config"
)

// ResendNotifier sends order emails through the Resend HTTP API
type ResendNotifier struct {
	baseURL     string
	apiKey      string
	from        string
	sellerEmail string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewResendNotifier creates a Resend-backed notifier
func NewResendNotifier(cfg config.NotifyConfig, logger *zap.Logger) *ResendNotifier {
	return &ResendNotifier{
		baseURL:     strings.TrimSuffix(cfg.ResendBaseURL, "/"),
		apiKey:      cfg.ResendAPIKey,
		from:        cfg.From,
		sellerEmail: cfg.SellerEmail,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// New picks the Resend notifier when an API key is configured
func New(cfg config.NotifyConfig, logger *zap.Logger) Notifier {
	if cfg.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY not configured, order emails will only be logged")
		return NewLogNotifier(logger)
	}
	return NewResendNotifier(cfg, logger)
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

var sellerTemplate = template.Must(template.New("seller").Parse(`New order received

Order ID: {{.OrderID}}
Reference: {{.Reference}}

Customer: {{.Customer.Name}}
Email: {{.Customer.Email}}
Phone: {{.Customer.Phone}}
Address: {{.Customer.Address}}, {{.Customer.State}}

Items:
{{range .Items}}- {{.Name}} ({{.Size}}, {{.Color}}) x{{.Quantity}} @ NGN {{.UnitPrice.StringFixed 2}}
{{end}}
Subtotal: NGN {{.Subtotal.StringFixed 2}}
{{if .PromoCode}}Discount ({{.PromoCode}}): -NGN {{.Discount.StringFixed 2}}
{{end}}Shipping: NGN {{.ShippingFee.StringFixed 2}}
Total: NGN {{.Total.StringFixed 2}}
`))

var buyerTemplate = template.Must(template.New("buyer").Parse(`Hi {{.Customer.Name}},

Your payment was received and order {{.OrderID}} is confirmed.
{{if .EstimatedDeliveryDate}}Estimated delivery: {{.EstimatedDeliveryDate.Format "Monday, 2 January 2006"}}
{{end}}
Delivering to: {{.Customer.Address}}, {{.Customer.State}}

Total paid: NGN {{.Total.StringFixed 2}}
`))

func (n *ResendNotifier) SendSellerOrderNotice(ctx context.Context, notice OrderNotice) error {
	if n.sellerEmail == "" {
		return fmt.Errorf("seller email not configured")
	}
	body, err := render(sellerTemplate, notice)
	if err != nil {
		return err
	}
	return n.send(ctx, emailRequest{
		From:    n.from,
		To:      []string{n.sellerEmail},
		Subject: fmt.Sprintf("New Order #%s - NGN %s", notice.OrderID, notice.Total.StringFixed(2)),
		Text:    body,
	})
}

func (n *ResendNotifier) SendBuyerDeliveryConfirmation(ctx context.Context, notice OrderNotice) error {
	body, err := render(buyerTemplate, notice)
	if err != nil {
		return err
	}
	return n.send(ctx, emailRequest{
		From:    n.from,
		To:      []string{notice.Customer.Email},
		Subject: fmt.Sprintf("Order Confirmed #%s", notice.OrderID),
		Text:    body,
	})
}

func (n *ResendNotifier) send(ctx context.Context, email emailRequest) error {
	jsonData, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	n.logger.Debug("Email sent", zap.Strings("to", email.To), zap.String("subject", email.Subject))
	return nil
}

func render(tmpl *template.Template, notice OrderNotice) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, notice); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
