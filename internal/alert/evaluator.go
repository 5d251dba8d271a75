package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/stockerhq/stocker/internal/domain"
	"go.uber.org/zap"
)

const alertSubject = "Inventory Alert"

// Messages inspects a product and returns one line per triggered condition:
// low stock (quantity at or below the reorder level) and near expiry
// (expiry date set and within horizonDays of now, inclusive).
func Messages(p *domain.Product, now time.Time, horizonDays int) []string {
	var msgs []string
	if p.IsLowStock() {
		msgs = append(msgs, fmt.Sprintf("- Low stock: %s (Qty: %d, Reorder <= %d)",
			p.Name, p.Quantity, p.ReorderLevel))
	}
	if p.IsNearExpiry(now, horizonDays) {
		msgs = append(msgs, fmt.Sprintf("- Near expiry: %s (Expiry: %s)",
			p.Name, p.ExpiryDate.Format("2006-01-02")))
	}
	return msgs
}

// Evaluator decides whether a freshly saved product warrants an operational
// notification and dispatches it. A blank recipient disables alerting.
type Evaluator struct {
	mailer    Mailer
	recipient string
}

func NewEvaluator(mailer Mailer, recipient string) *Evaluator {
	return &Evaluator{mailer: mailer, recipient: recipient}
}

// EvaluateAndNotify is invoked after every product create/update, once the
// save transaction has committed. Dispatch failures are logged and swallowed
// so they can never surface as user-visible errors.
func (e *Evaluator) EvaluateAndNotify(p *domain.Product) {
	if e == nil || e.recipient == "" {
		return
	}

	msgs := Messages(p, time.Now(), domain.NearExpiryDays)
	if len(msgs) == 0 {
		return
	}

	body := "The following items need attention:\n\n" + strings.Join(msgs, "\n")
	if err := e.mailer.Send(alertSubject, body, e.recipient); err != nil {
		zap.L().Warn("inventory alert dispatch failed",
			zap.String("product", p.Name),
			zap.String("recipient", e.recipient),
			zap.Error(err))
		return
	}

	zap.L().Info("inventory alert sent",
		zap.String("product", p.Name),
		zap.Int("conditions", len(msgs)))
}
