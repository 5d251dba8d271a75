package alert

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockerhq/stocker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	subject string
	body    string
	to      string
}

func (m *fakeMailer) Send(subject, body, to string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{subject, body, to})
	return nil
}

func datePtr(t time.Time) *time.Time { return &t }

func TestMessages(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		product domain.Product
		want    int
	}{
		{
			name:    "healthy product",
			product: domain.Product{Name: "Ibuprofen", Quantity: 60, ReorderLevel: 15},
			want:    0,
		},
		{
			name:    "low stock only",
			product: domain.Product{Name: "Paracetamol", Quantity: 8, ReorderLevel: 10},
			want:    1,
		},
		{
			name: "near expiry only",
			product: domain.Product{
				Name: "Amoxicillin", Quantity: 100, ReorderLevel: 10,
				ExpiryDate: datePtr(now.AddDate(0, 0, 20)),
			},
			want: 1,
		},
		{
			name: "both conditions",
			product: domain.Product{
				Name: "Insulin", Quantity: 2, ReorderLevel: 5,
				ExpiryDate: datePtr(now.AddDate(0, 0, 10)),
			},
			want: 2,
		},
		{
			name: "expiry beyond horizon",
			product: domain.Product{
				Name: "Saline", Quantity: 60, ReorderLevel: 15,
				ExpiryDate: datePtr(now.AddDate(0, 0, 40)),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := Messages(&tt.product, now, domain.NearExpiryDays)
			assert.Len(t, msgs, tt.want)
		})
	}
}

func TestEvaluateAndNotifyLowStock(t *testing.T) {
	mailer := &fakeMailer{}
	ev := NewEvaluator(mailer, "manager@pharmacy.example")

	p := domain.Product{
		Name:         "Paracetamol",
		Price:        decimal.RequireFromString("5.00"),
		Quantity:     8,
		ReorderLevel: 10,
	}
	ev.EvaluateAndNotify(&p)

	require.Len(t, mailer.sent, 1, "exactly one notification expected")
	mail := mailer.sent[0]
	assert.Equal(t, "Inventory Alert", mail.subject)
	assert.Equal(t, "manager@pharmacy.example", mail.to)
	assert.Contains(t, mail.body, "Low stock: Paracetamol")
	assert.NotContains(t, mail.body, "Near expiry")
}

func TestEvaluateAndNotifyNoRecipient(t *testing.T) {
	mailer := &fakeMailer{}
	ev := NewEvaluator(mailer, "")

	ev.EvaluateAndNotify(&domain.Product{Name: "Paracetamol", Quantity: 0, ReorderLevel: 10})
	assert.Empty(t, mailer.sent)
}

func TestEvaluateAndNotifyNoCondition(t *testing.T) {
	mailer := &fakeMailer{}
	ev := NewEvaluator(mailer, "manager@pharmacy.example")

	ev.EvaluateAndNotify(&domain.Product{Name: "Ibuprofen", Quantity: 60, ReorderLevel: 15})
	assert.Empty(t, mailer.sent)
}

func TestEvaluateAndNotifySwallowsDispatchError(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp unreachable")}
	ev := NewEvaluator(mailer, "manager@pharmacy.example")

	// must not panic or surface the error
	ev.EvaluateAndNotify(&domain.Product{Name: "Paracetamol", Quantity: 0, ReorderLevel: 10})
	assert.Empty(t, mailer.sent)
}
