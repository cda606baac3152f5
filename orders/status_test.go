package orders

import (
	"testing"

	"marketplace-svc/models"
)

func TestClassifyCancellation(t *testing.T) {
	tests := []struct {
		name string
		pay  models.PaymentStatus
		want cancellationOutcome
	}{
		{"unpaid order cancels immediately", models.PaymentPending, outcomeImmediateCancel},
		{"paid order raises refund request", models.PaymentPaid, outcomeRefundRequested},
		{"refunded order is invalid", models.PaymentRefunded, outcomeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyCancellation(tt.pay); got != tt.want {
				t.Errorf("classifyCancellation(%q) = %v, want %v", tt.pay, got, tt.want)
			}
		})
	}
}

func TestCanSimulatePayment(t *testing.T) {
	if !canSimulatePayment(models.PaymentPending) {
		t.Error("Expected payment simulation to be allowed for Pending")
	}
	if canSimulatePayment(models.PaymentPaid) {
		t.Error("Expected payment simulation to be rejected for Paid")
	}
	if canSimulatePayment(models.PaymentRefunded) {
		t.Error("Expected payment simulation to be rejected for Refunded")
	}
}

func TestCanHandleRefund(t *testing.T) {
	if !canHandleRefund(models.ShippingRefundRequested, models.PaymentPaid) {
		t.Error("Expected refund handling to be allowed in Refund Requested/Paid")
	}
	if canHandleRefund(models.ShippingPending, models.PaymentPaid) {
		t.Error("Expected refund handling to be rejected without a refund request")
	}
	if canHandleRefund(models.ShippingRefundRequested, models.PaymentPending) {
		t.Error("Expected refund handling to be rejected for unpaid orders")
	}
}

func TestCanConfirmReceipt(t *testing.T) {
	if !canConfirmReceipt(models.ShippingShipped) {
		t.Error("Expected receipt confirmation to be allowed once shipped")
	}
	if !canConfirmReceipt(models.ShippingDelivered) {
		t.Error("Expected receipt confirmation to be allowed once delivered")
	}
	if canConfirmReceipt(models.ShippingPending) {
		t.Error("Expected receipt confirmation to be rejected before shipping")
	}
	if canConfirmReceipt(models.ShippingCancelled) {
		t.Error("Expected receipt confirmation to be rejected for cancelled orders")
	}
}

func TestShippingStatusTerminal(t *testing.T) {
	if !models.ShippingDelivered.Terminal() {
		t.Error("Expected Delivered to be terminal")
	}
	if !models.ShippingCancelled.Terminal() {
		t.Error("Expected Cancelled to be terminal")
	}
	if models.ShippingRefundRequested.Terminal() {
		t.Error("Expected Refund Requested to be non-terminal")
	}
}
