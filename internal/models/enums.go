package models

type DiscountType string

const (
	DiscountNone    DiscountType = ""
	DiscountPWD     DiscountType = "pwd"
	DiscountSenior  DiscountType = "senior"
	DiscountVoucher DiscountType = "voucher"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCOD          PaymentMethod = "cod"
	PaymentGCash        PaymentMethod = "gcash"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// POSPaymentMethods are accepted at the counter.
var POSPaymentMethods = []PaymentMethod{
	PaymentCash, PaymentCOD, PaymentGCash, PaymentCreditCard, PaymentPayPal, PaymentBankTransfer,
}

// CheckoutPaymentMethods are accepted for online orders.
var CheckoutPaymentMethods = []PaymentMethod{
	PaymentCOD, PaymentGCash, PaymentCreditCard, PaymentPayPal,
}

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// statusRank orders the fulfilment flow; cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
	StatusCompleted:  4,
}

func (s OrderStatus) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an order may move from s to next. Orders only
// move forward; cancellation is allowed until delivery.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return statusRank[s] < statusRank[StatusDelivered]
	}
	return statusRank[next] > statusRank[s]
}
