package order

// OrderState implements the state pattern for order lifecycle transitions.
type OrderState interface {
	Status() Status
	OnPaymentCompleted(o *Order) (OrderState, error)
}

func stateOf(s Status) OrderState {
	switch s {
	case StatusPendingPayment:
		return pendingPaymentState{}
	case StatusPaymentCompleted:
		return paymentCompletedState{}
	default:
		return unknownState{status: s}
	}
}

type pendingPaymentState struct{}

func (pendingPaymentState) Status() Status { return StatusPendingPayment }

func (pendingPaymentState) OnPaymentCompleted(*Order) (OrderState, error) {
	return paymentCompletedState{}, nil
}

type paymentCompletedState struct{}

func (paymentCompletedState) Status() Status { return StatusPaymentCompleted }

func (paymentCompletedState) OnPaymentCompleted(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

// unknownState covers statuses written by other producers of the order service.
type unknownState struct{ status Status }

func (s unknownState) Status() Status { return s.status }

func (unknownState) OnPaymentCompleted(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}
