package inventory

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidQuantity   = errors.New("inventory: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
)

// InsufficientInventoryError reports that a product cannot cover a requested quantity.
type InsufficientInventoryError struct {
	ProductID int64
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("Insufficient inventory for product ID: %d", e.ProductID)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Record is the stock level of one product held by the inventory service.
type Record struct {
	ID          int64
	ProductID   int64
	Quantity    int
	LastUpdated time.Time
}

// EnsureCovers returns an *InsufficientInventoryError when quantity exceeds stock on hand.
func (r *Record) EnsureCovers(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.Quantity < quantity {
		return &InsufficientInventoryError{ProductID: r.ProductID}
	}
	return nil
}

// Deduct removes quantity from stock and stamps LastUpdated with now.
func (r *Record) Deduct(quantity int, now time.Time) error {
	if err := r.EnsureCovers(quantity); err != nil {
		return err
	}
	r.Quantity -= quantity
	r.LastUpdated = now
	return nil
}

func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
