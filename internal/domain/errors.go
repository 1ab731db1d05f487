package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than 0")
	ErrUnknownKind       = errors.New("unknown product kind")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductVanished   = errors.New("product no longer exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrForbidden         = errors.New("resource belongs to another owner")
	ErrCartLineNotFound  = errors.New("cart line not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal transition of checkout status")
)

// ProductError names the product behind a stock or existence failure.
type ProductError struct {
	Ref       ProductRef
	Name      string
	Requested int
	Available int
	Err       error
}

func (e *ProductError) Error() string {
	label := e.Ref.String()
	if e.Name != "" {
		label = fmt.Sprintf("%s (%s)", label, e.Name)
	}
	if errors.Is(e.Err, ErrInsufficientStock) {
		return fmt.Sprintf("%v for %s: requested %d, available %d", e.Err, label, e.Requested, e.Available)
	}
	return fmt.Sprintf("%v: %s", e.Err, label)
}

func (e *ProductError) Unwrap() error {
	return e.Err
}

func InsufficientStock(ref ProductRef, name string, requested, available int) error {
	return &ProductError{Ref: ref, Name: name, Requested: requested, Available: available, Err: ErrInsufficientStock}
}

func ProductNotFound(ref ProductRef) error {
	return &ProductError{Ref: ref, Err: ErrProductNotFound}
}

func ProductVanished(ref ProductRef) error {
	return &ProductError{Ref: ref, Err: ErrProductVanished}
}

// CheckoutError reports the phase in which a checkout was aborted.
type CheckoutError struct {
	Phase CheckoutStatus
	Err   error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout aborted while %s: %v", e.Phase, e.Err)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}
