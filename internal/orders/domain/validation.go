package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	nameMinLen    = 2
	nameMaxLen    = 50
	addressMinLen = 10
	addressMaxLen = 200
)

// MaxQuantity bounds a single line so summed quantities cannot overflow.
const MaxQuantity = 100_000

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationResult is the outcome of Validate. It is valid when Errors is empty.
type ValidationResult struct {
	Errors map[string]string
}

// Valid reports whether no rule was violated.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns a *ValidationError for an invalid result and nil otherwise.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	fields := make(map[string]string, len(r.Errors))
	for k, v := range r.Errors {
		fields[k] = v
	}
	return &ValidationError{Fields: fields}
}

type fieldErrors map[string]string

// add keeps the first message recorded for a field.
func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; exists {
		return
	}
	f[field] = message
}

// Validate checks a submission against every customer and line item rule.
// All rules run; each field reports only the first rule it violated.
func Validate(customer CustomerInfo, items []LineItem) ValidationResult {
	errs := fieldErrors{}

	checkLength(errs, "firstName", "first name", customer.FirstName, nameMinLen, nameMaxLen)
	checkLength(errs, "lastName", "last name", customer.LastName, nameMinLen, nameMaxLen)

	email := strings.TrimSpace(customer.Email)
	if email == "" {
		errs.add("email", "email is required")
	}
	if !emailPattern.MatchString(email) {
		errs.add("email", "email address is not valid")
	}

	checkLength(errs, "address", "address", customer.Address, addressMinLen, addressMaxLen)

	if len(items) == 0 {
		errs.add("items", "order must contain at least one item")
	}
	for i, item := range items {
		validateItem(errs, i, item)
	}

	return ValidationResult{Errors: errs}
}

func checkLength(errs fieldErrors, field, label, value string, minLen, maxLen int) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		errs.add(field, label+" is required")
		return
	}
	n := utf8.RuneCountInString(trimmed)
	if n < minLen {
		errs.add(field, fmt.Sprintf("%s must be at least %d characters", label, minLen))
	}
	if n > maxLen {
		errs.add(field, fmt.Sprintf("%s must be at most %d characters", label, maxLen))
	}
}

func validateItem(errs fieldErrors, index int, item LineItem) {
	field := func(name string) string {
		return fmt.Sprintf("items[%d].%s", index, name)
	}

	if item.ProductID <= 0 {
		errs.add(field("productId"), "product id must be a positive integer")
	}
	if strings.TrimSpace(item.ProductName) == "" {
		errs.add(field("productName"), "product name is required")
	}
	if item.CategoryID <= 0 {
		errs.add(field("categoryId"), "category id must be a positive integer")
	}
	if strings.TrimSpace(item.CategoryName) == "" {
		errs.add(field("categoryName"), "category name is required")
	}
	if !item.UnitPrice.IsPositive() {
		errs.add(field("price"), "price must be greater than zero")
	}
	if item.Quantity < 1 {
		errs.add(field("quantity"), "quantity must be at least 1")
	}
	if item.Quantity > MaxQuantity {
		errs.add(field("quantity"), fmt.Sprintf("quantity must be at most %d", MaxQuantity))
	}
}
