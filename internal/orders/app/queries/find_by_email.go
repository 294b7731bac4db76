package queries

import (
	"context"
	"strings"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
)

type FindByEmailQuery struct {
	Email string
}

// CustomerOrders lists every order placed with one email address, newest first.
type CustomerOrders struct {
	Email  string
	Orders []domain.Order
}

type FindByEmailQueryHandler struct {
	repo ports.OrderRepository
}

func NewFindByEmailQueryHandler(repo ports.OrderRepository) *FindByEmailQueryHandler {
	return &FindByEmailQueryHandler{repo: repo}
}

// Handle matches emails the way they are stored: trimmed and lowercased.
func (h *FindByEmailQueryHandler) Handle(ctx context.Context, query FindByEmailQuery) (*CustomerOrders, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(query.Email))
	orders, err := h.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	return &CustomerOrders{Email: email, Orders: orders}, nil
}

func (q FindByEmailQuery) Validate() error {
	if strings.TrimSpace(q.Email) == "" {
		return domain.FieldError("email", "email is required")
	}
	return nil
}
