package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dejobratic/shoporders/internal/orders/app/queries"
	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
)

func TestGetOrder(t *testing.T) {
	t.Run("returns order by ID", func(t *testing.T) {
		repo := newInMemoryRepository()
		handler := queries.NewGetOrderQueryHandler(repo)
		ctx := context.Background()

		expectedOrder := domain.Order{
			ID:        "test-order-123",
			Customer:  domain.CustomerInfo{FirstName: "Dana", LastName: "Levi", Email: "dana@example.com"},
			Status:    domain.StatusPending,
			OrderDate: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}

		if _, err := repo.Create(ctx, expectedOrder); err != nil {
			t.Fatalf("failed to create test order: %v", err)
		}

		result, err := handler.Handle(ctx, queries.GetOrderQuery{OrderID: "test-order-123"})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result == nil {
			t.Fatal("expected order to be returned, got nil")
		}

		if result.ID != expectedOrder.ID {
			t.Errorf("expected ID %s, got %s", expectedOrder.ID, result.ID)
		}

		if result.Customer.Email != expectedOrder.Customer.Email {
			t.Errorf("expected email %s, got %s", expectedOrder.Customer.Email, result.Customer.Email)
		}

		if result.Status != expectedOrder.Status {
			t.Errorf("expected status %s, got %s", expectedOrder.Status, result.Status)
		}
	})

	t.Run("trims surrounding whitespace from the ID", func(t *testing.T) {
		repo := newInMemoryRepository()
		handler := queries.NewGetOrderQueryHandler(repo)
		ctx := context.Background()

		if _, err := repo.Create(ctx, domain.Order{ID: "order-9", Status: domain.StatusShipped}); err != nil {
			t.Fatalf("failed to create test order: %v", err)
		}

		result, err := handler.Handle(ctx, queries.GetOrderQuery{OrderID: " order-9 "})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Status != domain.StatusShipped {
			t.Errorf("expected status shipped, got %s", result.Status)
		}
	})

	t.Run("returns not found error for nonexistent order", func(t *testing.T) {
		handler := queries.NewGetOrderQueryHandler(newInMemoryRepository())

		result, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: "nonexistent-order"})

		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		if result != nil {
			t.Errorf("expected nil result, got %+v", result)
		}
	})
}

func TestGetOrderQueryValidation(t *testing.T) {
	tests := []struct {
		name    string
		query   queries.GetOrderQuery
		wantErr bool
	}{
		{name: "valid order ID", query: queries.GetOrderQuery{OrderID: "order-123"}},
		{name: "empty order ID", query: queries.GetOrderQuery{OrderID: ""}, wantErr: true},
		{name: "whitespace order ID", query: queries.GetOrderQuery{OrderID: "  \t  "}, wantErr: true},
		{name: "object ID", query: queries.GetOrderQuery{OrderID: "65f1c2a9e4b0d3a1b2c3d4e5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrValidationFailed) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) || vErr.Fields["id"] == "" {
				t.Errorf("expected an error for field id, got %v", err)
			}
		})
	}
}
