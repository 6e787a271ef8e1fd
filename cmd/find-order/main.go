package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/config"
	"github.com/anchorfit/storefront/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-order/main.go <reference>")
		fmt.Println("Example: go run cmd/find-order/main.go \"T123456789\"")
		os.Exit(1)
	}

	reference := os.Args[1]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()

	repos, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer repos.Close()

	fmt.Printf("🔍 Searching for order: %s\n\n", reference)

	order, err := repos.Order.GetByReference(ctx, reference)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Order ID:     %s\n", order.ID)
	fmt.Printf("Status:       %s\n", order.Status)
	fmt.Printf("Customer:     %s <%s>\n", order.Customer.Name, order.Customer.Email)
	fmt.Printf("Items:\n")
	for _, item := range order.Items {
		fmt.Printf("  - %s (%s/%s) x%d @ %s\n", item.Name, item.Size, item.Color, item.Quantity, item.UnitPrice.StringFixed(2))
	}
	fmt.Printf("Subtotal:     %s\n", order.Subtotal.StringFixed(2))
	if order.PromoCode != nil {
		fmt.Printf("Discount:     -%s (%s)\n", order.DiscountAmount.StringFixed(2), *order.PromoCode)
	}
	fmt.Printf("Shipping:     %s\n", order.ShippingFee.StringFixed(2))
	fmt.Printf("Total:        %s\n", order.TotalAmount.StringFixed(2))
	if order.EstimatedDeliveryDate != nil {
		fmt.Printf("Delivery:     %s\n", order.EstimatedDeliveryDate.Format("2006-01-02"))
	}
	if order.TrackingNumber != nil && order.ShippingCarrier != nil {
		fmt.Printf("Tracking:     %s %s\n", *order.ShippingCarrier, *order.TrackingNumber)
	}

	events, err := repos.OrderEvent.ListByOrderID(ctx, order.ID)
	if err != nil {
		logger.Warn("Failed to load order events", zap.Error(err))
		return
	}
	fmt.Printf("\nHistory:\n")
	for _, e := range events {
		fmt.Printf("  %s  %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.EventType)
	}
}
