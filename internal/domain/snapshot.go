package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrentSnapshotVersion is written with every new order. Readers keep
// decoders for every version ever written.
const CurrentSnapshotVersion = 1

// OrderSnapshot is the persisted form of an order's line items and
// delivery details.
type OrderSnapshot struct {
	Version  int
	Items    []OrderItem
	Customer CustomerDetails
}

type orderItemV1 struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type customerV1 struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	State   string `json:"state"`
}

// NewOrderSnapshot captures items and customer at the current version
func NewOrderSnapshot(items []OrderItem, customer CustomerDetails) OrderSnapshot {
	return OrderSnapshot{
		Version:  CurrentSnapshotVersion,
		Items:    items,
		Customer: customer,
	}
}

// Marshal encodes the snapshot into its items and customer documents
func (s OrderSnapshot) Marshal() (items []byte, customer []byte, err error) {
	if s.Version != CurrentSnapshotVersion {
		return nil, nil, fmt.Errorf("cannot write snapshot version %d", s.Version)
	}

	wireItems := make([]orderItemV1, len(s.Items))
	for i, it := range s.Items {
		wireItems[i] = orderItemV1{
			ProductID: it.ProductID,
			Name:      it.Name,
			Size:      it.Size,
			Color:     it.Color,
			Price:     it.UnitPrice,
			Quantity:  it.Quantity,
		}
	}

	items, err = json.Marshal(wireItems)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal items: %w", err)
	}

	customer, err = json.Marshal(customerV1(s.Customer))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal customer details: %w", err)
	}

	return items, customer, nil
}

// UnmarshalOrderSnapshot decodes stored documents written at the given version
func UnmarshalOrderSnapshot(version int, items, customer []byte) (OrderSnapshot, error) {
	switch version {
	case 1:
		var wireItems []orderItemV1
		if err := json.Unmarshal(items, &wireItems); err != nil {
			return OrderSnapshot{}, fmt.Errorf("failed to parse items (v1): %w", err)
		}
		var wireCustomer customerV1
		if err := json.Unmarshal(customer, &wireCustomer); err != nil {
			return OrderSnapshot{}, fmt.Errorf("failed to parse customer details (v1): %w", err)
		}

		out := OrderSnapshot{
			Version:  1,
			Items:    make([]OrderItem, len(wireItems)),
			Customer: CustomerDetails(wireCustomer),
		}
		for i, it := range wireItems {
			out.Items[i] = OrderItem{
				ProductID: it.ProductID,
				Name:      it.Name,
				Size:      it.Size,
				Color:     it.Color,
				UnitPrice: it.Price,
				Quantity:  it.Quantity,
			}
		}
		return out, nil
	default:
		return OrderSnapshot{}, fmt.Errorf("unsupported order snapshot version %d", version)
	}
}
