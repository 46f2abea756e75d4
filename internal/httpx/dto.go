package httpx

import (
	"time"

	"github.com/mincheol-dev/sneakershop/internal/order/domain"
)

// Field names follow the public API contract of the storefront client.

type CreateOrderRequest struct {
	Items           []OrderItemDTO     `json:"items"`
	TotalPrice      int64              `json:"totalPrice"`
	ShippingFee     int64              `json:"shippingFee"`
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
	PaymentID       string             `json:"paymentId"`
}

type OrderItemDTO struct {
	ProductID  string `json:"productId"`
	VariantID  string `json:"variantId"`
	Size       string `json:"size"`
	Quantity   int    `json:"quantity"`
	Price      int64  `json:"price"`
	CartItemID string `json:"cartItemId,omitempty"`
}

type ShippingAddressDTO struct {
	Receiver      string `json:"receiver"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	DetailAddress string `json:"detailAddress"`
	ZipCode       string `json:"zipCode"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	Items           []OrderItemDTO     `json:"items"`
	TotalPrice      int64              `json:"totalPrice"`
	ShippingFee     int64              `json:"shippingFee"`
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
	Status          string             `json:"status"`
	PaymentID       string             `json:"paymentId"`
	CreatedAt       string             `json:"createdAt"`
	UpdatedAt       string             `json:"updatedAt"`
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Order   any    `json:"order,omitempty"`
	Orders  any    `json:"orders,omitempty"`
}

func toDomainLines(items []OrderItemDTO) []domain.Line {
	lines := make([]domain.Line, len(items))
	for i, it := range items {
		lines[i] = domain.Line{
			ProductID:  it.ProductID,
			VariantID:  it.VariantID,
			Size:       it.Size,
			Quantity:   it.Quantity,
			UnitPrice:  it.Price,
			CartLineID: it.CartItemID,
		}
	}
	return lines
}

func toDomainAddress(a ShippingAddressDTO) domain.ShippingAddress {
	return domain.ShippingAddress{
		Receiver:      a.Receiver,
		Phone:         a.Phone,
		Address:       a.Address,
		DetailAddress: a.DetailAddress,
		ZipCode:       a.ZipCode,
	}
}

func mapOrderToResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemDTO, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = OrderItemDTO{
			ProductID:  l.ProductID,
			VariantID:  l.VariantID,
			Size:       l.Size,
			Quantity:   l.Quantity,
			Price:      l.UnitPrice,
			CartItemID: l.CartLineID,
		}
	}
	return OrderResponse{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  items,
		ShippingAddress: ShippingAddressDTO{
			Receiver:      o.ShippingAddress.Receiver,
			Phone:         o.ShippingAddress.Phone,
			Address:       o.ShippingAddress.Address,
			DetailAddress: o.ShippingAddress.DetailAddress,
			ZipCode:       o.ShippingAddress.ZipCode,
		},
		TotalPrice:  o.TotalPrice,
		ShippingFee: o.ShippingFee,
		Status:      string(o.Status),
		PaymentID:   o.PaymentRef,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.Format(time.RFC3339),
	}
}

func mapOrdersToResponse(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrderToResponse(o)
	}
	return out
}
