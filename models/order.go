package models

import (
	"strconv"
	"strings"
	"time"
)

// OrderData is the checkout submission assembled from a cart snapshot and
// the shipping form. Monetary amounts are VND. Address ids stay strings
// here; the wire mapping converts them.
type OrderData struct {
	TotalPrice         int64       `json:"totalPrice"`
	TotalPriceDiscount int64       `json:"totalPriceDiscount"`
	TotalPricePaid     int64       `json:"totalPricePaid"`
	FullName           string      `json:"fullName"`
	IsPayment          bool        `json:"isPayment"`
	PaymentAt          time.Time   `json:"paymentAt"`
	FromAt             time.Time   `json:"fromAt"`
	ToAt               time.Time   `json:"toAt"`
	Email              string      `json:"email,omitempty"`
	PhoneNumber        string      `json:"phoneNumber"`
	PaymentMethod      string      `json:"paymentMethod"`
	ShippingAddress    string      `json:"shippingAddress"`
	Date               time.Time   `json:"date"`
	Promotion          string      `json:"promotion"`
	ProvinceID         string      `json:"provinceId,omitempty"`
	DistrictID         string      `json:"districtId,omitempty"`
	WardID             string      `json:"wardId,omitempty"`
	Goods              []OrderGood `json:"goods"`
}

type OrderGood struct {
	GoodID   string `json:"goodId"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// OrderPayload matches the backend OrderViewModel field for field.
// Casing and nullability matter; the backend rejects anything else.
type OrderPayload struct {
	TotalPrice         int64         `json:"TotalPrice"`
	TotalPriceDiscount int64         `json:"TotalPriceDiscount"`
	TotalPricePaid     int64         `json:"TotalPricePaid"`
	Tell               string        `json:"Tell"`
	FullName           string        `json:"FullName"`
	IsPayment          bool          `json:"IsPayment"`
	PaymentAt          time.Time     `json:"PaymentAt"`
	FromAt             time.Time     `json:"FromAt"`
	ToAt               time.Time     `json:"ToAt"`
	Broker             *string       `json:"Broker"`
	ProvinceID         *int          `json:"ProvinceId"`
	WardID             *int          `json:"WardId"`
	DistrictID         *int          `json:"DistrictId"`
	Identifier         *string       `json:"Identifier"`
	ShippingAddress    string        `json:"ShippingAddress"`
	Email              *string       `json:"Email"`
	PhoneNumber        string        `json:"PhoneNumber"`
	PaymentMethod      string        `json:"PaymentMethod"`
	Date               time.Time     `json:"Date"`
	Promotion          string        `json:"Promotion"`
	Goods              []GoodPayload `json:"Goods"`
}

type GoodPayload struct {
	GoodID           int   `json:"GoodId"`
	Quantity         int   `json:"Quantity"`
	Price            int64 `json:"Price"`
	AdultQuantity    *int  `json:"AdultQuantity"`
	ChildrenQuantity *int  `json:"ChildrenQuantity"`
}

// BackendPayload maps OrderData onto the wire shape. Non-numeric good ids
// degrade to 0, address ids to null; the backend contract tolerates both.
func (d OrderData) BackendPayload() OrderPayload {
	goods := make([]GoodPayload, 0, len(d.Goods))
	for _, g := range d.Goods {
		goodID := 0
		if n, ok := parseIntField(g.GoodID); ok {
			goodID = n
		}
		goods = append(goods, GoodPayload{
			GoodID:   goodID,
			Quantity: g.Quantity,
			Price:    g.Price,
		})
	}

	var email *string
	if d.Email != "" {
		email = &d.Email
	}

	return OrderPayload{
		TotalPrice:         d.TotalPrice,
		TotalPriceDiscount: d.TotalPriceDiscount,
		TotalPricePaid:     d.TotalPricePaid,
		Tell:               d.PhoneNumber,
		FullName:           d.FullName,
		IsPayment:          d.IsPayment,
		PaymentAt:          d.PaymentAt,
		FromAt:             d.FromAt,
		ToAt:               d.ToAt,
		ProvinceID:         nullableInt(d.ProvinceID),
		WardID:             nullableInt(d.WardID),
		DistrictID:         nullableInt(d.DistrictID),
		ShippingAddress:    d.ShippingAddress,
		Email:              email,
		PhoneNumber:        d.PhoneNumber,
		PaymentMethod:      d.PaymentMethod,
		Date:               d.Date,
		Promotion:          d.Promotion,
		Goods:              goods,
	}
}

func parseIntField(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	// the storefront sometimes carries ids like "12.0"; truncate like the
	// original mapper did
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

func nullableInt(s string) *int {
	if n, ok := parseIntField(s); ok {
		return &n
	}
	return nil
}

// CheckoutEvent is published to the checkout exchange after the backend
// confirms an order.
type CheckoutEvent struct {
	UserID    int       `json:"user_id"`
	Type      string    `json:"type"` // submitted, reconcile
	Total     int64     `json:"total"`
	ItemCount int       `json:"item_count"`
	Occurred  time.Time `json:"occurred"`
}
