// Package checkout turns a cart snapshot plus the shipping form into the
// order submission sent to the storefront backend.
package checkout

import (
	"errors"
	"strings"
	"time"

	"cart-service/config"
	"cart-service/models"
)

// ShippingForm carries the validated checkout form fields. Callers must
// reject empty name, phone, street address or province/district/ward before
// assembling; the assembler assumes that already happened.
type ShippingForm struct {
	FullName      string `json:"full_name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Email         string `json:"email"`
	Address       string `json:"address" binding:"required"`
	ProvinceID    string `json:"province_id" binding:"required"`
	DistrictID    string `json:"district_id" binding:"required"`
	WardID        string `json:"ward_id" binding:"required"`
	Note          string `json:"note"`
	PaymentMethod string `json:"payment_method"`
	Promotion     string `json:"promotion"`
}

// AddressNames are the resolved display names of the selected address
// chain. Empty names are dropped from the shipping address string.
type AddressNames struct {
	Province string
	District string
	Ward     string
}

var ErrEmptyCart = errors.New("checkout: cart is empty")

// Assembler applies the totals business rules. Fee and threshold come from
// config; the defaults (30 000 VND, free above 2 000 000 VND) are the
// storefront's fixed values.
type Assembler struct {
	shippingFee      int64
	freeShippingOver int64
}

func NewAssembler(cfg *config.Config) *Assembler {
	return &Assembler{
		shippingFee:      cfg.ShippingFee,
		freeShippingOver: cfg.FreeShippingOver,
	}
}

// ShippingFee returns the fee for the given subtotal. Free shipping applies
// strictly above the threshold, not at it.
func (a *Assembler) ShippingFee(subtotal int64) int64 {
	if subtotal > a.freeShippingOver {
		return 0
	}
	return a.shippingFee
}

// Assemble builds the order submission from a cart snapshot taken in the
// same request that triggered checkout. now is reused for every timestamp
// field. The cart must not be empty.
func (a *Assembler) Assemble(snapshot models.CartState, form ShippingForm, names AddressNames, now time.Time) (models.OrderData, error) {
	if len(snapshot.Items) == 0 {
		return models.OrderData{}, ErrEmptyCart
	}

	subtotal := snapshot.Total
	total := subtotal + a.ShippingFee(subtotal)

	goods := make([]models.OrderGood, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		goods = append(goods, models.OrderGood{
			GoodID:   item.ID,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	return models.OrderData{
		TotalPrice:         total,
		TotalPriceDiscount: 0,
		TotalPricePaid:     total,
		FullName:           form.FullName,
		IsPayment:          true,
		PaymentAt:          now,
		FromAt:             now,
		ToAt:               now,
		Email:              form.Email,
		PhoneNumber:        form.Phone,
		PaymentMethod:      form.PaymentMethod,
		ShippingAddress:    BuildShippingAddress(form.Address, names),
		Date:               now,
		Promotion:          form.Promotion,
		ProvinceID:         form.ProvinceID,
		DistrictID:         form.DistrictID,
		WardID:             form.WardID,
		Goods:              goods,
	}, nil
}

// BuildShippingAddress joins street, ward, district and province names in
// that order, skipping empty parts.
func BuildShippingAddress(street string, names AddressNames) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{street, names.Ward, names.District, names.Province} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
