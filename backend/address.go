package backend

import "context"

// AddressItem is one entry of the province/district/ward lists.
type AddressItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// AddressLookup resolves the display names used when building the shipping
// address string.
type AddressLookup interface {
	GetProvinces(ctx context.Context) ([]AddressItem, error)
	GetDistricts(ctx context.Context, provinceID string) ([]AddressItem, error)
	GetWards(ctx context.Context, districtID string) ([]AddressItem, error)
}

// the backend wraps list responses in a data envelope
type addressEnvelope struct {
	Data []AddressItem `json:"data"`
}

func (c *Client) GetProvinces(ctx context.Context) ([]AddressItem, error) {
	var env addressEnvelope
	if err := c.getJSON(ctx, "/WebAddress/getProvince", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) GetDistricts(ctx context.Context, provinceID string) ([]AddressItem, error) {
	var env addressEnvelope
	if err := c.getJSON(ctx, "/WebAddress/getDistrict/"+provinceID, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) GetWards(ctx context.Context, districtID string) ([]AddressItem, error) {
	var env addressEnvelope
	if err := c.getJSON(ctx, "/WebAddress/getWard/"+districtID, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// FindName returns the name for id, or "" when the id is absent so the
// caller can drop the part from the shipping address.
func FindName(items []AddressItem, id string) string {
	for _, item := range items {
		if item.ID == id {
			return item.Name
		}
	}
	return ""
}
