package contrail

import (
	"context"
	"net/http"
	"net/url"
)

// ListNetworks returns references to the networks visible to the client,
// restricted to parentID when it is non-empty.
func (c *RealClient) ListNetworks(ctx context.Context, parentID string) ([]Ref, error) {
	path := "/virtual-networks"
	if parentID != "" {
		path += "?" + url.Values{"parent_id": []string{parentID}}.Encode()
	}
	var resp struct {
		Networks []Ref `json:"virtual-networks"`
	}
	if err := c.read(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Networks, nil
}

// GetNetwork returns the network with the given uuid.
func (c *RealClient) GetNetwork(ctx context.Context, id string) (*VirtualNetwork, error) {
	return getResource[VirtualNetwork](ctx, c, KindVirtualNetwork, id)
}
