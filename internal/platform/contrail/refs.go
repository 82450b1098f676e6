package contrail

import (
	"context"
	"fmt"
	"net/http"
)

type fqNameRequest struct {
	FQName []string `json:"fq_name"`
	Type   Kind     `json:"type"`
}

// FQNameToID resolves an fq-name to a uuid.
func (c *RealClient) FQNameToID(ctx context.Context, kind Kind, fqName []string) (string, error) {
	if len(fqName) == 0 {
		return "", fmt.Errorf("%w: empty %s fq-name", ErrInvalidArgument, kind)
	}
	var resp struct {
		UUID string `json:"uuid"`
	}
	if err := c.read(ctx, http.MethodPost, "/fqname-to-id", fqNameRequest{FQName: fqName, Type: kind}, &resp); err != nil {
		return "", err
	}
	if resp.UUID == "" {
		return "", fmt.Errorf("%w: fqname-to-id returned no uuid for %s %v", ErrStoreUnavailable, kind, fqName)
	}
	return resp.UUID, nil
}

type refUpdateAttr struct {
	// A nil ImportExport is sent as null, meaning both directions.
	ImportExport *Direction `json:"import_export"`
}

type refUpdateRequest struct {
	RefType   Kind          `json:"ref-type"`
	UUID      string        `json:"uuid"`
	RefFQName []string      `json:"ref-fq-name"`
	RefUUID   string        `json:"ref-uuid"`
	Operation Operation     `json:"operation"`
	Type      Kind          `json:"type"`
	Attr      refUpdateAttr `json:"attr"`
}

// UpdateRef adds or removes a routing instance's reference to a route target.
func (c *RealClient) UpdateRef(ctx context.Context, update RefUpdate) error {
	switch update.Operation {
	case OperationAdd, OperationDelete:
	default:
		return fmt.Errorf("%w: unknown ref-update operation %q", ErrInvalidArgument, update.Operation)
	}

	body := refUpdateRequest{
		RefType:   KindRouteTarget,
		UUID:      update.InstanceUUID,
		RefFQName: update.TargetFQName,
		RefUUID:   update.TargetUUID,
		Operation: update.Operation,
		Type:      KindRoutingInstance,
	}
	if update.Direction != DirectionBoth {
		dir := update.Direction
		body.Attr.ImportExport = &dir
	}
	return c.write(ctx, http.MethodPost, "/ref-update", body, nil)
}
