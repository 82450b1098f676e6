// Package inventory reads networks together with their routing instances and
// route targets, for reports.
package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/imamik/rtctl/internal/platform/contrail"
	"github.com/imamik/rtctl/internal/util/async"
)

// readConcurrency bounds parallel network reads when listing.
const readConcurrency = 8

// TargetView is one association of a routing instance.
type TargetView struct {
	UUID      string `json:"uuid"`
	Key       string `json:"target"`
	Direction string `json:"direction"`
}

// InstanceView is a routing instance and its associations.
type InstanceView struct {
	UUID    string       `json:"uuid"`
	Name    string       `json:"name"`
	Primary bool         `json:"primary"`
	Targets []TargetView `json:"targets"`
}

// NetworkView is a network as shown in reports.
type NetworkView struct {
	UUID      string            `json:"uuid"`
	Name      string            `json:"name"`
	TenantID  string            `json:"tenant_id"`
	Subnets   []contrail.Subnet `json:"subnets"`
	Instances []InstanceView    `json:"routing_instances"`
}

// Reader builds views from the store. References that vanish between reads
// are skipped and logged; any other failure is returned.
type Reader struct {
	store contrail.ConfigStore
	log   logr.Logger
}

// NewReader creates a reader backed by store.
func NewReader(store contrail.ConfigStore, log logr.Logger) *Reader {
	return &Reader{store: store, log: log}
}

// Network reads one network by uuid.
func (r *Reader) Network(ctx context.Context, id string) (*NetworkView, error) {
	vn, err := r.store.GetNetwork(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("virtual-network %s: %w", id, err)
	}
	view := &NetworkView{
		UUID:      vn.UUID,
		Name:      strings.Join(vn.FQName, ":"),
		TenantID:  vn.TenantID(),
		Subnets:   vn.Subnets(),
		Instances: []InstanceView{},
	}
	for i, ref := range vn.RoutingInstances {
		iv, err := r.instance(ctx, ref.UUID)
		if contrail.IsNotFound(err) {
			r.log.Info("skipping unreadable routing instance", "network", vn.UUID, "instance", ref.UUID)
			continue
		}
		if err != nil {
			return nil, err
		}
		iv.Primary = i == 0
		view.Instances = append(view.Instances, *iv)
	}
	return view, nil
}

func (r *Reader) instance(ctx context.Context, id string) (*InstanceView, error) {
	ri, err := r.store.GetRoutingInstance(ctx, id)
	if err != nil {
		return nil, err
	}
	iv := &InstanceView{UUID: ri.UUID, Targets: []TargetView{}}
	if len(ri.FQName) > 0 {
		iv.Name = ri.FQName[len(ri.FQName)-1]
	}
	for _, ref := range ri.RouteTargetRefs {
		key := ref.Key()
		if key == "" {
			rt, err := r.store.GetRouteTarget(ctx, ref.UUID)
			if contrail.IsNotFound(err) {
				r.log.Info("skipping unreadable route target", "instance", ri.UUID, "target", ref.UUID)
				continue
			}
			if err != nil {
				return nil, err
			}
			key = rt.Key()
		}
		iv.Targets = append(iv.Targets, TargetView{UUID: ref.UUID, Key: key, Direction: ref.Direction().String()})
	}
	return iv, nil
}

// Networks reads all networks, or those of one tenant when tenant is a
// non-empty dashed uuid.
func (r *Reader) Networks(ctx context.Context, tenant string) ([]NetworkView, error) {
	refs, err := r.store.ListNetworks(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to list virtual networks: %w", err)
	}
	tenantKey := strings.ReplaceAll(tenant, "-", "")

	read := make([]*NetworkView, len(refs))
	err = async.ForEach(ctx, len(refs), readConcurrency, func(ctx context.Context, i int) error {
		view, err := r.Network(ctx, refs[i].UUID)
		if contrail.IsNotFound(err) {
			r.log.Info("skipping unreadable network", "network", refs[i].UUID)
			return nil
		}
		read[i] = view
		return err
	})
	if err != nil {
		return nil, err
	}

	views := []NetworkView{}
	for _, view := range read {
		if view == nil || (tenantKey != "" && view.TenantID != tenantKey) {
			continue
		}
		views = append(views, *view)
	}
	return views, nil
}

// NetworksByTarget reads the networks whose routing instances reference the
// route target, in back-reference order without duplicates.
func (r *Reader) NetworksByTarget(ctx context.Context, targetID string) ([]NetworkView, error) {
	rt, err := r.store.GetRouteTarget(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("route-target %s: %w", targetID, err)
	}
	seen := make(map[string]bool)
	views := []NetworkView{}
	for _, back := range rt.RoutingInstanceBackRefs {
		ri, err := r.store.GetRoutingInstance(ctx, back.UUID)
		if contrail.IsNotFound(err) {
			r.log.Info("skipping unreadable routing instance", "target", targetID, "instance", back.UUID)
			continue
		}
		if err != nil {
			return nil, err
		}
		if ri.ParentUUID == "" || seen[ri.ParentUUID] {
			continue
		}
		seen[ri.ParentUUID] = true
		view, err := r.Network(ctx, ri.ParentUUID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// NetworkByInstance reads the network owning a routing instance.
func (r *Reader) NetworkByInstance(ctx context.Context, instanceID string) (*NetworkView, error) {
	ri, err := r.store.GetRoutingInstance(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("routing-instance %s: %w", instanceID, err)
	}
	if ri.ParentUUID == "" {
		return nil, fmt.Errorf("%w: routing-instance %s has no parent network", contrail.ErrNotFound, instanceID)
	}
	return r.Network(ctx, ri.ParentUUID)
}
