package contrail

import (
	"fmt"
	"strings"
)

// Kind is a config store resource type, as used in fqname-to-id lookups
// and ref-update calls.
type Kind string

// Resource kinds handled by rtctl.
const (
	KindVirtualNetwork  Kind = "virtual-network"
	KindRoutingInstance Kind = "routing-instance"
	KindRouteTarget     Kind = "route-target"
)

// Direction is the import/export attribute on a routing-instance to
// route-target reference. The zero value means both directions.
type Direction string

// Reference directions.
const (
	DirectionBoth   Direction = ""
	DirectionImport Direction = "import"
	DirectionExport Direction = "export"
)

// ParseDirection validates a user-supplied direction. An empty string
// yields DirectionBoth.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionBoth, DirectionImport, DirectionExport:
		return Direction(s), nil
	default:
		return DirectionBoth, fmt.Errorf("%w: direction %q must be %q or %q",
			ErrInvalidArgument, s, DirectionImport, DirectionExport)
	}
}

// String renders the direction for reports.
func (d Direction) String() string {
	if d == DirectionBoth {
		return "both"
	}
	return string(d)
}

// Operation is a ref-update operation.
type Operation string

// Ref-update operations.
const (
	OperationAdd    Operation = "ADD"
	OperationDelete Operation = "DELETE"
)

// Ref is a plain reference to another resource.
type Ref struct {
	UUID   string   `json:"uuid"`
	Href   string   `json:"href,omitempty"`
	FQName []string `json:"to,omitempty"`
}

// TargetAttr is the attribute attached to a route-target reference.
type TargetAttr struct {
	ImportExport Direction `json:"import_export,omitempty"`
}

// RouteTargetRef is a routing instance's reference to a route target.
type RouteTargetRef struct {
	Ref
	Attr *TargetAttr `json:"attr,omitempty"`
}

// Direction returns the direction tag of the reference.
func (r RouteTargetRef) Direction() Direction {
	if r.Attr == nil {
		return DirectionBoth
	}
	return r.Attr.ImportExport
}

// Key returns the route-target key carried in the reference's fq-name,
// or "" when the store omitted it.
func (r RouteTargetRef) Key() string {
	if len(r.FQName) == 0 {
		return ""
	}
	return r.FQName[len(r.FQName)-1]
}

// Subnet is one IPAM subnet attached to a virtual network.
type Subnet struct {
	UUID string `json:"subnet_uuid"`
	CIDR string `json:"cidr"`
}

type ipamRef struct {
	Ref
	Attr struct {
		IPAMSubnets []struct {
			SubnetUUID string `json:"subnet_uuid"`
			Subnet     struct {
				IPPrefix    string `json:"ip_prefix"`
				IPPrefixLen int    `json:"ip_prefix_len"`
			} `json:"subnet"`
		} `json:"ipam_subnets"`
	} `json:"attr"`
}

// VirtualNetwork is a network record. It is owned by the store; rtctl only
// reads it.
type VirtualNetwork struct {
	UUID             string    `json:"uuid"`
	FQName           []string  `json:"fq_name"`
	ParentUUID       string    `json:"parent_uuid"`
	RoutingInstances []Ref     `json:"routing_instances,omitempty"`
	NetworkIPAMRefs  []ipamRef `json:"network_ipam_refs,omitempty"`
}

// TenantID returns the owning project id without dashes.
func (vn *VirtualNetwork) TenantID() string {
	return strings.ReplaceAll(vn.ParentUUID, "-", "")
}

// PrimaryInstance returns the first routing instance of the network.
func (vn *VirtualNetwork) PrimaryInstance() (Ref, bool) {
	if len(vn.RoutingInstances) == 0 {
		return Ref{}, false
	}
	return vn.RoutingInstances[0], true
}

// IsPrimary reports whether instanceID is the network's primary instance.
func (vn *VirtualNetwork) IsPrimary(instanceID string) bool {
	primary, ok := vn.PrimaryInstance()
	return ok && primary.UUID == instanceID
}

// InstanceFQName composes the fq-name of a named routing instance under vn.
func (vn *VirtualNetwork) InstanceFQName(name string) []string {
	fqName := make([]string, 0, len(vn.FQName)+1)
	fqName = append(fqName, vn.FQName...)
	return append(fqName, name)
}

// Subnets flattens the network's IPAM subnets.
func (vn *VirtualNetwork) Subnets() []Subnet {
	var subnets []Subnet
	for _, ref := range vn.NetworkIPAMRefs {
		for _, s := range ref.Attr.IPAMSubnets {
			subnets = append(subnets, Subnet{
				UUID: s.SubnetUUID,
				CIDR: fmt.Sprintf("%s/%d", s.Subnet.IPPrefix, s.Subnet.IPPrefixLen),
			})
		}
	}
	return subnets
}

// RoutingInstance is a routing-instance record.
type RoutingInstance struct {
	UUID            string           `json:"uuid"`
	FQName          []string         `json:"fq_name"`
	ParentUUID      string           `json:"parent_uuid,omitempty"`
	RouteTargetRefs []RouteTargetRef `json:"route_target_refs,omitempty"`
}

// TargetRef returns the instance's reference to targetID, if any.
func (ri *RoutingInstance) TargetRef(targetID string) (RouteTargetRef, bool) {
	for _, ref := range ri.RouteTargetRefs {
		if ref.UUID == targetID {
			return ref, true
		}
	}
	return RouteTargetRef{}, false
}

// RouteTarget is a route-target record. Its fq-name has a single component,
// the key (target:<asn>:<number>).
type RouteTarget struct {
	UUID                    string   `json:"uuid"`
	FQName                  []string `json:"fq_name"`
	Name                    string   `json:"name,omitempty"`
	RoutingInstanceBackRefs []Ref    `json:"routing_instance_back_refs,omitempty"`
}

// Key returns the route-target key.
func (rt *RouteTarget) Key() string {
	if rt.Name != "" {
		return rt.Name
	}
	if len(rt.FQName) > 0 {
		return rt.FQName[len(rt.FQName)-1]
	}
	return ""
}

// RefUpdate is the body of a ref-update call linking a routing instance to
// a route target.
type RefUpdate struct {
	InstanceUUID string
	TargetUUID   string
	TargetFQName []string
	Operation    Operation
	Direction    Direction
}
