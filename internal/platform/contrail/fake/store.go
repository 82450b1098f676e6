package fake

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Call is one recorded request.
type Call struct {
	Method string
	Path   string
	Body   string
}

type injectedFailure struct {
	method string
	prefix string
	status int
	body   string
}

type subnet struct {
	uuid   string
	prefix string
	length int
}

type network struct {
	uuid       string
	fqName     []string
	parentUUID string
	instances  []string
	subnets    []subnet
}

type ref struct {
	target    string
	direction *string
}

type instance struct {
	uuid   string
	fqName []string
	parent string
	refs   []ref
}

type target struct {
	uuid   string
	fqName []string
}

// Store is an in-memory config store.
type Store struct {
	mu        sync.Mutex
	networks  map[string]*network
	netOrder  []string
	instances map[string]*instance
	targets   map[string]*target
	calls     []Call
	failures  []injectedFailure

	// Token, when set, must be presented in X-Auth-Token.
	Token string

	server *httptest.Server
}

// TB is the subset of testing.TB the store needs; GinkgoT() satisfies it too.
type TB interface {
	Helper()
	Cleanup(func())
}

// NewStore starts a fake store server and stops it when the test ends.
func NewStore(t TB) *Store {
	t.Helper()
	s := &Store{
		networks:  make(map[string]*network),
		instances: make(map[string]*instance),
		targets:   make(map[string]*target),
	}
	s.server = httptest.NewServer(s.routes())
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the base URL of the fake store.
func (s *Store) URL() string {
	return s.server.URL
}

// AddNetwork seeds a network with its primary routing instance, named like
// the network itself, and returns the network uuid.
func (s *Store) AddNetwork(fqName []string, parentUUID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	vn := &network{uuid: uuid.NewString(), fqName: slices.Clone(fqName), parentUUID: parentUUID}
	s.networks[vn.uuid] = vn
	s.netOrder = append(s.netOrder, vn.uuid)

	primary := &instance{
		uuid:   uuid.NewString(),
		fqName: append(slices.Clone(fqName), fqName[len(fqName)-1]),
		parent: vn.uuid,
	}
	s.instances[primary.uuid] = primary
	vn.instances = append(vn.instances, primary.uuid)
	return vn.uuid
}

// AddInstance seeds a non-primary routing instance and returns its uuid.
func (s *Store) AddInstance(networkUUID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	vn := s.networks[networkUUID]
	ri := &instance{uuid: uuid.NewString(), fqName: append(slices.Clone(vn.fqName), name), parent: vn.uuid}
	s.instances[ri.uuid] = ri
	vn.instances = append(vn.instances, ri.uuid)
	return ri.uuid
}

// AddSubnet attaches an IPAM subnet to a network.
func (s *Store) AddSubnet(networkUUID, prefix string, length int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vn := s.networks[networkUUID]
	vn.subnets = append(vn.subnets, subnet{uuid: uuid.NewString(), prefix: prefix, length: length})
}

// AddRouteTarget seeds a route target and returns its uuid.
func (s *Store) AddRouteTarget(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt := &target{uuid: uuid.NewString(), fqName: []string{key}}
	s.targets[rt.uuid] = rt
	return rt.uuid
}

// Link seeds a reference from a routing instance to a route target.
// An empty direction means both.
func (s *Store) Link(instanceUUID, targetUUID, direction string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertRef(s.instances[instanceUUID], targetUUID, direction)
}

// PrimaryInstance returns the uuid of the network's first routing instance.
func (s *Store) PrimaryInstance(networkUUID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.networks[networkUUID].instances[0]
}

// Instances returns the uuids of the network's routing instances in order.
func (s *Store) Instances(networkUUID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.networks[networkUUID].instances)
}

// HasInstance reports whether a routing instance exists.
func (s *Store) HasInstance(instanceUUID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.instances[instanceUUID]
	return ok
}

// InstanceTargets returns the keys referenced by a routing instance, mapped
// to their direction ("" for both).
func (s *Store) InstanceTargets(instanceUUID string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	ri, ok := s.instances[instanceUUID]
	if !ok {
		return out
	}
	for _, r := range ri.refs {
		dir := ""
		if r.direction != nil {
			dir = *r.direction
		}
		out[s.targets[r.target].fqName[0]] = dir
	}
	return out
}

// TargetID returns the uuid of the target with the given key, or "".
func (s *Store) TargetID(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rt := s.targetByKey(key); rt != nil {
		return rt.uuid
	}
	return ""
}

// TargetCount returns the number of route targets in the store.
func (s *Store) TargetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.targets)
}

// FailNext makes the next request matching method and path prefix fail
// with the given status and body.
func (s *Store) FailNext(method, pathPrefix string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, injectedFailure{method: method, prefix: pathPrefix, status: status, body: body})
}

// Calls returns all recorded requests.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// CallCount returns the number of recorded requests.
func (s *Store) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// CountCalls returns the number of requests matching method and path prefix.
func (s *Store) CountCalls(method, pathPrefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Method == method && strings.HasPrefix(c.Path, pathPrefix) {
			n++
		}
	}
	return n
}

// ResetCalls clears the recorded requests.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Store) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /virtual-networks", s.listNetworks)
	mux.HandleFunc("GET /virtual-network/{id}", s.getNetwork)
	mux.HandleFunc("GET /routing-instance/{id}", s.getInstance)
	mux.HandleFunc("GET /route-target/{id}", s.getTarget)
	mux.HandleFunc("POST /fqname-to-id", s.fqNameToID)
	mux.HandleFunc("POST /route-targets", s.createTarget)
	mux.HandleFunc("POST /routing-instances", s.createInstance)
	mux.HandleFunc("DELETE /route-target/{id}", s.deleteTarget)
	mux.HandleFunc("DELETE /routing-instance/{id}", s.deleteInstance)
	mux.HandleFunc("POST /ref-update", s.refUpdate)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.RequestURI(), Body: string(body)})
		if f, ok := s.popFailure(r.Method, r.URL.Path); ok {
			s.mu.Unlock()
			http.Error(w, f.body, f.status)
			return
		}
		token := s.Token
		s.mu.Unlock()

		if token != "" && r.Header.Get("X-Auth-Token") != token {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func (s *Store) popFailure(method, path string) (injectedFailure, bool) {
	for i, f := range s.failures {
		if f.method == method && strings.HasPrefix(path, f.prefix) {
			s.failures = append(s.failures[:i], s.failures[i+1:]...)
			return f, true
		}
	}
	return injectedFailure{}, false
}

func (s *Store) listNetworks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent := r.URL.Query().Get("parent_id")
	refs := []map[string]any{}
	for _, id := range s.netOrder {
		vn := s.networks[id]
		if parent != "" && vn.parentUUID != parent {
			continue
		}
		refs = append(refs, s.refJSON("virtual-network", vn.uuid, vn.fqName))
	}
	writeJSON(w, map[string]any{"virtual-networks": refs})
}

func (s *Store) getNetwork(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vn, ok := s.networks[r.PathValue("id")]
	if !ok {
		http.Error(w, "virtual-network "+r.PathValue("id")+" not found", http.StatusNotFound)
		return
	}
	ris := []map[string]any{}
	for _, id := range vn.instances {
		ris = append(ris, s.refJSON("routing-instance", id, s.instances[id].fqName))
	}
	var ipamSubnets []map[string]any
	for _, sn := range vn.subnets {
		ipamSubnets = append(ipamSubnets, map[string]any{
			"subnet_uuid": sn.uuid,
			"subnet":      map[string]any{"ip_prefix": sn.prefix, "ip_prefix_len": sn.length},
		})
	}
	obj := map[string]any{
		"uuid":              vn.uuid,
		"fq_name":           vn.fqName,
		"parent_uuid":       vn.parentUUID,
		"routing_instances": ris,
	}
	if len(ipamSubnets) > 0 {
		obj["network_ipam_refs"] = []map[string]any{{
			"to":   []string{"default-domain", "default-project", "default-network-ipam"},
			"attr": map[string]any{"ipam_subnets": ipamSubnets},
		}}
	}
	writeJSON(w, map[string]any{"virtual-network": obj})
}

func (s *Store) getInstance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ri, ok := s.instances[r.PathValue("id")]
	if !ok {
		http.Error(w, "routing-instance "+r.PathValue("id")+" not found", http.StatusNotFound)
		return
	}
	refs := []map[string]any{}
	for _, rf := range ri.refs {
		m := s.refJSON("route-target", rf.target, s.targets[rf.target].fqName)
		m["attr"] = map[string]any{"import_export": rf.direction}
		refs = append(refs, m)
	}
	obj := map[string]any{
		"uuid":        ri.uuid,
		"fq_name":     ri.fqName,
		"parent_uuid": ri.parent,
		"parent_href": s.href("virtual-network", ri.parent),
	}
	if len(refs) > 0 {
		obj["route_target_refs"] = refs
	}
	writeJSON(w, map[string]any{"routing-instance": obj})
}

func (s *Store) getTarget(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.targets[r.PathValue("id")]
	if !ok {
		http.Error(w, "route-target "+r.PathValue("id")+" not found", http.StatusNotFound)
		return
	}
	backRefs := []map[string]any{}
	for _, ri := range s.instancesReferencing(rt.uuid) {
		backRefs = append(backRefs, s.refJSON("routing-instance", ri.uuid, ri.fqName))
	}
	writeJSON(w, map[string]any{"route-target": map[string]any{
		"uuid":                       rt.uuid,
		"fq_name":                    rt.fqName,
		"name":                       rt.fqName[0],
		"routing_instance_back_refs": backRefs,
	}})
}

func (s *Store) fqNameToID(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FQName []string `json:"fq_name"`
		Type   string   `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id := s.lookup(req.Type, req.FQName); id != "" {
		writeJSON(w, map[string]string{"uuid": id})
		return
	}
	http.Error(w, fmt.Sprintf("Name %v not found", req.FQName), http.StatusNotFound)
}

func (s *Store) createTarget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RouteTarget struct {
			FQName []string `json:"fq_name"`
		} `json:"route-target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.RouteTarget.FQName) != 1 {
		http.Error(w, "invalid route-target", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := req.RouteTarget.FQName[0]
	if s.targetByKey(key) != nil {
		http.Error(w, "route-target "+key+" already exists", http.StatusConflict)
		return
	}
	rt := &target{uuid: uuid.NewString(), fqName: []string{key}}
	s.targets[rt.uuid] = rt
	writeJSON(w, map[string]any{"route-target": map[string]any{
		"uuid": rt.uuid, "fq_name": rt.fqName, "name": key, "href": s.href("route-target", rt.uuid),
	}})
}

func (s *Store) createInstance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoutingInstance struct {
			FQName     []string `json:"fq_name"`
			ParentType string   `json:"parent_type"`
		} `json:"routing-instance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.RoutingInstance.FQName) < 2 {
		http.Error(w, "invalid routing-instance", http.StatusBadRequest)
		return
	}
	if req.RoutingInstance.ParentType != "virtual-network" {
		http.Error(w, "parent_type must be virtual-network", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fqName := req.RoutingInstance.FQName
	parentID := s.lookup("virtual-network", fqName[:len(fqName)-1])
	if parentID == "" {
		http.Error(w, "parent virtual-network not found", http.StatusNotFound)
		return
	}
	if s.lookup("routing-instance", fqName) != "" {
		http.Error(w, "routing-instance already exists", http.StatusConflict)
		return
	}
	ri := &instance{uuid: uuid.NewString(), fqName: slices.Clone(fqName), parent: parentID}
	s.instances[ri.uuid] = ri
	s.networks[parentID].instances = append(s.networks[parentID].instances, ri.uuid)
	writeJSON(w, map[string]any{"routing-instance": map[string]any{
		"uuid": ri.uuid, "fq_name": ri.fqName, "parent_uuid": parentID, "href": s.href("routing-instance", ri.uuid),
	}})
}

func (s *Store) deleteTarget(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := s.targets[id]; !ok {
		http.Error(w, "route-target "+id+" not found", http.StatusNotFound)
		return
	}
	if len(s.instancesReferencing(id)) > 0 {
		http.Error(w, "Delete when resource still referred: routing_instance_back_refs", http.StatusConflict)
		return
	}
	delete(s.targets, id)
	writeJSON(w, map[string]any{})
}

func (s *Store) deleteInstance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	ri, ok := s.instances[id]
	if !ok {
		http.Error(w, "routing-instance "+id+" not found", http.StatusNotFound)
		return
	}
	vn := s.networks[ri.parent]
	vn.instances = slices.DeleteFunc(vn.instances, func(x string) bool { return x == id })
	delete(s.instances, id)
	writeJSON(w, map[string]any{})
}

func (s *Store) refUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefType   string   `json:"ref-type"`
		UUID      string   `json:"uuid"`
		RefFQName []string `json:"ref-fq-name"`
		RefUUID   string   `json:"ref-uuid"`
		Operation string   `json:"operation"`
		Type      string   `json:"type"`
		Attr      struct {
			ImportExport *string `json:"import_export"`
		} `json:"attr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Type != "routing-instance" || req.RefType != "route-target" {
		http.Error(w, "unsupported ref types", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ri, ok := s.instances[req.UUID]
	if !ok {
		http.Error(w, "routing-instance "+req.UUID+" not found", http.StatusNotFound)
		return
	}
	if _, ok := s.targets[req.RefUUID]; !ok {
		http.Error(w, "route-target "+req.RefUUID+" not found", http.StatusNotFound)
		return
	}
	switch req.Operation {
	case "ADD":
		dir := ""
		if req.Attr.ImportExport != nil {
			dir = *req.Attr.ImportExport
		}
		s.upsertRef(ri, req.RefUUID, dir)
	case "DELETE":
		ri.refs = slices.DeleteFunc(ri.refs, func(x ref) bool { return x.target == req.RefUUID })
	default:
		http.Error(w, "unknown operation "+req.Operation, http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"uuid": ri.uuid})
}

func (s *Store) upsertRef(ri *instance, targetUUID, direction string) {
	var dir *string
	if direction != "" {
		dir = &direction
	}
	for i := range ri.refs {
		if ri.refs[i].target == targetUUID {
			ri.refs[i].direction = dir
			return
		}
	}
	ri.refs = append(ri.refs, ref{target: targetUUID, direction: dir})
}

func (s *Store) lookup(kind string, fqName []string) string {
	switch kind {
	case "virtual-network":
		for _, id := range s.netOrder {
			if vn, ok := s.networks[id]; ok && slices.Equal(vn.fqName, fqName) {
				return id
			}
		}
	case "routing-instance":
		for id, ri := range s.instances {
			if slices.Equal(ri.fqName, fqName) {
				return id
			}
		}
	case "route-target":
		if len(fqName) == 1 {
			if rt := s.targetByKey(fqName[0]); rt != nil {
				return rt.uuid
			}
		}
	}
	return ""
}

func (s *Store) targetByKey(key string) *target {
	for _, rt := range s.targets {
		if rt.fqName[0] == key {
			return rt
		}
	}
	return nil
}

func (s *Store) instancesReferencing(targetUUID string) []*instance {
	var out []*instance
	for _, vnID := range s.netOrder {
		for _, riID := range s.networks[vnID].instances {
			ri := s.instances[riID]
			if slices.ContainsFunc(ri.refs, func(r ref) bool { return r.target == targetUUID }) {
				out = append(out, ri)
			}
		}
	}
	return out
}

func (s *Store) href(kind, id string) string {
	return s.server.URL + "/" + kind + "/" + id
}

func (s *Store) refJSON(kind, id string, fqName []string) map[string]any {
	return map[string]any{"uuid": id, "href": s.href(kind, id), "to": fqName}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
