package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fleetsync/fleetsync/pkg/diff"
)

// fakeInventory is an in-memory stand-in for the remote-inventory client,
// shared by every *_test.go file in this package.
type fakeInventory struct {
	mu sync.Mutex

	nextID int

	objects      map[ObjectKind]map[string]RemoteObject // id -> object
	nameIndex    map[ObjectKind]map[string]string       // name -> id, for get-or-create
	interfaces   map[string]RemoteObject                // "deviceID/name" -> object
	deviceByName map[string]RemoteObject
	deviceByIP   map[string]RemoteObject
	deviceByMAC  map[string]RemoteObject

	failSingle     map[string]bool // "create:<name>", "update:<id>", "delete:<id>"
	failBulkCreate map[ObjectKind]bool
	failBulkUpdate map[ObjectKind]bool
	failBulkDelete map[ObjectKind]bool
	failList       map[ObjectKind]bool

	assignedMAC map[string]string
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		objects:        map[ObjectKind]map[string]RemoteObject{},
		nameIndex:      map[ObjectKind]map[string]string{},
		interfaces:     map[string]RemoteObject{},
		deviceByName:   map[string]RemoteObject{},
		deviceByIP:     map[string]RemoteObject{},
		deviceByMAC:    map[string]RemoteObject{},
		failSingle:     map[string]bool{},
		failBulkCreate: map[ObjectKind]bool{},
		failBulkUpdate: map[ObjectKind]bool{},
		failBulkDelete: map[ObjectKind]bool{},
		failList:       map[ObjectKind]bool{},
		assignedMAC:    map[string]string{},
	}
}

func (f *fakeInventory) allocID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeInventory) LookupDeviceByName(ctx context.Context, name string) (RemoteObject, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.deviceByName[name]
	return obj, ok, nil
}

func (f *fakeInventory) LookupDeviceByIP(ctx context.Context, ip string) (RemoteObject, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.deviceByIP[ip]
	return obj, ok, nil
}

func (f *fakeInventory) LookupDeviceByMAC(ctx context.Context, mac string) (RemoteObject, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.deviceByMAC[mac]
	return obj, ok, nil
}

func (f *fakeInventory) LookupInterface(ctx context.Context, deviceID, name string) (RemoteObject, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.interfaces[deviceID+"/"+name]
	return obj, ok, nil
}

func (f *fakeInventory) GetOrCreate(ctx context.Context, kind ObjectKind, name string, extra map[string]string) (RemoteObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nameIndex[kind] == nil {
		f.nameIndex[kind] = map[string]string{}
	}
	if id, ok := f.nameIndex[kind][name]; ok {
		return f.objects[kind][id], nil
	}
	id := f.allocID()
	fv := map[string]diff.Value{"name": present(name), "slug": present(slug(name))}
	for k, v := range extra {
		fv[k] = present(v)
	}
	obj := RemoteObject{ID: id, KeyValue: name, Fields: fv}
	if f.objects[kind] == nil {
		f.objects[kind] = map[string]RemoteObject{}
	}
	f.objects[kind][id] = obj
	f.nameIndex[kind][name] = id
	return obj, nil
}

func (f *fakeInventory) ListRemote(ctx context.Context, kind ObjectKind, scope Scope) ([]RemoteObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList[kind] {
		return nil, errors.New("list failed")
	}
	out := make([]RemoteObject, 0, len(f.objects[kind]))
	for _, o := range f.objects[kind] {
		out = append(out, o)
	}
	return out, nil
}

func keyFromFields(kind ObjectKind, fieldsMap map[string]string) string {
	if k, ok := fieldsMap["key"]; ok {
		return k
	}
	switch kind {
	case KindInterface:
		return fieldsMap["device_key"] + ":" + fieldsMap["name"]
	case KindIPAddress:
		return fieldsMap["address"]
	case KindVLAN:
		return fieldsMap["vid"]
	case KindInventoryItem:
		return fieldsMap["device_key"] + ":" + fieldsMap["serial"]
	case KindCable:
		return fieldsMap["a"] + "|" + fieldsMap["b"]
	default:
		return fieldsMap["name"]
	}
}

func (f *fakeInventory) Create(ctx context.Context, kind ObjectKind, fieldsMap map[string]string) (RemoteObject, error) {
	name := fieldsMap["name"]
	f.mu.Lock()
	fail := f.failSingle["create:"+name]
	f.mu.Unlock()
	if fail {
		return RemoteObject{}, errors.New("create rejected")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.allocID()
	fv := make(map[string]diff.Value, len(fieldsMap))
	for k, v := range fieldsMap {
		fv[k] = present(v)
	}
	obj := RemoteObject{ID: id, KeyValue: keyFromFields(kind, fieldsMap), Fields: fv}
	if f.objects[kind] == nil {
		f.objects[kind] = map[string]RemoteObject{}
	}
	f.objects[kind][id] = obj
	if kind == KindDevice {
		f.deviceByName[name] = obj
		if host := fieldsMap["host"]; host != "" {
			f.deviceByIP[host] = obj
		}
	}
	if kind == KindInterface {
		f.interfaces[fieldsMap["device_id"]+"/"+fieldsMap["name"]] = obj
	}
	return obj, nil
}

func (f *fakeInventory) Update(ctx context.Context, kind ObjectKind, id string, fieldsMap map[string]string) (RemoteObject, error) {
	f.mu.Lock()
	fail := f.failSingle["update:"+id]
	f.mu.Unlock()
	if fail {
		return RemoteObject{}, errors.New("update rejected")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.objects[kind][id]
	if !ok {
		return RemoteObject{}, fmt.Errorf("object %s not found", id)
	}
	for k, v := range fieldsMap {
		existing.Fields[k] = present(v)
	}
	f.objects[kind][id] = existing
	return existing, nil
}

func (f *fakeInventory) Delete(ctx context.Context, kind ObjectKind, id string) error {
	f.mu.Lock()
	fail := f.failSingle["delete:"+id]
	f.mu.Unlock()
	if fail {
		return errors.New("delete rejected")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects[kind], id)
	return nil
}

func (f *fakeInventory) BulkCreate(ctx context.Context, kind ObjectKind, items []map[string]string) ([]RemoteObject, error) {
	f.mu.Lock()
	fail := f.failBulkCreate[kind]
	f.mu.Unlock()
	if fail {
		return nil, errors.New("bulk create rejected")
	}
	out := make([]RemoteObject, 0, len(items))
	for _, it := range items {
		obj, err := f.Create(ctx, kind, it)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func (f *fakeInventory) BulkUpdate(ctx context.Context, kind ObjectKind, items []BulkUpdateItem) ([]RemoteObject, error) {
	f.mu.Lock()
	fail := f.failBulkUpdate[kind]
	f.mu.Unlock()
	if fail {
		return nil, errors.New("bulk update rejected")
	}
	out := make([]RemoteObject, 0, len(items))
	for _, it := range items {
		obj, err := f.Update(ctx, kind, it.ID, it.Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func (f *fakeInventory) BulkDelete(ctx context.Context, kind ObjectKind, ids []string) error {
	f.mu.Lock()
	fail := f.failBulkDelete[kind]
	f.mu.Unlock()
	if fail {
		return errors.New("bulk delete rejected")
	}
	for _, id := range ids {
		if err := f.Delete(ctx, kind, id); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeInventory) AssignMAC(ctx context.Context, interfaceID, mac string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignedMAC[interfaceID] = mac
	return nil
}

var _ Inventory = (*fakeInventory)(nil)
