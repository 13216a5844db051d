// Package netboxclient implements pkg/reconcile.Inventory against a
// NetBox-shaped REST API over net/http and encoding/json. It is the one
// concrete realization of the reconciliation engine's remote-inventory
// contract; anything that only needs the interface (tests, alternative
// backends) never imports this package.
package netboxclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/fleetsync/fleetsync/internal/errs"
	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/diff"
	"github.com/fleetsync/fleetsync/pkg/reconcile"
)

// path maps each reconcile.ObjectKind to its NetBox list/detail endpoint.
var path = map[reconcile.ObjectKind]string{
	reconcile.KindDevice:        "dcim/devices/",
	reconcile.KindInterface:     "dcim/interfaces/",
	reconcile.KindIPAddress:     "ipam/ip-addresses/",
	reconcile.KindVLAN:          "ipam/vlans/",
	reconcile.KindCable:         "dcim/cables/",
	reconcile.KindInventoryItem: "dcim/inventory-items/",
	reconcile.KindManufacturer:  "dcim/manufacturers/",
	reconcile.KindDeviceType:    "dcim/device-types/",
	reconcile.KindSite:          "dcim/sites/",
	reconcile.KindRole:          "dcim/device-roles/",
	reconcile.KindTenant:        "tenancy/tenants/",
}

// Config configures a Client.
type Config struct {
	// BaseURL is the NetBox root, e.g. "https://netbox.example.com/api/".
	BaseURL string
	Token   string

	HTTPTimeout time.Duration
	Retries     int
	RetryDelay  time.Duration
}

// Client is a reconcile.Inventory backed by NetBox's REST API.
type Client struct {
	cfg    Config
	http   *http.Client
	base   string
	logger *logrus.Entry
}

var _ reconcile.Inventory = (*Client)(nil)

// New builds a Client. BaseURL is normalized to end in exactly one slash.
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/") + "/"
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.httpTimeoutOrDefault()},
		base:   base,
		logger: logging.WithOperation("netboxclient"),
	}
}

func (c Config) httpTimeoutOrDefault() time.Duration {
	if c.HTTPTimeout > 0 {
		return c.HTTPTimeout
	}
	return 30 * time.Second
}

func (c Config) retryDelayOrDefault() time.Duration {
	if c.RetryDelay > 0 {
		return c.RetryDelay
	}
	return time.Second
}

// listEnvelope is NetBox's standard paginated list response shape.
type listEnvelope struct {
	Count   int               `json:"count"`
	Results []json.RawMessage `json:"results"`
}

// do sends one HTTP request, retrying transient (5xx/timeout) failures with
// a constant backoff, matching pkg/fleetssh's connection retry idiom rather
// than inventing a second one.
func (c *Client) do(ctx context.Context, method, rawpath string, query url.Values, body any) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	fullURL := c.base + strings.TrimPrefix(rawpath, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var respBody []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, fullURL, payload)
		if err != nil {
			return backoff.Permanent(err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Token "+c.cfg.Token)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrConnectFailed, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading response: %v", errs.ErrConnectFailed, err)
		}

		if resp.StatusCode >= 500 {
			c.logger.WithField("status", resp.StatusCode).Warnf("%s %s: transient failure, retrying", method, rawpath)
			return fmt.Errorf("%s %s: status %d: %s", method, rawpath, resp.StatusCode, data)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("%w: %s %s: status %d: %s",
				errs.ErrRemoteObjectRejected, method, rawpath, resp.StatusCode, data))
		}
		respBody = data
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.retryDelayOrDefault()), uint64(c.cfg.Retries)),
		ctx,
	)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}
	return respBody, nil
}

// toRemoteObject converts one NetBox JSON object into a reconcile.RemoteObject.
// Every top-level scalar field becomes a present diff.Value; nested objects
// (e.g. {"site": {"id": 3, "name": "DC1"}}) are flattened to "<field>_id" and
// "<field>" (the nested name), matching the *_device_id / *_id fields
// reconcile's cable cleanup and get-or-create logic look for.
func toRemoteObject(raw json.RawMessage, keyFields ...string) (reconcile.RemoteObject, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return reconcile.RemoteObject{}, fmt.Errorf("decode object: %w", err)
	}

	fields := map[string]diff.Value{}
	flatten("", m, fields)

	id := stringify(m["id"])
	key := ""
	if kv, ok := fields["key"]; ok && kv.Raw != "" {
		key = kv.Raw
	}
	for _, kf := range keyFields {
		if key != "" {
			break
		}
		if v, ok := fields[kf]; ok && v.Raw != "" {
			key = v.Raw
			break
		}
	}
	if key == "" {
		key = stringify(m["name"])
	}

	return reconcile.RemoteObject{ID: id, KeyValue: key, Fields: fields}, nil
}

func flatten(prefix string, m map[string]any, out map[string]diff.Value) {
	for k, v := range m {
		name := k
		if prefix != "" {
			name = prefix + "_" + k
		}
		switch t := v.(type) {
		case map[string]any:
			if id, ok := t["id"]; ok {
				out[name+"_id"] = diff.Value{Raw: stringify(id), Present: true}
			}
			if nm, ok := t["name"]; ok {
				out[name] = diff.Value{Raw: stringify(nm), Present: true}
			} else if slug, ok := t["slug"]; ok {
				out[name] = diff.Value{Raw: stringify(slug), Present: true}
			}
		case nil:
			out[name] = diff.Value{Raw: "", Present: true}
		default:
			out[name] = diff.Value{Raw: stringify(v), Present: true}
		}
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func (c *Client) listOne(ctx context.Context, kind reconcile.ObjectKind, query url.Values, keyFields ...string) (reconcile.RemoteObject, bool, error) {
	data, err := c.do(ctx, http.MethodGet, path[kind], query, nil)
	if err != nil {
		return reconcile.RemoteObject{}, false, err
	}
	var env listEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return reconcile.RemoteObject{}, false, fmt.Errorf("decode list: %w", err)
	}
	if len(env.Results) == 0 {
		return reconcile.RemoteObject{}, false, nil
	}
	obj, err := toRemoteObject(env.Results[0], keyFields...)
	if err != nil {
		return reconcile.RemoteObject{}, false, err
	}
	return obj, true, nil
}

// LookupDeviceByName finds a device by exact name.
func (c *Client) LookupDeviceByName(ctx context.Context, name string) (reconcile.RemoteObject, bool, error) {
	return c.listOne(ctx, reconcile.KindDevice, url.Values{"name": {name}}, "name")
}

// LookupDeviceByIP resolves a device via its primary IPv4 address.
func (c *Client) LookupDeviceByIP(ctx context.Context, ip string) (reconcile.RemoteObject, bool, error) {
	addrObj, found, err := c.listOne(ctx, reconcile.KindIPAddress, url.Values{"address": {ip}})
	if err != nil || !found {
		return reconcile.RemoteObject{}, false, err
	}
	deviceID := addrObj.StringField("assigned_object_device_id")
	if deviceID == "" {
		return reconcile.RemoteObject{}, false, nil
	}
	return c.getByID(ctx, reconcile.KindDevice, deviceID, "name")
}

// LookupDeviceByMAC resolves a device via an interface carrying that MAC.
func (c *Client) LookupDeviceByMAC(ctx context.Context, mac string) (reconcile.RemoteObject, bool, error) {
	ifaceObj, found, err := c.listOne(ctx, reconcile.KindInterface, url.Values{"mac_address": {mac}})
	if err != nil || !found {
		return reconcile.RemoteObject{}, false, err
	}
	deviceID := ifaceObj.StringField("device_id")
	if deviceID == "" {
		return reconcile.RemoteObject{}, false, nil
	}
	return c.getByID(ctx, reconcile.KindDevice, deviceID, "name")
}

// LookupInterface finds an interface by device id and canonical name.
func (c *Client) LookupInterface(ctx context.Context, deviceID, name string) (reconcile.RemoteObject, bool, error) {
	return c.listOne(ctx, reconcile.KindInterface, url.Values{"device_id": {deviceID}, "name": {name}}, "name")
}

func (c *Client) getByID(ctx context.Context, kind reconcile.ObjectKind, id string, keyFields ...string) (reconcile.RemoteObject, bool, error) {
	data, err := c.do(ctx, http.MethodGet, path[kind]+id+"/", nil, nil)
	if err != nil {
		return reconcile.RemoteObject{}, false, err
	}
	obj, err := toRemoteObject(data, keyFields...)
	if err != nil {
		return reconcile.RemoteObject{}, false, err
	}
	return obj, true, nil
}

// GetOrCreate looks an object up by name, creating it from name plus the
// extra fields if absent. No slug is derived here; a slug is sent only if
// extra carries one.
func (c *Client) GetOrCreate(ctx context.Context, kind reconcile.ObjectKind, name string, extra map[string]string) (reconcile.RemoteObject, error) {
	obj, found, err := c.listOne(ctx, kind, url.Values{"name": {name}}, "name")
	if err != nil {
		return reconcile.RemoteObject{}, err
	}
	if found {
		return obj, nil
	}
	fields := map[string]string{"name": name}
	for k, v := range extra {
		fields[k] = v
	}
	return c.Create(ctx, kind, fields)
}

// ListRemote lists every object of kind, filtered by Scope when set.
func (c *Client) ListRemote(ctx context.Context, kind reconcile.ObjectKind, scope reconcile.Scope) ([]reconcile.RemoteObject, error) {
	query := url.Values{"limit": {"0"}}
	if scope.Tenant != "" {
		query.Set("tenant", scope.Tenant)
	}
	if len(scope.DeviceIDs) > 0 && kind != reconcile.KindDevice {
		query.Set("device_id", strings.Join(scope.DeviceIDs, ","))
	}

	data, err := c.do(ctx, http.MethodGet, path[kind], query, nil)
	if err != nil {
		return nil, err
	}
	var env listEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	out := make([]reconcile.RemoteObject, 0, len(env.Results))
	for _, raw := range env.Results {
		obj, err := toRemoteObject(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// Create POSTs one new object.
func (c *Client) Create(ctx context.Context, kind reconcile.ObjectKind, fields map[string]string) (reconcile.RemoteObject, error) {
	body := stringFieldsToBody(fields)
	data, err := c.do(ctx, http.MethodPost, path[kind], nil, body)
	if err != nil {
		return reconcile.RemoteObject{}, err
	}
	return toRemoteObject(data)
}

// Update PATCHes an existing object's changed fields only.
func (c *Client) Update(ctx context.Context, kind reconcile.ObjectKind, id string, fields map[string]string) (reconcile.RemoteObject, error) {
	body := stringFieldsToBody(fields)
	data, err := c.do(ctx, http.MethodPatch, path[kind]+id+"/", nil, body)
	if err != nil {
		return reconcile.RemoteObject{}, err
	}
	return toRemoteObject(data)
}

// Delete removes one object by id.
func (c *Client) Delete(ctx context.Context, kind reconcile.ObjectKind, id string) error {
	_, err := c.do(ctx, http.MethodDelete, path[kind]+id+"/", nil, nil)
	return err
}

// BulkCreate POSTs an array body in one call, NetBox's native bulk-create
// idiom.
func (c *Client) BulkCreate(ctx context.Context, kind reconcile.ObjectKind, items []map[string]string) ([]reconcile.RemoteObject, error) {
	bodies := make([]map[string]string, len(items))
	copy(bodies, items)
	data, err := c.do(ctx, http.MethodPost, path[kind], nil, bodies)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrBatchRejected, err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode bulk create response: %w", err)
	}
	out := make([]reconcile.RemoteObject, 0, len(raw))
	for _, r := range raw {
		obj, err := toRemoteObject(r)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// BulkUpdate PATCHes an array body of {id, ...fields}, NetBox's native
// bulk-update idiom.
func (c *Client) BulkUpdate(ctx context.Context, kind reconcile.ObjectKind, items []reconcile.BulkUpdateItem) ([]reconcile.RemoteObject, error) {
	bodies := make([]map[string]string, 0, len(items))
	for _, it := range items {
		b := map[string]string{"id": it.ID}
		for k, v := range it.Fields {
			b[k] = v
		}
		bodies = append(bodies, b)
	}
	data, err := c.do(ctx, http.MethodPatch, path[kind], nil, bodies)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrBatchRejected, err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode bulk update response: %w", err)
	}
	out := make([]reconcile.RemoteObject, 0, len(raw))
	for _, r := range raw {
		obj, err := toRemoteObject(r)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// BulkDelete DELETEs an array body of {id}, NetBox's native bulk-delete
// idiom.
func (c *Client) BulkDelete(ctx context.Context, kind reconcile.ObjectKind, ids []string) error {
	bodies := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		bodies = append(bodies, map[string]string{"id": id})
	}
	_, err := c.do(ctx, http.MethodDelete, path[kind], nil, bodies)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrBatchRejected, err)
	}
	return nil
}

// AssignMAC sets an interface's mac_address via a dedicated PATCH, matching
// reconcile's post-create/update MAC side channel.
func (c *Client) AssignMAC(ctx context.Context, interfaceID, mac string) error {
	_, err := c.do(ctx, http.MethodPatch, path[reconcile.KindInterface]+interfaceID+"/", nil, map[string]string{"mac_address": mac})
	return err
}

func stringFieldsToBody(fields map[string]string) map[string]string {
	body := make(map[string]string, len(fields))
	for k, v := range fields {
		body[k] = v
	}
	return body
}
