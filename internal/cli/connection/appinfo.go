package connection

import (
	"sort"

	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/pkg/holohash"
)

// Cell kinds reported in app info.
const (
	CellProvisioned = "provisioned"
	CellCloned      = "cloned"
	CellStem        = "stem"
)

// AppInfo describes an installed app.
type AppInfo struct {
	InstalledAppID string             `json:"installed_app_id" yaml:"installed_app_id"`
	AgentPubKey    *holohash.HoloHash `json:"agent_pub_key,omitempty" yaml:"agent_pub_key,omitempty"`
	Status         string             `json:"status" yaml:"status"`
	Cells          []AppCell          `json:"cells" yaml:"cells"`
}

// AppCell is one cell of an app under its role.
type AppCell struct {
	RoleName string           `json:"role_name" yaml:"role_name"`
	Kind     string           `json:"kind" yaml:"kind"`
	Name     string           `json:"name,omitempty" yaml:"name,omitempty"`
	CellID   *holohash.CellID `json:"cell_id,omitempty" yaml:"cell_id,omitempty"`
}

// parseAppInfo reads a schema-less app info document. Conductors have
// shipped three layouts over time:
//
//	cell_data: [{cell_id, role_name|role_id|cell_nick}], active: bool
//	cell_info: {role: [{provisioned: {...}}]}
//	cell_info: {role: [{type: "provisioned", value: {...}}]}
func parseAppInfo(v interface{}) (*AppInfo, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, domain.ErrUnexpectedResponse.WithDetailsf("app info is %T, want map", v)
	}

	info := &AppInfo{
		InstalledAppID: stringField(m, "installed_app_id"),
		Status:         parseStatus(m),
		Cells:          []AppCell{},
	}

	if b, ok := m["agent_pub_key"].([]byte); ok {
		key, err := holohash.FromBytesOfType(b, holohash.TypeAgent)
		if err != nil {
			return nil, domain.ErrUnexpectedResponse.WithDetails("app info agent key").WithCause(err)
		}
		info.AgentPubKey = &key
	}

	if data, ok := m["cell_data"].([]interface{}); ok {
		for _, item := range data {
			cm, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			cell, err := parseCellIDValue(cm["cell_id"])
			if err != nil {
				return nil, err
			}
			role := stringField(cm, "role_name")
			if role == "" {
				role = stringField(cm, "role_id")
			}
			if role == "" {
				role = stringField(cm, "cell_nick")
			}
			info.Cells = append(info.Cells, AppCell{RoleName: role, Kind: CellProvisioned, CellID: cell})
		}
		return info, nil
	}

	cellInfo, _ := m["cell_info"].(map[string]interface{})
	roles := make([]string, 0, len(cellInfo))
	for role := range cellInfo {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		list, _ := cellInfo[role].([]interface{})
		for _, item := range list {
			cell, err := parseCellInfo(role, item)
			if err != nil {
				return nil, err
			}
			info.Cells = append(info.Cells, cell)
		}
	}
	return info, nil
}

func parseCellInfo(role string, v interface{}) (AppCell, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return AppCell{}, domain.ErrUnexpectedResponse.WithDetailsf("cell info for role %q is %T", role, v)
	}

	kind, body := "", map[string]interface{}(nil)
	if t, ok := m["type"].(string); ok {
		kind = t
		body, _ = m["value"].(map[string]interface{})
	} else {
		for k, val := range m {
			kind = k
			body, _ = val.(map[string]interface{})
			break
		}
	}

	cell := AppCell{RoleName: role, Kind: kind}
	if body == nil {
		return cell, nil
	}
	cell.Name = stringField(body, "name")
	if raw, ok := body["cell_id"]; ok {
		id, err := parseCellIDValue(raw)
		if err != nil {
			return AppCell{}, err
		}
		cell.CellID = id
	}
	return cell, nil
}

// parseCellIDValue accepts a cell id as a [dna, agent] array or as a
// {dna_hash, agent_pub_key} map.
func parseCellIDValue(v interface{}) (*holohash.CellID, error) {
	var pair [][]byte
	switch t := v.(type) {
	case []interface{}:
		for _, e := range t {
			b, ok := e.([]byte)
			if !ok {
				return nil, domain.ErrUnexpectedResponse.WithDetailsf("cell id element is %T", e)
			}
			pair = append(pair, b)
		}
	case map[string]interface{}:
		dna, _ := t["dna_hash"].([]byte)
		agent, _ := t["agent_pub_key"].([]byte)
		pair = [][]byte{dna, agent}
	default:
		return nil, domain.ErrUnexpectedResponse.WithDetailsf("cell id is %T", v)
	}

	cell, err := holohash.CellIDFromWire(pair)
	if err != nil {
		return nil, domain.ErrUnexpectedResponse.WithDetails("app info cell id").WithCause(err)
	}
	return &cell, nil
}

// parseStatus flattens the status variants ("running", {running: nil},
// {type: "running"}, or a legacy active flag) to a name.
func parseStatus(m map[string]interface{}) string {
	switch s := m["status"].(type) {
	case string:
		return s
	case map[string]interface{}:
		if t, ok := s["type"].(string); ok {
			return t
		}
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			return keys[0]
		}
	}
	if active, ok := m["active"].(bool); ok {
		if active {
			return "active"
		}
		return "inactive"
	}
	return ""
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
