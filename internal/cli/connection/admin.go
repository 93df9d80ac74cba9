package connection

import (
	"context"

	"github.com/yndnr/hcstate-go/internal/cli/connection/wire"
	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/pkg/holohash"
)

// StatusFilterRunning selects apps whose cells are running.
const StatusFilterRunning = "running"

// AdminClient issues calls on a conductor's admin interface.
type AdminClient struct {
	conn *Conn
}

// NewAdminClient wraps an admin interface connection.
func NewAdminClient(conn *Conn) *AdminClient {
	return &AdminClient{conn: conn}
}

// Conn returns the underlying connection.
func (a *AdminClient) Conn() *Conn {
	return a.conn
}

// ListDnas returns the hashes of all installed DNAs.
func (a *AdminClient) ListDnas(ctx context.Context) ([]holohash.HoloHash, error) {
	raw, err := a.conn.Request(ctx, "list_dnas", nil, "dnas_listed")
	if err != nil {
		return nil, err
	}
	var items [][]byte
	if err := wire.DecodeValue(raw, &items); err != nil {
		return nil, domain.ErrUnexpectedResponse.Wrap(err)
	}

	dnas := make([]holohash.HoloHash, 0, len(items))
	for _, b := range items {
		h, err := holohash.FromBytesOfType(b, holohash.TypeDna)
		if err != nil {
			return nil, domain.ErrUnexpectedResponse.WithDetails("list_dnas returned an invalid hash").WithCause(err)
		}
		dnas = append(dnas, h)
	}
	return dnas, nil
}

// ListCellIDs returns every cell the conductor runs, in conductor order.
// Positions in this list are the indexes accepted wherever a cell is
// named.
func (a *AdminClient) ListCellIDs(ctx context.Context) ([]holohash.CellID, error) {
	raw, err := a.conn.Request(ctx, "list_cell_ids", nil, "cell_ids_listed")
	if err != nil {
		return nil, err
	}
	var items [][][]byte
	if err := wire.DecodeValue(raw, &items); err != nil {
		return nil, domain.ErrUnexpectedResponse.Wrap(err)
	}

	cells := make([]holohash.CellID, 0, len(items))
	for _, pair := range items {
		cell, err := holohash.CellIDFromWire(pair)
		if err != nil {
			return nil, domain.ErrUnexpectedResponse.WithDetails("list_cell_ids returned an invalid cell id").WithCause(err)
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// ListApps returns the installed apps matching statusFilter. An empty
// filter lists every app.
func (a *AdminClient) ListApps(ctx context.Context, statusFilter string) ([]AppInfo, error) {
	args := map[string]interface{}{}
	if statusFilter != "" {
		args["status_filter"] = statusFilter
	}
	raw, err := a.conn.Request(ctx, "list_apps", args, "apps_listed")
	if err != nil {
		return nil, err
	}
	var items []interface{}
	if err := wire.DecodeValue(raw, &items); err != nil {
		return nil, domain.ErrUnexpectedResponse.Wrap(err)
	}

	apps := make([]AppInfo, 0, len(items))
	for _, item := range items {
		info, err := parseAppInfo(item)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *info)
	}
	return apps, nil
}

// ListActiveAppIDs returns the ids of running apps.
func (a *AdminClient) ListActiveAppIDs(ctx context.Context) ([]string, error) {
	apps, err := a.ListApps(ctx, StatusFilterRunning)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(apps))
	for i, app := range apps {
		ids[i] = app.InstalledAppID
	}
	return ids, nil
}

// DumpState returns the conductor's JSON dump of a cell's state.
func (a *AdminClient) DumpState(ctx context.Context, cell holohash.CellID) (string, error) {
	args := map[string]interface{}{"cell_id": cell.Wire()}
	raw, err := a.conn.Request(ctx, "dump_state", args, "state_dumped")
	if err != nil {
		return "", err
	}
	var state string
	if err := wire.DecodeValue(raw, &state); err != nil {
		return "", domain.ErrUnexpectedResponse.Wrap(err)
	}
	return state, nil
}

// GenerateAgentPubKey asks the conductor's keystore for a new agent key.
func (a *AdminClient) GenerateAgentPubKey(ctx context.Context) (holohash.HoloHash, error) {
	raw, err := a.conn.Request(ctx, "generate_agent_pub_key", nil, "agent_pub_key_generated")
	if err != nil {
		return holohash.HoloHash{}, err
	}
	var b []byte
	if err := wire.DecodeValue(raw, &b); err != nil {
		return holohash.HoloHash{}, domain.ErrUnexpectedResponse.Wrap(err)
	}
	key, err := holohash.FromBytesOfType(b, holohash.TypeAgent)
	if err != nil {
		return holohash.HoloHash{}, domain.ErrUnexpectedResponse.WithDetails("generate_agent_pub_key returned an invalid key").WithCause(err)
	}
	return key, nil
}
