// Package connection talks to a Holochain conductor over its admin and app
// WebSocket interfaces.
//
//   - conn.go: one WebSocket with request/response correlation
//   - admin.go: admin interface calls (list_dnas, list_cell_ids, list_apps,
//     dump_state, generate_agent_pub_key)
//   - app.go: app interface calls (app_info, call_zome) and authentication
//   - appinfo.go: decoding of the app info layouts conductors emit
//   - manager.go: caller-owned connection lifetime, and the scoped
//     WithAdmin / WithApp helpers
//
// Frames are msgpack, see the wire subpackage. conductortest provides an
// in-process conductor for tests.
package connection
