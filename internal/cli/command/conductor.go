package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/hcstate-go/internal/cli/connection"
	"github.com/yndnr/hcstate-go/internal/cli/output"
	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/internal/telemetry/logger"
	"github.com/yndnr/hcstate-go/pkg/holohash"
)

const cellArgHelp = "CELL is an index from list-cell-ids or the pair form \"[DNA_HASH, AGENT_PUB_KEY]\"."

// ListDnasCommand returns the list-dnas command.
func ListDnasCommand() *cli.Command {
	return &cli.Command{
		Name:    "list-dnas",
		Aliases: []string{"dnas"},
		Usage:   "List installed DNA hashes",
		Action:  listDnas,
	}
}

func listDnas(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	var dnas []holohash.HoloHash
	err = rt.withAdmin("list_dnas", func(ctx context.Context, admin *connection.AdminClient) error {
		dnas, err = admin.ListDnas(ctx)
		return err
	})
	if err != nil {
		return err
	}

	table := &output.Table{Headers: []string{"INDEX", "DNA_HASH"}}
	for i, dna := range dnas {
		table.AddRow(strconv.Itoa(i), dna.String())
	}
	return rt.PrintTable(table, dnas)
}

// ListCellIDsCommand returns the list-cell-ids command.
func ListCellIDsCommand() *cli.Command {
	return &cli.Command{
		Name:    "list-cell-ids",
		Aliases: []string{"cells"},
		Usage:   "List running cells; the index can stand in for CELL arguments",
		Action:  listCellIDs,
	}
}

func listCellIDs(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	var cells []holohash.CellID
	err = rt.withAdmin("list_cell_ids", func(ctx context.Context, admin *connection.AdminClient) error {
		cells, err = admin.ListCellIDs(ctx)
		return err
	})
	if err != nil {
		return err
	}

	table := &output.Table{Headers: []string{"INDEX", "DNA_HASH", "AGENT_PUB_KEY"}}
	for i, cell := range cells {
		table.AddRow(strconv.Itoa(i), cell.DnaHash.String(), cell.AgentPubKey.String())
	}
	return rt.PrintTable(table, cells)
}

// ListActiveAppIDsCommand returns the list-active-app-ids command.
func ListActiveAppIDsCommand() *cli.Command {
	return &cli.Command{
		Name:    "list-active-app-ids",
		Aliases: []string{"apps"},
		Usage:   "List the ids of running apps",
		Action:  listActiveAppIDs,
	}
}

func listActiveAppIDs(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	var ids []string
	err = rt.withAdmin("list_apps", func(ctx context.Context, admin *connection.AdminClient) error {
		ids, err = admin.ListActiveAppIDs(ctx)
		return err
	})
	if err != nil {
		return err
	}

	table := &output.Table{Headers: []string{"INSTALLED_APP_ID"}}
	for _, id := range ids {
		table.AddRow(id)
	}
	return rt.PrintTable(table, ids)
}

// GenAgentKeyCommand returns the gen-agent-key command.
func GenAgentKeyCommand() *cli.Command {
	return &cli.Command{
		Name:   "gen-agent-key",
		Usage:  "Generate a new agent public key in the conductor keystore",
		Action: genAgentKey,
	}
}

func genAgentKey(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	var key holohash.HoloHash
	err = rt.withAdmin("generate_agent_pub_key", func(ctx context.Context, admin *connection.AdminClient) error {
		key, err = admin.GenerateAgentPubKey(ctx)
		return err
	})
	if err != nil {
		return err
	}

	table := &output.Table{Headers: []string{"AGENT_PUB_KEY"}}
	table.AddRow(key.String())
	return rt.PrintTable(table, map[string]holohash.HoloHash{"agent_pub_key": key})
}

// StateDumpCommand returns the state-dump command.
func StateDumpCommand() *cli.Command {
	return &cli.Command{
		Name:        "state-dump",
		Aliases:     []string{"dump"},
		Usage:       "Dump the state of a cell",
		ArgsUsage:   "CELL",
		Description: cellArgHelp,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Dump every running cell",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Value: 5,
				Usage: "Dumps per second with --all (0 for no limit)",
			},
		},
		Action: stateDump,
	}
}

// cellDump is one entry of a bulk state dump.
type cellDump struct {
	Index  int             `json:"index" yaml:"index"`
	CellID holohash.CellID `json:"cell_id" yaml:"cell_id"`
	State  any             `json:"state,omitempty" yaml:"state,omitempty"`
	Error  string          `json:"error,omitempty" yaml:"error,omitempty"`
	raw    string
}

func stateDump(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if c.Bool("all") {
		return stateDumpAll(c, rt)
	}
	if err := requireArgs(c, 1, "CELL"); err != nil {
		return err
	}

	cell, err := rt.resolveCell(c.Args().First())
	if err != nil {
		return err
	}

	var state string
	err = rt.withAdmin("dump_state", func(ctx context.Context, admin *connection.AdminClient) error {
		state, err = admin.DumpState(ctx, cell)
		return err
	})
	if err != nil {
		return err
	}
	if rt.Format() == output.FormatYAML {
		if v, ok := decodeState(state); ok {
			return rt.Print(v)
		}
	}
	return rt.Print(state)
}

func stateDumpAll(c *cli.Context, rt *Runtime) error {
	var cells []holohash.CellID
	err := rt.withAdmin("list_cell_ids", func(ctx context.Context, admin *connection.AdminClient) error {
		var err error
		cells, err = admin.ListCellIDs(ctx)
		return err
	})
	if err != nil {
		return err
	}

	limit := rate.Inf
	if r := c.Float64("rate"); r > 0 {
		limit = rate.Limit(r)
	}
	limiter := rate.NewLimiter(limit, 1)
	bar := output.NewProgressBar(rt.Stderr, "state-dump", len(cells))
	log := logger.L(rt.Context())

	dumps := make([]cellDump, 0, len(cells))
	for i, cell := range cells {
		if err := limiter.Wait(rt.Context()); err != nil {
			bar.Finish()
			return err
		}

		var state string
		err := rt.withAdmin("dump_state", func(ctx context.Context, admin *connection.AdminClient) error {
			var err error
			state, err = admin.DumpState(ctx, cell)
			return err
		})
		bar.Done(err)

		d := cellDump{Index: i, CellID: cell, raw: state}
		if err != nil {
			log.Warn("state dump failed", "cell", cell.String(), "error", err)
			d.Error = err.Error()
		} else if v, ok := decodeState(state); ok {
			d.State = v
		} else {
			d.State = state
		}
		dumps = append(dumps, d)
	}
	bar.Finish()

	if rt.Format() == output.FormatTable {
		for _, d := range dumps {
			fmt.Fprintf(rt.Stdout, "# %d %s\n", d.Index, d.CellID)
			if d.Error != "" {
				fmt.Fprintf(rt.Stdout, "error: %s\n", d.Error)
				continue
			}
			if err := rt.Print(d.raw); err != nil {
				return err
			}
		}
	} else if err := rt.Print(dumps); err != nil {
		return err
	}

	if _, failed := bar.Counts(); failed > 0 {
		return domain.ErrConductor.WithDetailsf("%d of %d state dumps failed", failed, len(cells))
	}
	return nil
}

// decodeState parses a JSON state dump. Integers stay int64 so YAML
// renders them unquoted.
func decodeState(state string) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(state)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return connection.JSONNumbers(v), true
}
