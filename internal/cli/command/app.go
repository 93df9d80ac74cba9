package command

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hcstate-go/internal/cli/connection"
	"github.com/yndnr/hcstate-go/internal/cli/output"
	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/pkg/holohash"
)

// capSecretLength is the size of a capability grant secret.
const capSecretLength = 64

// AppInfoCommand returns the app-info command.
func AppInfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "app-info",
		Aliases:   []string{"info"},
		Usage:     "Show an installed app and its cells",
		ArgsUsage: "APP_ID",
		Action:    appInfo,
	}
}

func appInfo(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if err := requireArgs(c, 1, "APP_ID"); err != nil {
		return err
	}
	id := c.Args().First()

	var info *connection.AppInfo
	err = rt.withApp("app_info", func(ctx context.Context, app *connection.AppClient) error {
		info, err = app.AppInfo(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	if info == nil {
		return domain.ErrInvalidArgument.WithDetailsf("app %q is not installed", id)
	}

	if rt.Format() != output.FormatTable {
		return rt.Print(info)
	}

	agent := "-"
	if info.AgentPubKey != nil {
		agent = info.AgentPubKey.String()
	}
	fmt.Fprintf(rt.Stdout, "installed_app_id: %s\nstatus: %s\nagent_pub_key: %s\n\n", info.InstalledAppID, info.Status, agent)

	table := &output.Table{Headers: []string{"ROLE", "KIND", "CELL_ID"}}
	if rt.Wide {
		table.Headers = append(table.Headers, "NAME")
	}
	for _, cell := range info.Cells {
		cellText := "-"
		if cell.CellID != nil {
			cellText = cell.CellID.String()
		}
		row := []string{cell.RoleName, cell.Kind, cellText}
		if rt.Wide {
			name := cell.Name
			if name == "" {
				name = "-"
			}
			row = append(row, name)
		}
		table.AddRow(row...)
	}
	return table.Render(rt.Stdout)
}

// ZomeCallCommand returns the zome-call command.
func ZomeCallCommand() *cli.Command {
	return &cli.Command{
		Name:      "zome-call",
		Aliases:   []string{"call"},
		Usage:     "Call a zome function and print its result",
		ArgsUsage: "CELL ZOME FN [JSON|-]",
		Description: cellArgHelp + "\n\nJSON is the function argument; \"-\" reads it from stdin. " +
			"Strings that parse as hashes are sent as hash bytes.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "provenance",
				Usage: "Agent key signing the call (default: the cell's agent)",
			},
			&cli.StringFlag{
				Name:  "cap-secret",
				Usage: "Capability secret (base64, 64 bytes)",
			},
		},
		Action: zomeCall,
	}
}

func zomeCall(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if err := requireArgs(c, 3, "CELL ZOME FN [JSON|-]"); err != nil {
		return err
	}
	args := c.Args()

	call := connection.ZomeCall{
		ZomeName: args.Get(1),
		FnName:   args.Get(2),
	}

	payloadText := args.Get(3)
	if payloadText == "-" {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return domain.ErrInvalidArgument.WithDetails("read payload from stdin").WithCause(err)
		}
		payloadText = string(data)
	}
	if call.Payload, err = connection.EncodeJSONPayload(payloadText); err != nil {
		return err
	}

	if p := c.String("provenance"); p != "" {
		agent, err := holohash.ParseTextForm(p, holohash.TypeAgent)
		if err != nil {
			return domain.ErrInvalidArgument.WithDetailsf("provenance: %v", err).WithCause(err)
		}
		call.Provenance = &agent
	}
	if s := c.String("cap-secret"); s != "" {
		secret, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return domain.ErrInvalidArgument.WithDetails("cap-secret is not base64").WithCause(err)
		}
		if len(secret) != capSecretLength {
			return domain.ErrInvalidArgument.WithDetailsf("cap-secret is %d bytes, want %d", len(secret), capSecretLength)
		}
		call.CapSecret = secret
	}

	if call.CellID, err = rt.resolveCell(args.First()); err != nil {
		return err
	}

	var result any
	err = rt.withApp("call_zome", func(ctx context.Context, app *connection.AppClient) error {
		result, err = app.CallZome(ctx, call)
		return err
	})
	if err != nil {
		return err
	}

	if rt.Format() == output.FormatTable {
		if s, ok := result.(string); ok {
			_, err := fmt.Fprintln(rt.Stdout, s)
			return err
		}
		return (&output.JSONFormatter{}).Format(rt.Stdout, result)
	}
	return rt.Print(result)
}
