package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hcstate-go/internal/cli/output"
	"github.com/yndnr/hcstate-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			rt, err := runtimeFrom(c)
			if err != nil {
				return err
			}
			info := buildinfo.Get()
			if rt.Format() == output.FormatTable {
				_, err := fmt.Fprintf(rt.Stdout, "hc-state %s\ncommit: %s\nbuilt: %s\ngo: %s\n",
					info.Version, info.Commit, info.BuildTime, info.GoVersion)
				return err
			}
			return rt.Print(info)
		},
	}
}
