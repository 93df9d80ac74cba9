package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/hcstate-go/internal/cli/config"
	"github.com/yndnr/hcstate-go/internal/cli/output"
	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/internal/telemetry/logger"
)

const redacted = logger.Redacted

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration (file, environment and flags)",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write a config file with the default settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:      "set",
				Usage:     "Set one key in the config file",
				ArgsUsage: "KEY VALUE",
				Description: "Keys: " + fmt.Sprint(config.Keys()) +
					"\nProfile fields are set as profiles.<name>.<field>.",
				Action: configSet,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	cfg := *rt.Config()
	if cfg.AppToken != "" {
		cfg.AppToken = redacted
	}
	profiles := make(map[string]config.Profile, len(cfg.Profiles))
	for name, p := range cfg.Profiles {
		if p.AppToken != "" {
			p.AppToken = redacted
		}
		profiles[name] = p
	}
	cfg.Profiles = profiles

	if rt.Format() != output.FormatJSON {
		return (&output.YAMLFormatter{}).Format(rt.Stdout, cfg)
	}
	// Round trip through YAML so JSON keys and durations match the file.
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return err
	}
	return rt.Print(m)
}

func configPath(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(rt.Stdout, rt.ConfigPath)
	return err
}

func configInit(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	if _, err := os.Stat(rt.ConfigPath); err == nil && !c.Bool("force") {
		return domain.ErrConfigSave.WithDetailsf("%s exists (use --force to overwrite)", rt.ConfigPath)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.ErrConfigSave.Wrap(err)
	}

	if err := config.Save(config.Default(), rt.ConfigPath); err != nil {
		return err
	}
	fmt.Fprintf(rt.Stdout, "✓ Wrote %s\n", rt.ConfigPath)
	return nil
}

func configSet(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if err := requireArgs(c, 2, "KEY VALUE"); err != nil {
		return err
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	cfg, err := config.Load(rt.ConfigPath)
	if err != nil {
		return err
	}
	cfg, err = config.Set(cfg, key, value)
	if err != nil {
		return err
	}
	if err := config.Save(cfg, rt.ConfigPath); err != nil {
		return err
	}
	fmt.Fprintf(rt.Stdout, "✓ %s updated in %s\n", key, rt.ConfigPath)
	return nil
}
