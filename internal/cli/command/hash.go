package command

import (
	"encoding/hex"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hcstate-go/internal/cli/output"
	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/pkg/holohash"
)

// HashCommand returns the offline hash tools.
func HashCommand() *cli.Command {
	return &cli.Command{
		Name:  "hash",
		Usage: "Inspect and build HoloHashes without a conductor",
		Subcommands: []*cli.Command{
			{
				Name:      "inspect",
				Usage:     "Decode a hash and verify its location bytes; exits 1 when invalid",
				ArgsUsage: "TEXT",
				Action:    hashInspect,
			},
			{
				Name:      "encode",
				Usage:     "Build a hash from a 32-byte core given as hex or base64",
				ArgsUsage: "CORE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "type",
						Aliases:  []string{"t"},
						Usage:    "Hash type: agent, entry, dht_op, action, wasm, warrant, dna, external",
						Required: true,
					},
				},
				Action: hashEncode,
			},
			{
				Name:      "location",
				Usage:     "Compute the 4-byte DHT location of a payload given as hex or base64",
				ArgsUsage: "PAYLOAD",
				Action:    hashLocation,
			},
		},
	}
}

// CellCommand returns the offline cell id tools.
func CellCommand() *cli.Command {
	return &cli.Command{
		Name:  "cell",
		Usage: "Cell id tools",
		Subcommands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "Parse and validate a cell id in pair form",
				ArgsUsage: "\"[DNA_HASH, AGENT_PUB_KEY]\"",
				Action:    cellParse,
			},
		},
	}
}

// hashReport describes one decoded hash.
type hashReport struct {
	Type     string `json:"type" yaml:"type"`
	Text     string `json:"text" yaml:"text"`
	Base64   string `json:"base64" yaml:"base64" table:"wide"`
	Prefix   string `json:"prefix" yaml:"prefix" table:"wide"`
	Core     string `json:"core" yaml:"core"`
	Location string `json:"location" yaml:"location"`
	Computed string `json:"computed_location" yaml:"computed_location" table:"wide"`
	Valid    bool   `json:"valid" yaml:"valid"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// inspectHash reports on raw hash bytes whether or not they validate.
func inspectHash(raw []byte) (hashReport, error) {
	if len(raw) != holohash.HashLength {
		return hashReport{}, holohash.ErrInvalidHashLength.WithDetails("got %d bytes, want %d", len(raw), holohash.HashLength)
	}

	var h holohash.HoloHash
	copy(h[:], raw)
	loc := h.Location()
	computed := holohash.Location(h.Core())

	r := hashReport{
		Type:     h.Type().String(),
		Text:     h.String(),
		Base64:   h.Base64(),
		Prefix:   hex.EncodeToString(raw[:holohash.PrefixLength]),
		Core:     hex.EncodeToString(h.Core()),
		Location: hex.EncodeToString(loc[:]),
		Computed: hex.EncodeToString(computed[:]),
		Valid:    true,
	}
	err := h.Validate()
	if err != nil {
		r.Valid = false
		r.Error = err.Error()
	}
	return r, err
}

func hashInspect(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if err := requireArgs(c, 1, "TEXT"); err != nil {
		return err
	}

	raw, err := holohash.DecodeText(c.Args().First())
	if err != nil {
		return domain.ErrInvalidArgument.WithDetails(err.Error()).WithCause(err)
	}
	report, verr := inspectHash(raw)
	if report.Text == "" {
		return domain.ErrInvalidArgument.WithDetails(verr.Error()).WithCause(verr)
	}
	if err := rt.Print(report); err != nil {
		return err
	}
	if verr != nil {
		return domain.ErrInvalidArgument.WithDetails(verr.Error()).WithCause(verr)
	}
	return nil
}

func hashEncode(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if err := requireArgs(c, 1, "CORE"); err != nil {
		return err
	}

	t, err := holohash.ParseHashType(c.String("type"))
	if err != nil {
		return domain.ErrInvalidArgument.WithDetails(err.Error()).WithCause(err)
	}
	core, err := decodeBytesArg(c.Args().First())
	if err != nil {
		return err
	}
	h, err := holohash.Encode(t, core)
	if err != nil {
		return domain.ErrInvalidArgument.WithDetails(err.Error()).WithCause(err)
	}
	report, err := inspectHash(h.Bytes())
	if err != nil {
		return err
	}
	return rt.Print(report)
}

func hashLocation(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if err := requireArgs(c, 1, "PAYLOAD"); err != nil {
		return err
	}

	payload, err := decodeBytesArg(c.Args().First())
	if err != nil {
		return err
	}
	loc := holohash.Location(payload)

	table := &output.Table{Headers: []string{"LOCATION"}}
	table.AddRow(hex.EncodeToString(loc[:]))
	return rt.PrintTable(table, map[string]string{"location": hex.EncodeToString(loc[:])})
}

// decodeBytesArg reads hex (with optional 0x) first, then either base64
// text form.
func decodeBytesArg(arg string) ([]byte, error) {
	s := strings.TrimPrefix(strings.TrimSpace(arg), "0x")
	if b, err := hex.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := holohash.DecodeText(arg)
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithDetailsf("%q is neither hex nor base64", arg).WithCause(err)
	}
	return b, nil
}

func cellParse(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if err := requireArgs(c, 1, "\"[DNA_HASH, AGENT_PUB_KEY]\""); err != nil {
		return err
	}

	// Unquoted pair forms arrive split on the space after the comma.
	text := strings.Join(c.Args().Slice(), " ")
	cell, err := holohash.ParseCellIDText(text)
	if err != nil {
		return domain.ErrInvalidArgument.WithDetails(err.Error()).WithCause(err)
	}

	table := &output.Table{Headers: []string{"FIELD", "VALUE"}}
	table.AddRow("dna_hash", cell.DnaHash.String())
	table.AddRow("agent_pub_key", cell.AgentPubKey.String())
	return rt.PrintTable(table, cell)
}
