package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yndnr/hcstate-go/pkg/holohash"
)

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("expected YAMLFormatter")
	}
	tf, ok := NewFormatter(FormatTable, true).(*TableFormatter)
	if !ok || !tf.Wide {
		t.Error("expected wide TableFormatter")
	}
	if _, ok := NewFormatter("unknown", false).(*TableFormatter); !ok {
		t.Error("unknown format should default to table")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"", FormatTable, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := &JSONFormatter{}

	t.Run("hashes use text form", func(t *testing.T) {
		dna := mustHash(t, holohash.TypeDna, 1)
		var buf bytes.Buffer
		if err := f.Format(&buf, []holohash.HoloHash{dna}); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if !strings.Contains(buf.String(), `"`+dna.String()+`"`) {
			t.Errorf("output %q missing %s", buf.String(), dna)
		}
	})

	t.Run("cell id fields", func(t *testing.T) {
		cell := holohash.CellID{
			DnaHash:     mustHash(t, holohash.TypeDna, 1),
			AgentPubKey: mustHash(t, holohash.TypeAgent, 2),
		}
		var buf bytes.Buffer
		if err := f.Format(&buf, cell); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, `"dna_hash": "uhC0k`) || !strings.Contains(out, `"agent_pub_key": "uhCAk`) {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("json document string is reindented", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, `[{"element":1}]`); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		want := "[\n  {\n    \"element\": 1\n  }\n]\n"
		if buf.String() != want {
			t.Errorf("Format() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("plain string is quoted", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, "not json"); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if strings.TrimSpace(buf.String()) != `"not json"` {
			t.Errorf("Format() = %q", buf.String())
		}
	})

	t.Run("nil", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, nil); err != nil {
			t.Fatalf("Format(nil) error = %v", err)
		}
		if strings.TrimSpace(buf.String()) != "null" {
			t.Errorf("Format(nil) = %q, want null", buf.String())
		}
	})
}

func TestYAMLFormatter_Format(t *testing.T) {
	f := &YAMLFormatter{}

	t.Run("struct with yaml tags", func(t *testing.T) {
		cell := holohash.CellID{
			DnaHash:     mustHash(t, holohash.TypeDna, 1),
			AgentPubKey: mustHash(t, holohash.TypeAgent, 2),
		}
		var buf bytes.Buffer
		if err := f.Format(&buf, cell); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		want := "dna_hash: " + cell.DnaHash.String() + "\nagent_pub_key: " + cell.AgentPubKey.String() + "\n"
		if buf.String() != want {
			t.Errorf("Format() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("nested indent", func(t *testing.T) {
		data := map[string][]string{"apps": {"a", "b"}}
		var buf bytes.Buffer
		if err := f.Format(&buf, data); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if buf.String() != "apps:\n  - a\n  - b\n" {
			t.Errorf("Format() = %q", buf.String())
		}
	})
}
