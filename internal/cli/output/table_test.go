package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/hcstate-go/pkg/holohash"
)

type appRow struct {
	AppID  string            `json:"installed_app_id"`
	Status string            `json:"status"`
	Cells  int               `json:"cells"`
	Agent  holohash.HoloHash `json:"agent_pub_key" table:"wide"`
	secret string
	Raw    []byte `table:"-"`
}

func TestTableFormatter_Format_Table(t *testing.T) {
	table := &Table{
		Headers: []string{"INDEX", "CELL_ID"},
		Rows:    [][]string{{"0", "[a, b]"}, {"1", "[c, d]"}},
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "INDEX") || !strings.HasPrefix(lines[2], "1") {
		t.Errorf("unexpected layout %q", buf.String())
	}

	buf.Reset()
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, *table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), "INDEX") {
		t.Error("NoHeaders should suppress the header row")
	}
}

func TestTableFormatter_Format_Nil(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, nil); err != nil {
		t.Fatalf("Format(nil) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Error("Format(nil) should produce empty output")
	}
}

func TestTableFormatter_Format_String(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, "[{\"k\":1}]\n\n"); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.String() != "[{\"k\":1}]\n" {
		t.Errorf("Format() = %q", buf.String())
	}
}

func TestTableFormatter_Format_StructSlice(t *testing.T) {
	agent := mustHash(t, holohash.TypeAgent, 7)
	data := []appRow{
		{AppID: "forum", Status: "running", Cells: 2, Agent: agent, secret: "s", Raw: []byte{1}},
		{AppID: "chat", Status: "running", Cells: 1},
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"INSTALLED_APP_ID", "STATUS", "CELLS", "forum", "chat"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, hidden := range []string{"AGENT_PUB_KEY", agent.String(), "SECRET", "RAW"} {
		if strings.Contains(out, hidden) {
			t.Errorf("output should not contain %q:\n%s", hidden, out)
		}
	}

	buf.Reset()
	if err := (&TableFormatter{Wide: true}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "AGENT_PUB_KEY") || !strings.Contains(buf.String(), agent.String()) {
		t.Errorf("wide output missing agent column:\n%s", buf.String())
	}
}

func TestTableFormatter_Format_PointerSlice(t *testing.T) {
	data := []*appRow{{AppID: "forum"}, {AppID: "chat"}}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "forum") || !strings.Contains(buf.String(), "chat") {
		t.Error("Format() missing pointer slice data")
	}
}

func TestTableFormatter_Format_EmptySlice(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []appRow{}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty slice should render nothing, got %q", buf.String())
	}
}

func TestTableFormatter_Format_HashSlice(t *testing.T) {
	a := mustHash(t, holohash.TypeDna, 1)
	b := mustHash(t, holohash.TypeDna, 2)

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []holohash.HoloHash{a, b}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "VALUE\n" + a.String() + "\n" + b.String() + "\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestTableFormatter_Format_CellID(t *testing.T) {
	cell := holohash.CellID{
		DnaHash:     mustHash(t, holohash.TypeDna, 1),
		AgentPubKey: mustHash(t, holohash.TypeAgent, 2),
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []holohash.CellID{cell}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), cell.String()) {
		t.Errorf("cell ids should render in pair form, got %q", buf.String())
	}
}

func TestTableFormatter_Format_MapSorted(t *testing.T) {
	data := map[string]any{"zome": "posts", "fn": "get_all", "count": 3}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4", len(lines))
	}
	order := []string{"KEY", "count", "fn", "zome"}
	for i, prefix := range order {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
}

func TestTableFormatter_Format_SingleStruct(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, appRow{AppID: "forum", Cells: 3}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "FIELD") || !strings.Contains(out, "installed_app_id") || !strings.Contains(out, "forum") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestTableFormatter_Format_FallbackToJSON(t *testing.T) {
	var buf bytes.Buffer
	err := (&TableFormatter{}).Format(&buf, []chan int{make(chan int)})
	if err == nil {
		t.Error("channels are neither tabular nor JSON-encodable")
	}
}

func TestTable_RenderWithOptions_NoRows(t *testing.T) {
	table := &Table{Headers: []string{"COL1", "COL2"}}

	var buf bytes.Buffer
	if err := table.RenderWithOptions(&buf, false); err != nil {
		t.Fatalf("RenderWithOptions() error = %v", err)
	}
	if !strings.Contains(buf.String(), "COL1") {
		t.Error("RenderWithOptions() missing headers")
	}
}

func TestTable_AddRowSetHeaders(t *testing.T) {
	table := &Table{}
	table.SetHeaders("ROLE", "CELL_ID")
	table.AddRow("forum", "[a, b]")

	if len(table.Headers) != 2 || table.Headers[0] != "ROLE" {
		t.Errorf("Headers = %v", table.Headers)
	}
	if len(table.Rows) != 1 || len(table.Rows[0]) != 2 {
		t.Errorf("Rows = %v", table.Rows)
	}
}

func TestFormatValue(t *testing.T) {
	dna := mustHash(t, holohash.TypeDna, 9)
	testCases := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", "hello"},
		{"empty string", "", "-"},
		{"int", 42, "42"},
		{"int64", int64(123), "123"},
		{"uint", uint(99), "99"},
		{"float64", 3.14159, "3.14"},
		{"bool true", true, "true"},
		{"empty slice", []int{}, "-"},
		{"slice", []int{1, 2, 3}, "[3 items]"},
		{"bytes", []byte{1, 2}, "<2 bytes>"},
		{"empty map", map[string]int{}, "-"},
		{"map", map[string]int{"a": 1}, "{1 keys}"},
		{"hash", dna, dna.String()},
		{"hash pointer", &dna, dna.String()},
		{"hash type", holohash.TypeDna, holohash.TypeDna.String()},
		{"nil pointer", (*holohash.HoloHash)(nil), ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := formatValue(reflect.ValueOf(tc.input))
			if result != tc.expected {
				t.Errorf("formatValue(%v) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestFormatValue_Time(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if got := formatValue(reflect.ValueOf(ts)); got != "2024-01-15 10:30" {
		t.Errorf("formatValue(time) = %q", got)
	}
	if got := formatValue(reflect.ValueOf(time.Time{})); got != "-" {
		t.Errorf("formatValue(zero time) = %q, want -", got)
	}
}

func TestFormatValue_Invalid(t *testing.T) {
	if got := formatValue(reflect.Value{}); got != "" {
		t.Errorf("formatValue(invalid) = %q, want empty", got)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"AppID":         "App_I_D",
		"RoleName":      "Role_Name",
		"name":          "name",
		"agent_pub_key": "agent_pub_key",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
