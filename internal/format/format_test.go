package format

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse(t *testing.T) {
	tests := []struct {
		token string
		want  Format
	}{
		{"json", JSON},
		{" JSON ", JSON},
		{"", JSON},
		{"xml", XML},
		{"Yaml", YAML},
		{"plain", Plain},
		{"TEXT", Plain},
		{"flat", Plain},
	}
	for _, tt := range tests {
		got, err := Parse(tt.token)
		require.NoError(t, err, tt.token)
		assert.Equal(t, tt.want, got, tt.token)
	}
}

func TestParse_UnsupportedFallsBackToJSON(t *testing.T) {
	got, err := Parse("csv")
	assert.Equal(t, JSON, got)

	var ue *UnsupportedFormatError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "csv", ue.Token)
}

func TestParseList(t *testing.T) {
	got, err := ParseList("json, XML,text", "bogus,FLAT")
	assert.Equal(t, []Format{JSON, XML, Plain}, got)

	var ue *UnsupportedFormatError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "bogus", ue.Token)

	got, err = ParseList("")
	require.NoError(t, err)
	assert.Equal(t, []Format{JSON}, got)
}

func TestExt(t *testing.T) {
	tests := map[string]string{
		"json": ".json", "XML": ".xml", "yaml": ".yaml",
		"plain": ".txt", "TEXT": ".txt", "flat": ".txt", "unknown": ".json",
	}
	for token, want := range tests {
		f, _ := Parse(token)
		assert.Equal(t, want, f.Ext(), token)
	}
	assert.Equal(t, ".json", Format(42).Ext())
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "Email_Address_RFC5322", SanitizeKey("Email Address (RFC5322)"))
	assert.Equal(t, "0_9", SanitizeKey("[0-9]+"))
	assert.Equal(t, "digit", SanitizeKey("digit"))
	assert.Equal(t, "pattern", SanitizeKey("!!!"))
}

func TestSerialize_UnknownFormat(t *testing.T) {
	_, err := Serialize(Format(9), Array, "a", "b", Position{})
	var ue *UnsupportedFormatError
	require.True(t, errors.As(err, &ue))

	head, tail := Frame(Format(9), Array)
	assert.Equal(t, "[\n", head)
	assert.Equal(t, "\n]\n", tail)
}

type draw struct {
	pattern string
	values  []string
}

// stream frames draws the same way the emitter does: head, elements, tail.
func stream(t *testing.T, f Format, style Style, draws []draw) string {
	t.Helper()
	head, tail := Frame(f, style)
	var b strings.Builder
	b.WriteString(head)
	seq := 0
	for _, d := range draws {
		for i, v := range d.values {
			frag, err := Serialize(f, style, d.pattern, v, Position{Index: i, Total: len(d.values), Seq: seq})
			require.NoError(t, err)
			b.WriteString(frag)
			seq++
		}
	}
	b.WriteString(tail)
	return b.String()
}

var tricky = []draw{
	{pattern: "ip v4", values: []string{"10.0.0.1", `quote " and \ slash`, "<tag>&amp;"}},
	{pattern: "[a-z]+", values: []string{"abc", "a: b", "- dash", "# hash"}},
}

func TestJSON_ArrayStreamParses(t *testing.T) {
	out := stream(t, JSON, Array, tricky)

	var got []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	var want []map[string]string
	for _, d := range tricky {
		for _, v := range d.values {
			want = append(want, map[string]string{SanitizeKey(d.pattern): v})
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("array stream mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, out, `"<tag>&amp;"`)
}

func TestJSON_GroupedStreamParses(t *testing.T) {
	out := stream(t, JSON, Grouped, tricky)

	var got map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	want := map[string][]string{}
	for _, d := range tricky {
		want[SanitizeKey(d.pattern)] = d.values
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("grouped stream mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_EmptyStreamsParse(t *testing.T) {
	var arr []map[string]string
	require.NoError(t, json.Unmarshal([]byte(stream(t, JSON, Array, nil)), &arr))
	assert.Empty(t, arr)

	var obj map[string][]string
	require.NoError(t, json.Unmarshal([]byte(stream(t, JSON, Grouped, nil)), &obj))
	assert.Empty(t, obj)
}

func TestJSON_Unit(t *testing.T) {
	got, err := Serialize(JSON, Unit, "ip v4", "10.0.0.1", Position{})
	require.NoError(t, err)
	assert.Equal(t, "{\"ip_v4\":\"10.0.0.1\"}\n", got)
}

func TestXML_CDATAWrapping(t *testing.T) {
	tests := []struct {
		sample string
		cdata  bool
	}{
		{"plain", false},
		{"a-b-c", false},
		{"a<b", true},
		{"a>b", true},
		{"a&b", true},
		{"a--b", true},
		{"x]]>y", true},
	}
	for _, tt := range tests {
		got, err := Serialize(XML, Unit, "key", tt.sample, Position{})
		require.NoError(t, err)
		assert.Equal(t, tt.cdata, strings.Contains(got, "<![CDATA["), tt.sample)
		assert.Equal(t, tt.cdata, NeedsCDATA(tt.sample), tt.sample)

		var el struct {
			Text string `xml:",chardata"`
		}
		require.NoError(t, xml.Unmarshal([]byte(got), &el), got)
		assert.Equal(t, tt.sample, el.Text)
	}

	got, _ := Serialize(XML, Unit, "key", "plain", Position{})
	assert.Equal(t, "<key>plain</key>\n", got)
	got, _ = Serialize(XML, Unit, "key", "a<b", Position{})
	assert.Equal(t, "<key><![CDATA[a<b]]></key>\n", got)
}

func TestXML_AggregatedStreamIsWellFormed(t *testing.T) {
	out := stream(t, XML, Array, tricky)

	var doc struct {
		XMLName xml.Name
		Items   []struct {
			XMLName xml.Name
			Text    string `xml:",chardata"`
		} `xml:",any"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "samples", doc.XMLName.Local)
	require.Len(t, doc.Items, 7)
	assert.Equal(t, "ip_v4", doc.Items[0].XMLName.Local)
	assert.Equal(t, "<tag>&amp;", doc.Items[2].Text)
	assert.Equal(t, "a_z", doc.Items[3].XMLName.Local)
}

func TestXML_NamesAndTextStayWellFormed(t *testing.T) {
	draws := []draw{
		{pattern: "3 digits", values: []string{"123", "4<5"}},
		{pattern: "ctl", values: []string{"a\x01b", "\x00--"}},
	}
	out := stream(t, XML, Array, draws)

	var doc struct {
		Items []struct {
			XMLName xml.Name
			Text    string `xml:",chardata"`
		} `xml:",any"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &doc), out)
	require.Len(t, doc.Items, 4)
	assert.Equal(t, "_3_digits", doc.Items[0].XMLName.Local)
	assert.Equal(t, "4<5", doc.Items[1].Text)
	assert.Equal(t, "ctl", doc.Items[2].XMLName.Local)
	assert.Equal(t, "a\ufffdb", doc.Items[2].Text)
	assert.Equal(t, "\ufffd--", doc.Items[3].Text)

	got, err := Serialize(XML, Unit, "7up", "x", Position{})
	require.NoError(t, err)
	assert.Equal(t, "<_7up>x</_7up>\n", got)
}

func TestYAML_AggregatedStreamParses(t *testing.T) {
	draws := append([]draw{{pattern: "multi", values: []string{"line one\nline two"}}}, tricky...)
	out := stream(t, YAML, Array, draws)

	var got []map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(out), &got), out)

	var want []map[string]string
	for _, d := range draws {
		for _, v := range d.values {
			want = append(want, map[string]string{SanitizeKey(d.pattern): v})
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("yaml stream mismatch (-want +got):\n%s", diff)
	}
}

func TestYAML_UnitIsBlockMapping(t *testing.T) {
	got, err := Serialize(YAML, Unit, "digit", "123", Position{})
	require.NoError(t, err)
	assert.Equal(t, "digit: \"123\"\n", got)
}

func TestPlain(t *testing.T) {
	out := stream(t, Plain, Array, tricky)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Equal(t, []string{"10.0.0.1", `quote " and \ slash`, "<tag>&amp;", "abc", "a: b", "- dash", "# hash"}, lines)
}
