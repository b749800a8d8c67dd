package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_AutoResolvesToMarkdownForBuffers(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeAuto)
	assert.Equal(t, ModeMarkdown, r.Mode())
}

func TestRenderer_Println(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeText)

	r.Println("hello")
	assert.Equal(t, "hello\n", out.String())
}

func TestRenderer_JSONModeSuppressesText(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeJSON)

	r.Println("hello")
	r.Printf("x %d\n", 1)
	r.StatusLine("data", "success", "")
	assert.Empty(t, out.String())
}

func TestRenderer_StatusLine(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeText)

	r.StatusLine("data/20240304.csv", "created", "")
	r.StatusLine("plots", "skipped", "already exists")

	assert.Contains(t, out.String(), "data/20240304.csv: created\n")
	assert.Contains(t, out.String(), "plots: skipped (already exists)\n")
}

func TestRenderer_Table_Text(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeText)

	r.Table([]string{"TICKER", "ROWS"}, [][]string{{"AAPL", "35"}, {"META", "34"}})

	s := out.String()
	assert.Contains(t, s, "TICKER")
	assert.Contains(t, s, "AAPL")
	assert.Contains(t, s, "META")
}

func TestRenderer_Table_Markdown(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeMarkdown)

	r.Table([]string{"TICKER"}, [][]string{{"AAPL"}})

	assert.Contains(t, out.String(), "| TICKER |")
	assert.Contains(t, out.String(), "| AAPL |")
}

func TestRenderer_Table_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeJSON)

	r.Table([]string{"ticker", "rows"}, [][]string{{"AAPL", "35"}})

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "AAPL", decoded[0]["ticker"])
	assert.Equal(t, "35", decoded[0]["rows"])
}

func TestRenderer_Errorf_AllModes(t *testing.T) {
	for _, mode := range []Mode{ModeText, ModeMarkdown, ModeJSON} {
		var out, errW bytes.Buffer
		r := NewRenderer(&out, &errW, mode)
		r.Errorf("boom: %s\n", "reason")
		assert.Equal(t, "boom: reason\n", errW.String(), "mode %s", mode)
	}
}
