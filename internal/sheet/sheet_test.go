package sheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseQuotedField(t *testing.T) {
	g, err := Parse([]byte("name,picture\n\"a, b\"\"c\",x.png\n"))
	require.NoError(t, err)
	require.Len(t, g.Rows, 1)
	assert.Equal(t, `a, b"c`, g.Value(0, "name"))
	assert.Equal(t, "x.png", g.Value(0, "picture"))
}

func TestParseBlankLinesAndCRLF(t *testing.T) {
	text := "\r\n  Name , PICTURE \r\n\r\nChocolate, choco.png \r\n,,\r\nTea,tea.png"
	g := ParseString(text)

	assert.Equal(t, []string{"name", "picture"}, g.Headers)
	require.Len(t, g.Rows, 2)
	assert.Equal(t, "Chocolate", g.Value(0, "name"))
	assert.Equal(t, "choco.png", g.Value(0, "picture"))
	assert.Equal(t, "Tea", g.Value(1, "NAME"))
}

func TestParseMultilineQuotedCell(t *testing.T) {
	g := ParseString("name,notes\nTea,\"line one\nline two\"\n")
	require.Len(t, g.Rows, 1)
	assert.Equal(t, "line one\nline two", g.Value(0, "notes"))
}

func TestParseBOMAndRequiredMarker(t *testing.T) {
	g := ParseString("\ufeffname *,picture *,slug\nTea,t.png,tea\n")
	assert.Equal(t, []string{"name", "picture", "slug"}, g.Headers)
	assert.Empty(t, g.MissingColumns("name", "picture"))
}

func TestParseEmpty(t *testing.T) {
	g, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, g.Headers)
	assert.Empty(t, g.Rows)
	assert.Equal(t, []string{"name", "picture"}, g.MissingColumns("name", "picture"))
}

func TestShortAndLongRows(t *testing.T) {
	g := ParseString("a,b,c\n1\n1,2,3,extra.jpg\n")
	require.Len(t, g.Rows, 2)
	assert.Equal(t, "", g.Value(0, "c"))
	assert.Equal(t, "", g.Value(0, "missing"))
	assert.Equal(t, "extra.jpg", g.Rows[1][3])
}

func TestMissingColumnsOrder(t *testing.T) {
	g := ParseString("brand,productname\n")
	assert.Equal(t, []string{"category", "picture", "barcode"},
		g.MissingColumns("productname", "brand", "category", "picture", "barcode"))
}

func TestDistinct(t *testing.T) {
	g := ParseString("brand\nAcme\n acme \nZed\n\nacme\n")
	got := g.Distinct("brand", strings.ToLower)
	assert.Equal(t, []string{"acme", "zed"}, got)
	assert.Nil(t, g.Distinct("nope", nil))
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("Categories")
	require.NoError(t, err)
	f.SetSheetRow("Sheet1", "A1", &[]string{"ignored"})
	f.SetSheetRow("Categories", "A1", &[]string{"Name", "Picture"})
	f.SetSheetRow("Categories", "A2", &[]string{"Chocolate", "https://example.com/c.png"})

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	g, err := ParseXLSX(&buf, "categories")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "picture"}, g.Headers)
	require.Len(t, g.Rows, 1)
	assert.Equal(t, "https://example.com/c.png", g.Value(0, "picture"))
}

func TestParseXLSXRejectsGarbage(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("not a workbook"), "")
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestTemplatesRoundTrip(t *testing.T) {
	cols := []Column{
		{Name: "name", Required: true, Example: "Chocolate"},
		{Name: "picture", Required: true, Example: "https://example.com/c.png"},
		{Name: "slug", Example: "chocolate"},
	}

	var csvBuf bytes.Buffer
	require.NoError(t, WriteCSVTemplate(&csvBuf, cols))
	g, err := Parse(csvBuf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "picture", "slug"}, g.Headers)
	assert.Equal(t, "chocolate", g.Value(0, "slug"))

	var xlsxBuf bytes.Buffer
	require.NoError(t, WriteXLSXTemplate(&xlsxBuf, "Categories", cols))
	g, err = ParseXLSX(&xlsxBuf, "Categories")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "picture", "slug"}, g.Headers)
	assert.Equal(t, "Chocolate", g.Value(0, "name"))
}
