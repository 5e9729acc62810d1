package ziprate_test

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/han8909227/avatax-go/internal/model"
	"github.com/han8909227/avatax-go/internal/ziprate"
)

const sampleCSV = `98101,WA,KING,SEATTLE,0.065000,0.065000,0.000000,0.000000,0.036000,0.036000,0.101000,0.101000,Y,Y
92614,CA,ORANGE,IRVINE,0.060000,0.060000,0.002500,0.002500,0.000000,0.000000,0.077500,0.077500,N,N
10001,NY,NEW YORK,NEW YORK,0.040000,0.040000,0.045000,0.045000,0.000000,0.000000,0.088750,0.088750,Y,Y
`

func TestFromRows(t *testing.T) {
	rows := [][]string{
		{"98101", "WA", "KING", "SEATTLE"},
		{"92614", "CA", "ORANGE", "IRVINE"},
		{"10001"},
	}

	table := ziprate.FromRows(rows)

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"10001", "92614", "98101"}, keys)

	assert.Equal(t, []string{"WA", "KING", "SEATTLE"}, table["98101"])
	assert.Equal(t, []string{"CA", "ORANGE", "IRVINE"}, table["92614"])
	assert.Empty(t, table["10001"])
}

func TestFromRows_DoesNotAliasInput(t *testing.T) {
	rows := [][]string{{"98101", "WA", "KING"}}
	table := ziprate.FromRows(rows)

	rows[0][1] = "OR"
	assert.Equal(t, []string{"WA", "KING"}, table["98101"])
}

func TestFromRows_LastDuplicateWins(t *testing.T) {
	rows := [][]string{
		{"98101", "first"},
		{"98101", "second"},
	}

	table := ziprate.FromRows(rows)
	require.Len(t, table, 1)
	assert.Equal(t, []string{"second"}, table["98101"])
}

func TestFromRows_SkipsEmptyRows(t *testing.T) {
	table := ziprate.FromRows([][]string{{}, {"98101", "WA"}})
	assert.Len(t, table, 1)
}

func TestFromRows_ManyUniqueKeys(t *testing.T) {
	rows := make([][]string, 0, 250)
	for i := 0; i < 250; i++ {
		rows = append(rows, []string{fmt.Sprintf("%05d", i), "ST", fmt.Sprintf("C%d", i)})
	}

	table := ziprate.FromRows(rows)
	require.Len(t, table, len(rows))
	for _, row := range rows {
		assert.Equal(t, row[1:], table[row[0]])
	}
}

func TestParseCSV(t *testing.T) {
	rows, err := ziprate.ParseCSV([]byte(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "98101", rows[0][0])
	assert.Len(t, rows[0], 14)
}

func TestParseCSV_Placeholder(t *testing.T) {
	rows, err := ziprate.ParseCSV([]byte("Your file is being built. Please check back later.\n"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParseCSV_StripsBOMAndAllowsRaggedRows(t *testing.T) {
	body := "\xEF\xBB\xBF98101,WA\n92614,CA,ORANGE\n"
	rows, err := ziprate.ParseCSV([]byte(body))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "98101", rows[0][0])
	assert.Len(t, rows[1], 3)
}

func TestTable_Rate(t *testing.T) {
	rows, err := ziprate.ParseCSV([]byte(sampleCSV))
	require.NoError(t, err)
	table := ziprate.FromRows(rows)

	rate, found, err := table.Rate("92614")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "92614", rate.ZipCode)
	assert.Equal(t, "CA", rate.State)
	assert.Equal(t, "ORANGE", rate.County)
	assert.Equal(t, "IRVINE", rate.City)
	assert.True(t, rate.StateSales.Equal(dec.RequireFromString("0.06")))
	assert.True(t, rate.CountySales.Equal(dec.RequireFromString("0.0025")))
	assert.True(t, rate.TotalSales.Equal(dec.RequireFromString("0.0775")))
	assert.False(t, rate.TaxShippingAlone)
	assert.Equal(t, ziprate.SourceCache, rate.Source)

	seattle, _, err := table.Rate("98101")
	require.NoError(t, err)
	assert.True(t, seattle.TaxShippingAlone)
	assert.True(t, seattle.TaxShippingAndHandling)

	_, found, err = table.Rate("00000")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestParseRow_DerivesMissingTotals(t *testing.T) {
	rate, err := ziprate.ParseRow("12345", []string{"XX", "CNTY", "CITY", "0.05", "0.05", "0.01", "0.01", "0.005", "0.005"})
	require.NoError(t, err)
	assert.True(t, rate.TotalSales.Equal(dec.RequireFromString("0.065")))
	assert.True(t, rate.TotalUse.Equal(dec.RequireFromString("0.065")))
}

func TestParseRow_InvalidRate(t *testing.T) {
	_, err := ziprate.ParseRow("12345", []string{"XX", "CNTY", "CITY", "six percent"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ziprate.ErrCorruptRow)
	assert.NotErrorIs(t, err, model.ErrInvalidArgument)
	assert.True(t, strings.Contains(err.Error(), "state_sales"))
}

func TestPostalRates_Rate(t *testing.T) {
	resp := ziprate.PostalRates{
		TotalRate: 0.0775,
		Rates: []ziprate.Jurisdiction{
			{Name: "CALIFORNIA", Type: "State", Rate: 0.06},
			{Name: "ORANGE", Type: "County", Rate: 0.0025},
			{Name: "ORANGE COUNTY DISTRICT TAX SP", Type: "Special", Rate: 0.015},
		},
	}

	rate := resp.Rate("92614")
	assert.Equal(t, ziprate.SourceRemote, rate.Source)
	assert.True(t, rate.TotalSales.Equal(dec.RequireFromString("0.0775")))
	assert.True(t, rate.StateSales.Equal(dec.RequireFromString("0.06")))
	assert.True(t, rate.CountySales.Equal(dec.RequireFromString("0.0025")))
	assert.True(t, rate.CitySales.IsZero())
}
