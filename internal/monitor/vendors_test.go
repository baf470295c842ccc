package monitor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/vendorwatch/pkg/models"
)

func TestLoadVendors(t *testing.T) {
	in := "symbol,companyname\n" +
		"pcty,Paylocity Holding Corp.\n" +
		" FI , \"Fiserv, Inc.\"\n" +
		",Missing Symbol LLC\n" +
		"\n" +
		"$INTU,Intuit Inc.\n"

	vendors, warns, err := LoadVendors(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []models.Vendor{
		{Symbol: "PCTY", CompanyName: "Paylocity Holding Corp."},
		{Symbol: "FI", CompanyName: "Fiserv, Inc."},
		{Symbol: "INTU", CompanyName: "Intuit Inc."},
	}, vendors)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0].Text, "Row 3")
}

func TestLoadVendorsHeaderVariants(t *testing.T) {
	in := "\ufeffCompanyName,Symbol,Sector\nWorkday Inc.,WDAY,Software\n"
	vendors, _, err := LoadVendors(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []models.Vendor{{Symbol: "WDAY", CompanyName: "Workday Inc."}}, vendors)
}

func TestLoadVendorsErrors(t *testing.T) {
	_, _, err := LoadVendors(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoVendors)

	_, _, err = LoadVendors(strings.NewReader("symbol,companyname\n"))
	assert.ErrorIs(t, err, ErrNoVendors)

	_, _, err = LoadVendors(strings.NewReader("ticker,name\nPCTY,Paylocity\n"))
	assert.Error(t, err)

	_, _, err = LoadVendorsFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadVendorsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendors.csv")
	require.NoError(t, os.WriteFile(path, []byte("symbol,companyname\nADP,Automatic Data Processing\n"), 0o644))

	vendors, warns, err := LoadVendorsFile(path)
	require.NoError(t, err)
	assert.Empty(t, warns)
	assert.Len(t, vendors, 1)
}
