package monitor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/seenimoa/vendorwatch/pkg/models"
	"github.com/seenimoa/vendorwatch/pkg/utils"
)

// Vendor list columns.
const (
	ColumnSymbol      = "symbol"
	ColumnCompanyName = "companyname"
)

// ErrNoVendors is returned when the vendor list has no usable rows.
var ErrNoVendors = errors.New("vendor list is empty or has no valid data")

// LoadVendorsFile reads the vendor CSV at path.
func LoadVendorsFile(path string) ([]models.Vendor, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open vendor list: %w", err)
	}
	defer f.Close()

	vendors, warns, err := LoadVendors(f)
	if err != nil {
		return nil, warns, fmt.Errorf("%s: %w", path, err)
	}
	return vendors, warns, nil
}

// LoadVendors parses a CSV with a symbol,companyname header. Column order
// and header case do not matter. Symbols are normalized; rows without a
// symbol are skipped with a warning.
func LoadVendors(r io.Reader) ([]models.Vendor, []Warning, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrNoVendors
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	symCol, nameCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case ColumnSymbol:
			symCol = i
		case ColumnCompanyName:
			nameCol = i
		}
	}
	if symCol < 0 {
		return nil, nil, fmt.Errorf("missing %q column in header %v", ColumnSymbol, header)
	}

	var vendors []models.Vendor
	var warns []Warning
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, warns, fmt.Errorf("parse row %d: %w", row, err)
		}

		v := models.Vendor{Symbol: utils.NormalizeTicker(field(rec, symCol))}
		if nameCol >= 0 {
			v.CompanyName = strings.TrimSpace(field(rec, nameCol))
		}
		if v.Symbol == "" {
			if isBlank(rec) {
				continue
			}
			warns = append(warns, Warning{Text: fmt.Sprintf("Row %d: missing symbol, skipped", row)})
			continue
		}
		vendors = append(vendors, v)
	}

	if len(vendors) == 0 {
		return nil, warns, ErrNoVendors
	}
	return vendors, warns, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
