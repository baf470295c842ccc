// Package report writes the dated CSV reports of a run and renders the
// end-of-run summary block.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/vendorwatch/internal/logging"
	"github.com/seenimoa/vendorwatch/internal/monitor"
	"github.com/seenimoa/vendorwatch/pkg/models"
	"github.com/seenimoa/vendorwatch/pkg/utils"
)

// File name prefixes; the mmddyy run date and ".csv" are appended.
const (
	StockReportPrefix    = "vendorstockreport_"
	HeadlineReportPrefix = "vendorheadlinereport_"
)

var (
	StockColumns    = []string{"symbol", "companyname", "closeprice", "pctchange", "volume", "sentiment"}
	HeadlineColumns = []string{"symbol", "headline", "sentiment"}
)

// Paths locates the two report files of a run.
type Paths struct {
	Stock    string
	Headline string
}

// PathsFor returns the report paths in dir for a run on date now.
func PathsFor(dir string, now time.Time) Paths {
	suffix := utils.DateSuffix(now) + ".csv"
	return Paths{
		Stock:    filepath.Join(dir, StockReportPrefix+suffix),
		Headline: filepath.Join(dir, HeadlineReportPrefix+suffix),
	}
}

// StockRecords converts outcomes to stock report records. Stock columns are
// N/A when the stock fetch failed.
func StockRecords(outcomes []models.VendorOutcome) [][]string {
	records := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		closePrice, pct, volume := models.NotAvailable, models.NotAvailable, models.NotAvailable
		if o.StockOK() {
			closePrice = strconv.FormatFloat(o.Stock.Close, 'f', 2, 64)
			pct = strconv.FormatFloat(o.Stock.ChangePct, 'f', 2, 64)
			volume = strconv.FormatInt(o.Stock.Volume, 10)
		}
		sentiment := o.Sentiment
		if sentiment == "" {
			sentiment = models.LabelNA
		}
		records = append(records, []string{
			o.Vendor.Symbol, o.Vendor.CompanyName, closePrice, pct, volume, string(sentiment),
		})
	}
	return records
}

// HeadlineRecords converts headline rows to report records.
func HeadlineRecords(rows []models.HeadlineRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Symbol, r.Headline, string(r.Sentiment)})
	}
	return records
}

// WriteCSV writes a header and records to w.
func WriteCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// Writer writes both reports of a run into one directory.
type Writer struct {
	dir    string
	logger *log.Logger
}

// NewWriter creates a report writer for dir.
func NewWriter(dir string, logger *log.Logger) *Writer {
	return &Writer{dir: dir, logger: logging.OrNop(logger)}
}

// Write writes the stock and headline reports concurrently. A failed file
// does not stop the other one; every failure is also recorded as a run
// warning so it shows in the summary block.
func (w *Writer) Write(ctx context.Context, res *monitor.RunResult, now time.Time) (Paths, error) {
	paths := PathsFor(w.dir, now)
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		err = fmt.Errorf("create output dir: %w", err)
		w.warn(res, err)
		return paths, err
	}

	stock := StockRecords(res.Outcomes)
	headlines := HeadlineRecords(res.HeadlineRows())

	var g errgroup.Group
	errs := make([]error, 2)
	g.Go(func() error {
		errs[0] = w.writeFile(ctx, "stock", paths.Stock, StockColumns, stock)
		return errs[0]
	})
	g.Go(func() error {
		errs[1] = w.writeFile(ctx, "headline", paths.Headline, HeadlineColumns, headlines)
		return errs[1]
	})
	err := g.Wait()

	for _, e := range errs {
		if e != nil {
			w.warn(res, e)
		}
	}
	return paths, err
}

func (w *Writer) writeFile(ctx context.Context, kind, path string, header []string, records [][]string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s report: %w", kind, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s report: %w", kind, err)
	}
	if err := WriteCSV(f, header, records); err != nil {
		f.Close()
		return fmt.Errorf("write %s report: %w", kind, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s report: %w", kind, err)
	}
	w.logger.Info().Msgf("Report written: %s (%d rows)", path, len(records))
	return nil
}

func (w *Writer) warn(res *monitor.RunResult, err error) {
	w.logger.Error().Err(err).Msg("Report write failed")
	if res.Summary != nil {
		res.Summary.Warn("", "%v", err)
	}
}
