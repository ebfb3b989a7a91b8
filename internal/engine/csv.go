package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"breakout20/types"

	"github.com/shopspring/decimal"
)

var tradeCSVHeader = []string{
	"entry_date", "exit_date", "instrument", "size",
	"entry_price", "exit_price", "pnl", "pnl_net",
	"commission", "holding_days", "return_pct",
}

const csvDateLayout = "2006-01-02"

// WriteTradesCSV writes the trade table. Monetary and percentage columns are
// rounded to 2 decimals for export.
func WriteTradesCSV(w io.Writer, trades []types.TradeRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(tradeCSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range trades {
		record := []string{
			t.EntryDate.Format(csvDateLayout),
			t.ExitDate.Format(csvDateLayout),
			t.Ticker,
			t.Size.String(),
			t.EntryPrice.StringFixed(2),
			t.ExitPrice.StringFixed(2),
			t.GrossPnL.StringFixed(2),
			t.NetPnL.StringFixed(2),
			t.Commission.StringFixed(2),
			strconv.Itoa(t.HoldingDays),
			t.ReturnPct.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteTradesFile writes the trade table to a file at path.
func WriteTradesFile(path string, trades []types.TradeRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()
	return WriteTradesCSV(f, trades)
}

// ReadTradesCSV parses a trade table produced by WriteTradesCSV.
func ReadTradesCSV(r io.Reader) ([]types.TradeRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(tradeCSVHeader) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var trades []types.TradeRecord
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		entryDate, err := time.Parse(csvDateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("parse entry_date: %w", err)
		}
		exitDate, err := time.Parse(csvDateLayout, record[1])
		if err != nil {
			return nil, fmt.Errorf("parse exit_date: %w", err)
		}
		holdingDays, err := strconv.Atoi(record[9])
		if err != nil {
			return nil, fmt.Errorf("parse holding_days: %w", err)
		}

		fields := make([]decimal.Decimal, 0, 7)
		for _, i := range []int{3, 4, 5, 6, 7, 8, 10} {
			d, err := decimal.NewFromString(record[i])
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", tradeCSVHeader[i], err)
			}
			fields = append(fields, d)
		}

		trades = append(trades, types.TradeRecord{
			EntryDate:   entryDate,
			ExitDate:    exitDate,
			Ticker:      record[2],
			Size:        fields[0],
			EntryPrice:  fields[1],
			ExitPrice:   fields[2],
			GrossPnL:    fields[3],
			NetPnL:      fields[4],
			Commission:  fields[5],
			HoldingDays: holdingDays,
			ReturnPct:   fields[6],
		})
	}
	return trades, nil
}

// WriteSummaryCSV writes the summary as a single-row table with the summary
// field names as headers, in their fixed order.
func WriteSummaryCSV(w io.Writer, s Summary) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	fields := s.Fields()
	header := make([]string, len(fields))
	row := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Key
		row[i] = f.Value
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteSummaryFile writes the summary CSV to a file at path.
func WriteSummaryFile(path string, s Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer f.Close()
	return WriteSummaryCSV(f, s)
}
