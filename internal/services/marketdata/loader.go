// Package marketdata loads candle history from files exported by exchanges or other tools.
package marketdata

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/rsivolume/internal/domain"
)

var columns = []string{"time", "open", "high", "low", "close", "volume"}

var timeAliases = map[string]string{
	"date":      "time",
	"timestamp": "time",
	"open_time": "time",
}

// LoadFile reads a candle series from a .csv or .json file and validates it.
func LoadFile(path string) (domain.CandleSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open candles file %s", path)
	}
	defer f.Close()

	var series domain.CandleSeries
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		series, err = ReadCSV(f)
	case ".json":
		series, err = ReadJSON(f)
	default:
		return nil, errors.Errorf("unsupported candles file extension %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read candles from %s", path)
	}

	if err := series.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid candles in %s", path)
	}
	return series, nil
}

// ReadCSV parses rows of time,open,high,low,close,volume. A header row is optional; when
// present it may list the columns in any order. Time is unix milliseconds or RFC3339.
func ReadCSV(r io.Reader) (domain.CandleSeries, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}
	if len(records) == 0 {
		return nil, domain.ErrEmptySeries
	}

	index := map[string]int{}
	for i, name := range columns {
		index[name] = i
	}
	if header, ok := parseHeader(records[0]); ok {
		index = header
		records = records[1:]
	}

	series := make(domain.CandleSeries, 0, len(records))
	for n, record := range records {
		c, err := candleFromRecord(record, index)
		if err != nil {
			return nil, errors.Wrapf(err, "csv row %d", n+1)
		}
		series = append(series, c)
	}
	return series, nil
}

func parseHeader(record []string) (map[string]int, bool) {
	index := make(map[string]int, len(record))
	for i, field := range record {
		name := strings.ToLower(strings.TrimSpace(field))
		if alias, ok := timeAliases[name]; ok {
			name = alias
		}
		index[name] = i
	}
	for _, name := range columns {
		if _, ok := index[name]; !ok {
			return nil, false
		}
	}
	return index, true
}

func candleFromRecord(record []string, index map[string]int) (domain.Candle, error) {
	field := func(name string) (string, error) {
		i := index[name]
		if i >= len(record) {
			return "", errors.Errorf("missing %s column", name)
		}
		return strings.TrimSpace(record[i]), nil
	}

	raw, err := field("time")
	if err != nil {
		return domain.Candle{}, err
	}
	ts, err := parseTime(raw)
	if err != nil {
		return domain.Candle{}, err
	}

	values := make([]decimal.Decimal, 0, len(columns)-1)
	for _, name := range columns[1:] {
		raw, err := field(name)
		if err != nil {
			return domain.Candle{}, err
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Candle{}, errors.Wrapf(err, "incorrect %s value %q", name, raw)
		}
		values = append(values, v)
	}

	return newCandle(ts, values), nil
}

type jsonCandle struct {
	Time   json.RawMessage `json:"time"`
	Date   json.RawMessage `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// ReadJSON parses either an array of objects with time,open,high,low,close,volume fields or
// an array of [time, open, high, low, close, volume] arrays.
func ReadJSON(r io.Reader) (domain.CandleSeries, error) {
	var items []json.RawMessage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, errors.Wrap(err, "decode json candles")
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptySeries
	}

	series := make(domain.CandleSeries, 0, len(items))
	for n, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			return nil, errors.Errorf("json candle %d is empty", n)
		}

		var (
			c   domain.Candle
			err error
		)
		if item[0] == '[' {
			c, err = candleFromArray(item)
		} else {
			c, err = candleFromObject(item)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "json candle %d", n)
		}
		series = append(series, c)
	}
	return series, nil
}

func candleFromArray(item json.RawMessage) (domain.Candle, error) {
	var values []decimal.Decimal
	if err := json.Unmarshal(item, &values); err != nil {
		return domain.Candle{}, errors.Wrap(err, "decode candle array")
	}
	if len(values) < len(columns) {
		return domain.Candle{}, errors.Errorf("candle array has %d values, want %d", len(values), len(columns))
	}
	return newCandle(time.UnixMilli(values[0].IntPart()).UTC(), values[1:]), nil
}

func candleFromObject(item json.RawMessage) (domain.Candle, error) {
	var obj jsonCandle
	if err := json.Unmarshal(item, &obj); err != nil {
		return domain.Candle{}, errors.Wrap(err, "decode candle object")
	}

	raw := obj.Time
	if len(raw) == 0 {
		raw = obj.Date
	}
	if len(raw) == 0 {
		return domain.Candle{}, errors.New("candle time is required")
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return domain.Candle{}, errors.Wrap(err, "decode candle time")
		}
	} else {
		s = string(raw)
	}
	ts, err := parseTime(s)
	if err != nil {
		return domain.Candle{}, err
	}

	return domain.Candle{
		Time:   ts,
		Open:   obj.Open,
		High:   obj.High,
		Low:    obj.Low,
		Close:  obj.Close,
		Volume: obj.Volume,
	}, nil
}

func newCandle(ts time.Time, v []decimal.Decimal) domain.Candle {
	return domain.Candle{
		Time:   ts,
		Open:   v[0],
		High:   v[1],
		Low:    v[2],
		Close:  v[3],
		Volume: v[4],
	}
}

func parseTime(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Errorf("incorrect candle time %q, want unix milliseconds or RFC3339", s)
	}
	return ts.UTC(), nil
}
