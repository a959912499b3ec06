package dataviz

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Dataset is tabular data loaded from a file. Values are kept as
// strings; numeric interpretation happens per column on demand, since
// a column may legitimately hold labels.
type Dataset struct {
	Columns []string
	Records [][]string
}

// Load reads a dataset from a CSV, JSON, or JSONL file, dispatching on
// the extension.
func Load(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("data file not found: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".json", ".jsonl":
		return loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported data format %q", filepath.Ext(path))
	}
}

func loadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty csv file %s", path)
	}
	return &Dataset{Columns: rows[0], Records: rows[1:]}, nil
}

// loadJSON accepts an array of objects (columns from the union of
// keys, sorted for determinism), an array of scalars (single "value"
// column), or JSONL with one object per line.
func loadJSON(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var objects []map[string]any
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		for i, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var obj map[string]any
			if err := json.Unmarshal([]byte(line), &obj); err != nil {
				return nil, fmt.Errorf("parse jsonl %s line %d: %w", path, i+1, err)
			}
			objects = append(objects, obj)
		}
		return fromObjects(objects)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse json %s: %w", path, err)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("json dataset %s: top-level value must be an array", path)
	}

	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			// Array of scalars.
			ds := &Dataset{Columns: []string{"value"}}
			for _, v := range list {
				ds.Records = append(ds.Records, []string{stringify(v)})
			}
			return ds, nil
		}
		objects = append(objects, obj)
	}
	return fromObjects(objects)
}

func fromObjects(objects []map[string]any) (*Dataset, error) {
	if len(objects) == 0 {
		return nil, fmt.Errorf("json dataset holds no records")
	}

	seen := map[string]bool{}
	var columns []string
	for _, obj := range objects {
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	ds := &Dataset{Columns: columns}
	for _, obj := range objects {
		row := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := obj[col]; ok {
				row[i] = stringify(v)
			}
		}
		ds.Records = append(ds.Records, row)
	}
	return ds, nil
}

func stringify(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	case nil:
		return ""
	default:
		return fmt.Sprint(n)
	}
}

func (d *Dataset) columnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Floats parses a column as float64 values. Rows whose cell does not
// parse are reported as an error; charts need complete series.
func (d *Dataset) Floats(name string) ([]float64, error) {
	idx := d.columnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("no column %q in dataset", name)
	}
	out := make([]float64, 0, len(d.Records))
	for i, row := range d.Records {
		if idx >= len(row) {
			return nil, fmt.Errorf("row %d has no value for column %q", i+1, name)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, i+1, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Strings returns a column's raw cell values.
func (d *Dataset) Strings(name string) ([]string, error) {
	idx := d.columnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("no column %q in dataset", name)
	}
	out := make([]string, 0, len(d.Records))
	for _, row := range d.Records {
		if idx < len(row) {
			out = append(out, row[idx])
		} else {
			out = append(out, "")
		}
	}
	return out, nil
}

// Index returns 0..n-1 as floats, the x series when no column is named.
func (d *Dataset) Index() []float64 {
	out := make([]float64, len(d.Records))
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
