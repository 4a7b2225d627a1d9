package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dataset holds parsed points together with the records they came from.
type Dataset struct {
	// Points holds the coordinates of every record.
	Points [][]float64
	// Records holds the original fields of every record.
	Records [][]string
}

// Dimension returns the dimension of the points, or 0 for an empty dataset.
func (d *Dataset) Dimension() int {
	if len(d.Points) == 0 {
		return 0
	}
	return len(d.Points[0])
}

// ReadOptions configures ReadCSV.
type ReadOptions struct {
	// Comma is the field delimiter. Defaults to ','.
	Comma rune
	// Dimensions is the number of leading fields parsed as coordinates; the
	// remaining fields are kept in the record only. 0 parses every field.
	Dimensions int
}

// ReadCSV parses one point per line. Fields are trimmed before parsing and
// blank lines are skipped. Every point must have the dimension of the first.
func ReadCSV(r io.Reader, optFns ...func(o *ReadOptions)) (*Dataset, error) {
	opts := ReadOptions{Comma: ','}
	for _, fn := range optFns {
		fn(&opts)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	ds := &Dataset{}
	dim := opts.Dimensions
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		line, _ := cr.FieldPos(0)

		n := len(record)
		if dim > 0 {
			if n < dim {
				return nil, fmt.Errorf("dataset: line %d: expected at least %d fields, got %d", line, dim, n)
			}
		} else {
			dim = n
		}
		if opts.Dimensions == 0 && n != dim {
			return nil, fmt.Errorf("dataset: line %d: expected %d fields, got %d", line, dim, n)
		}

		point := make([]float64, dim)
		for i := range point {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: line %d field %d: %w", line, i+1, err)
			}
			point[i] = v
		}

		ds.Points = append(ds.Points, point)
		ds.Records = append(ds.Records, record)
	}

	return ds, nil
}

// WriteAssignments writes one line per point: the assignment followed by the
// original record, or by the coordinates when the dataset has no records.
func WriteAssignments(w io.Writer, ds *Dataset, assignments []int) error {
	if len(assignments) != len(ds.Points) {
		return fmt.Errorf("dataset: %d assignments for %d points", len(assignments), len(ds.Points))
	}

	cw := csv.NewWriter(w)
	for i, a := range assignments {
		var fields []string
		if i < len(ds.Records) {
			fields = ds.Records[i]
		} else {
			fields = formatPoint(ds.Points[i])
		}

		row := make([]string, 0, len(fields)+1)
		row = append(row, strconv.Itoa(a))
		row = append(row, fields...)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("dataset: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePoints writes one line of coordinates per point.
func WritePoints(w io.Writer, points [][]float64) error {
	cw := csv.NewWriter(w)
	for _, p := range points {
		if err := cw.Write(formatPoint(p)); err != nil {
			return fmt.Errorf("dataset: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatPoint(p []float64) []string {
	fields := make([]string, len(p))
	for i, v := range p {
		fields[i] = strconv.FormatFloat(v, 'f', 6, 64)
	}
	return fields
}

// Bounds returns the per-dimension minimum and maximum of points.
// Both are nil for an empty input.
func Bounds(points [][]float64) (lo, hi []float64) {
	if len(points) == 0 {
		return nil, nil
	}
	lo = append([]float64(nil), points[0]...)
	hi = append([]float64(nil), points[0]...)
	for _, p := range points[1:] {
		for i := range min(len(p), len(lo)) {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}
