package mixture

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// WriteCSV writes the sample set as one row per sample, plain float columns,
// no header. An empty set writes nothing.
func (s *SampleSet) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	record := make([]string, s.dim)

	for i := 0; i < s.n; i++ {
		row := s.Row(i)
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write sample row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush samples: %w", err)
	}
	return nil
}

// ReadCSV reads a sample set written by WriteCSV. All rows must have the
// same number of columns. An empty input yields an empty set of dimension 0.
func ReadCSV(r io.Reader) (*SampleSet, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read sample rows: %w", err)
	}
	if len(records) == 0 {
		return &SampleSet{}, nil
	}

	d := len(records[0])
	data := mat.NewDense(len(records), d, nil)
	for i, record := range records {
		if len(record) != d {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(record), d)
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i, j, err)
			}
			data.Set(i, j, v)
		}
	}

	return &SampleSet{data: data, n: len(records), dim: d}, nil
}

// mixtureJSON is the on-disk form of a Mixture, with covariances as nested
// row-major arrays.
type mixtureJSON struct {
	Weights []float64     `json:"weights"`
	Means   [][]float64   `json:"means"`
	Covs    [][][]float64 `json:"covs"`
}

// WriteJSON serializes the mixture as indented JSON.
func (m *Mixture) WriteJSON(w io.Writer) error {
	out := mixtureJSON{
		Weights: m.Weights,
		Means:   m.Means,
		Covs:    make([][][]float64, len(m.Covs)),
	}
	for i, cov := range m.Covs {
		d := cov.SymmetricDim()
		rows := make([][]float64, d)
		for r := 0; r < d; r++ {
			rows[r] = make([]float64, d)
			for c := 0; c < d; c++ {
				rows[r][c] = cov.At(r, c)
			}
		}
		out.Covs[i] = rows
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode mixture: %w", err)
	}
	return nil
}

// ReadJSON deserializes and validates a mixture written by WriteJSON.
func ReadJSON(r io.Reader) (*Mixture, error) {
	var in mixtureJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("failed to decode mixture: %w", err)
	}

	mix := &Mixture{
		Weights: in.Weights,
		Means:   in.Means,
		Covs:    make([]*mat.SymDense, len(in.Covs)),
	}
	for i, rows := range in.Covs {
		d := len(rows)
		if d == 0 {
			return nil, fmt.Errorf("%w: covariance %d is empty", ErrInvalidMixture, i)
		}
		cov := mat.NewSymDense(d, nil)
		for r := 0; r < d; r++ {
			if len(rows[r]) != d {
				return nil, fmt.Errorf("%w: covariance %d row %d has %d columns, want %d",
					ErrInvalidMixture, i, r, len(rows[r]), d)
			}
			for c := r; c < d; c++ {
				cov.SetSym(r, c, rows[r][c])
			}
		}
		mix.Covs[i] = cov
	}

	if err := mix.Validate(); err != nil {
		return nil, err
	}
	return mix, nil
}
