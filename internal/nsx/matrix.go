package nsx

// SampleMatrix is a row-major int16 matrix. For continuous data rows are
// samples and columns are channels; for spike waveforms rows are
// individual waveforms.
type SampleMatrix struct {
	Rows   int
	Cols   int
	Values []int16 // row-major, len == Rows*Cols
}

// NewSampleMatrix allocates a zeroed Rows x Cols matrix.
func NewSampleMatrix(rows, cols int) *SampleMatrix {
	return &SampleMatrix{
		Rows:   rows,
		Cols:   cols,
		Values: make([]int16, rows*cols),
	}
}

// At returns the value at row r, column c.
func (m *SampleMatrix) At(r, c int) int16 {
	return m.Values[r*m.Cols+c]
}

// Set stores v at row r, column c.
func (m *SampleMatrix) Set(r, c int, v int16) {
	m.Values[r*m.Cols+c] = v
}

// Row returns the r-th row as a slice sharing the matrix storage.
func (m *SampleMatrix) Row(r int) []int16 {
	return m.Values[r*m.Cols : (r+1)*m.Cols]
}

// Column returns a copy of column c.
func (m *SampleMatrix) Column(c int) []int16 {
	out := make([]int16, m.Rows)
	for r := 0; r < m.Rows; r++ {
		out[r] = m.Values[r*m.Cols+c]
	}
	return out
}

// TrimRows truncates the matrix to its first n rows. The trim is defined
// purely by the logical row count, so row contents are never reshuffled.
func (m *SampleMatrix) TrimRows(n int) {
	if n > m.Rows {
		panic("nsx: TrimRows beyond allocated rows")
	}
	m.Rows = n
	m.Values = m.Values[:n*m.Cols]
}
