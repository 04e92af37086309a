package ingest

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Report is the outcome of one upload. Processed == Inserted + Skipped and
// every skipped row has exactly one entry in Errors, in row order.
type Report struct {
	OK        bool       `json:"ok"`
	Processed int        `json:"processed"`
	Inserted  int        `json:"inserted"`
	Skipped   int        `json:"skipped"`
	Errors    []RowError `json:"errors"`
}

func newReport() *Report {
	return &Report{OK: true, Errors: []RowError{}}
}

func (r *Report) insert() {
	r.Processed++
	r.Inserted++
	rowsProcessed.Add(1)
	rowsInserted.Add(1)
}

func (r *Report) skip(row int, reason string) {
	r.Processed++
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Row: row, Error: reason})
	rowsProcessed.Add(1)
	rowsSkipped.Add(1)
}
