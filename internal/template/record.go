package template

// Record is the populated C01 template: one nullable signed amount per
// canonical row, all in a single currency. The populator is the only writer;
// after population the record is treated as read-only.
type Record struct {
	TemplateType string
	Currency     string

	values map[RowID]float64
}

// NewRecord creates an empty record in the given currency.
func NewRecord(currency string) *Record {
	return &Record{
		TemplateType: TemplateTypeC01,
		Currency:     currency,
		values:       make(map[RowID]float64),
	}
}

// Value returns the amount for a row and whether it is populated.
func (r *Record) Value(id RowID) (float64, bool) {
	v, ok := r.values[id]
	return v, ok
}

// IsNull reports whether a row holds no value.
func (r *Record) IsNull(id RowID) bool {
	_, ok := r.values[id]
	return !ok
}

// PopulatedCount returns the number of non-null rows.
func (r *Record) PopulatedCount() int {
	return len(r.values)
}

func (r *Record) set(id RowID, v float64) {
	r.values[id] = v
}
