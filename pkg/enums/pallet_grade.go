package enums

// PalletGrade identifies a product category in the catalog.
type PalletGrade string

const (
	PalletGradeAAA     PalletGrade = "aaa-grade"
	PalletGradeA       PalletGrade = "grade-a"
	PalletGradeB       PalletGrade = "grade-b"
	PalletGradeUnknown PalletGrade = ""
)

// String implements fmt.Stringer.
func (p PalletGrade) String() string {
	return string(p)
}

// SortRank returns the display precedence of the grade. Lower ranks
// list first; unrecognized grades sink to the bottom.
func (p PalletGrade) SortRank() int {
	switch p {
	case PalletGradeAAA:
		return 0
	case PalletGradeA:
		return 1
	case PalletGradeB:
		return 2
	}
	return 3
}
