package df

import "fmt"

// DataTypes are the types of data that a column may hold
type DataTypes uint8

// values of DataTypes
const (
	DTunknown DataTypes = 0 + iota
	DTstring
	DTfloat
	DTint
	DTdate
)

// MaxDT is the max value of DataTypes type
const MaxDT = DTdate

//go:generate stringer -type=DataTypes

// DTFromString returns the DataTypes whose String() is nm, DTunknown if there is none.
func DTFromString(nm string) DataTypes {
	var nms []string
	for ind := DataTypes(0); ind <= MaxDT; ind++ {
		nms = append(nms, fmt.Sprintf("%v", ind))
	}

	pos := position(nm, nms)
	if pos < 0 {
		return DTunknown
	}

	return DataTypes(uint8(pos))
}
