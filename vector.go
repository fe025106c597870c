package df

import (
	"fmt"
	"math"
	"time"
)

// Vector holds the data of a column. The underlying slice is one of []string, []float64, []int or
// []time.Time. Missing floats are NaN, missing strings are "".
type Vector struct {
	dt DataTypes

	data any
}

// NewVector creates a vector of type dt from data. data may be a slice or a scalar and is converted
// if its type does not match dt.
func NewVector(data any, dt DataTypes) (*Vector, error) {
	if dt == DTunknown {
		if dt = WhatAmI(data); dt == DTunknown {
			return nil, fmt.Errorf("unsupported data type in NewVector")
		}
	}

	if WhatAmI(data) == dt {
		switch x := data.(type) {
		case []float64, []int, []string, []time.Time:
			return &Vector{dt: dt, data: x}, nil
		}
	}

	v, e := toSlc(data, dt)
	if e != nil {
		return nil, e
	}

	return &Vector{dt: dt, data: v}, nil
}

// MakeVector creates a zero-valued vector of length n.
func MakeVector(dt DataTypes, n int) *Vector {
	switch dt {
	case DTfloat:
		return &Vector{dt: dt, data: make([]float64, n)}
	case DTint:
		return &Vector{dt: dt, data: make([]int, n)}
	case DTstring:
		return &Vector{dt: dt, data: make([]string, n)}
	case DTdate:
		return &Vector{dt: dt, data: make([]time.Time, n)}
	default:
		panic(fmt.Errorf("cannot make Vector with data type %s", dt))
	}
}

func (v *Vector) VectorType() DataTypes {
	return v.dt
}

func (v *Vector) AsAny() any {
	return v.data
}

func (v *Vector) Len() int {
	switch x := v.data.(type) {
	case []float64:
		return len(x)
	case []int:
		return len(x)
	case []string:
		return len(x)
	case []time.Time:
		return len(x)
	default:
		return 0
	}
}

// AsFloat returns the data as []float64. The slice is shared if the vector is DTfloat.
func (v *Vector) AsFloat() ([]float64, error) {
	if v.dt == DTfloat {
		return v.data.([]float64), nil
	}

	vx, e := v.Coerce(DTfloat)
	if e != nil {
		return nil, e
	}

	return vx.data.([]float64), nil
}

func (v *Vector) AsInt() ([]int, error) {
	if v.dt == DTint {
		return v.data.([]int), nil
	}

	vx, e := v.Coerce(DTint)
	if e != nil {
		return nil, e
	}

	return vx.data.([]int), nil
}

func (v *Vector) AsString() ([]string, error) {
	if v.dt == DTstring {
		return v.data.([]string), nil
	}

	vx, e := v.Coerce(DTstring)
	if e != nil {
		return nil, e
	}

	return vx.data.([]string), nil
}

func (v *Vector) AsDate() ([]time.Time, error) {
	if v.dt == DTdate {
		return v.data.([]time.Time), nil
	}

	vx, e := v.Coerce(DTdate)
	if e != nil {
		return nil, e
	}

	return vx.data.([]time.Time), nil
}

func (v *Vector) Element(indx int) any {
	if indx < 0 || indx >= v.Len() {
		panic(fmt.Errorf("index out of range"))
	}

	switch x := v.data.(type) {
	case []float64:
		return x[indx]
	case []int:
		return x[indx]
	case []string:
		return x[indx]
	case []time.Time:
		return x[indx]
	default:
		panic(fmt.Errorf("error in Element"))
	}
}

// Missing returns true if element indx is missing.
func (v *Vector) Missing(indx int) bool {
	return IsMissing(v.Element(indx))
}

// Copy returns a deep copy of v.
func (v *Vector) Copy() *Vector {
	vCopy := &Vector{dt: v.dt}

	switch x := v.data.(type) {
	case []float64:
		vCopy.data = append([]float64(nil), x...)
	case []int:
		vCopy.data = append([]int(nil), x...)
	case []string:
		vCopy.data = append([]string(nil), x...)
	case []time.Time:
		vCopy.data = append([]time.Time(nil), x...)
	default:
		panic(fmt.Errorf("unexpected error in Vector.Copy"))
	}

	return vCopy
}

// Gather returns a new vector made of the elements at indx, in that order.
func (v *Vector) Gather(indx []int) *Vector {
	out := MakeVector(v.dt, len(indx))

	switch x := v.data.(type) {
	case []float64:
		o := out.data.([]float64)
		for ind, i := range indx {
			o[ind] = x[i]
		}
	case []int:
		o := out.data.([]int)
		for ind, i := range indx {
			o[ind] = x[i]
		}
	case []string:
		o := out.data.([]string)
		for ind, i := range indx {
			o[ind] = x[i]
		}
	case []time.Time:
		o := out.data.([]time.Time)
		for ind, i := range indx {
			o[ind] = x[i]
		}
	}

	return out
}

// Less is strict. Missing floats sort last.
func (v *Vector) Less(i, j int) bool {
	switch x := v.data.(type) {
	case []float64:
		if math.IsNaN(x[i]) {
			return false
		}

		if math.IsNaN(x[j]) {
			return true
		}

		return x[i] < x[j]
	case []int:
		return x[i] < x[j]
	case []string:
		return x[i] < x[j]
	case []time.Time:
		return x[i].Before(x[j])
	default:
		panic(fmt.Errorf("unsupported data type in Less"))
	}
}

// Coerce converts v to type to. It fails on the first element that cannot be converted.
func (v *Vector) Coerce(to DataTypes) (*Vector, error) {
	if to == v.dt {
		return v.Copy(), nil
	}

	x, e := toSlc(v.data, to)
	if e != nil {
		return nil, e
	}

	return &Vector{dt: to, data: x}, nil
}

func (v *Vector) String() string {
	return fmt.Sprintf("%v", v.data)
}

// toSlc converts xIn, a slice or a scalar, to a slice of type target.
func toSlc(xIn any, target DataTypes) (any, error) {
	var elems []any
	switch x := xIn.(type) {
	case []float64:
		for _, xv := range x {
			elems = append(elems, xv)
		}
	case []int:
		for _, xv := range x {
			elems = append(elems, xv)
		}
	case []string:
		for _, xv := range x {
			elems = append(elems, xv)
		}
	case []time.Time:
		for _, xv := range x {
			elems = append(elems, xv)
		}
	case []any:
		elems = x
	default:
		elems = []any{xIn}
	}

	out := MakeVector(target, len(elems))
	for ind, el := range elems {
		val, e := toDataType(el, target, false)
		if e != nil {
			return nil, e
		}

		switch target {
		case DTfloat:
			out.data.([]float64)[ind] = val.(float64)
		case DTint:
			out.data.([]int)[ind] = val.(int)
		case DTstring:
			out.data.([]string)[ind] = val.(string)
		case DTdate:
			out.data.([]time.Time)[ind] = val.(time.Time)
		}
	}

	return out.data, nil
}
