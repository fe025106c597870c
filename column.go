package df

import "fmt"

// Col is a named Vector. Cols are not modified once they belong to a Table.
type Col struct {
	*Vector

	name string
}

// ColOpt sets a property of a Col when it is created
type ColOpt func(c *Col) error

// ColName sets the name of the column
func ColName(name string) ColOpt {
	return func(c *Col) error {
		if c == nil {
			return fmt.Errorf("nil column to ColName")
		}

		if e := validName(name); e != nil {
			return e
		}

		c.name = name

		return nil
	}
}

// ColDataType forces the column to type dt, converting the data if needed.
func ColDataType(dt DataTypes) ColOpt {
	return func(c *Col) error {
		if c == nil {
			return fmt.Errorf("nil column to ColDataType")
		}

		if c.VectorType() == dt {
			return nil
		}

		v, e := c.Vector.Coerce(dt)
		if e != nil {
			return e
		}

		c.Vector = v

		return nil
	}
}

// NewCol creates a column. data is a slice of float64, int, string or time.Time, or a *Vector.
func NewCol(data any, opts ...ColOpt) (*Col, error) {
	var col *Col
	if v, ok := data.(*Vector); ok {
		col = &Col{Vector: v}
	}

	if col == nil {
		var (
			v *Vector
			e error
		)
		if v, e = NewVector(data, DTunknown); e != nil {
			return nil, e
		}

		col = &Col{Vector: v}
	}

	for _, opt := range opts {
		if e := opt(col); e != nil {
			return nil, e
		}
	}

	return col, nil
}

func (c *Col) Name() string {
	return c.name
}

func (c *Col) DataType() DataTypes {
	return c.VectorType()
}

// Renamed returns a copy of c that shares its data but carries a new name.
func (c *Col) Renamed(newName string) (*Col, error) {
	if e := validName(newName); e != nil {
		return nil, e
	}

	return &Col{Vector: c.Vector, name: newName}, nil
}

func (c *Col) Copy() *Col {
	return &Col{Vector: c.Vector.Copy(), name: c.name}
}

func (c *Col) String() string {
	return fmt.Sprintf("column: %s\ntype: %s\nlength: %d\n", c.Name(), c.DataType(), c.Len())
}
