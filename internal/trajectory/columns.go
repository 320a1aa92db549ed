package trajectory

import "github.com/banshee-data/trajectory.report/internal/kinematics"

// Column describes one field of the output table.
type Column struct {
	Name  string
	Unit  string
	Value func(Row) kinematics.Value
}

func pixel(pick func(kinematics.Motion) kinematics.Value) func(Row) kinematics.Value {
	return func(r Row) kinematics.Value { return pick(r.Pixel) }
}

func metric(pick func(kinematics.Motion) kinematics.Value) func(Row) kinematics.Value {
	return func(r Row) kinematics.Value { return pick(r.Metric) }
}

func posX(m kinematics.Motion) kinematics.Value { return m.X }
func posY(m kinematics.Motion) kinematics.Value { return m.Y }
func velX(m kinematics.Motion) kinematics.Value { return m.VX }
func velY(m kinematics.Motion) kinematics.Value { return m.VY }
func accX(m kinematics.Motion) kinematics.Value { return m.AX }
func accY(m kinematics.Motion) kinematics.Value { return m.AY }

var schema = []Column{
	{"frame", "", func(r Row) kinematics.Value { return kinematics.Some(float64(r.Frame)) }},
	{"time", "s", func(r Row) kinematics.Value { return kinematics.Some(r.Time) }},
	{"x", "px", pixel(posX)},
	{"y", "px", pixel(posY)},
	{"vx", "px/s", pixel(velX)},
	{"vy", "px/s", pixel(velY)},
	{"ax", "px/s²", pixel(accX)},
	{"ay", "px/s²", pixel(accY)},
	{"x_m", "m", metric(posX)},
	{"y_m", "m", metric(posY)},
	{"vx_m", "m/s", metric(velX)},
	{"vy_m", "m/s", metric(velY)},
	{"ax_m", "m/s²", metric(accX)},
	{"ay_m", "m/s²", metric(accY)},
}

// Schema returns the output columns in their stable order.
func Schema() []Column {
	out := make([]Column, len(schema))
	copy(out, schema)
	return out
}

// Columns returns the column names in order.
func Columns() []string {
	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.Name
	}
	return names
}

// Values returns the row's fields in column order.
func (r Row) Values() []kinematics.Value {
	out := make([]kinematics.Value, len(schema))
	for i, c := range schema {
		out[i] = c.Value(r)
	}
	return out
}

// Record returns the row's fields in column order with NaN for
// undefined values.
func (r Row) Record() []float64 {
	vals := r.Values()
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v.Float64()
	}
	return out
}
