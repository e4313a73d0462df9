// Package axis exposes the sensed position of the lead (driven) axis — the
// lathe spindle — to the leadscrew controller. The controller never writes
// to the axis; it only reads.
package axis

// Sensor is the single operation the leadscrew controller needs from the
// lead axis: its current signed accumulated position.
type Sensor interface {
	CurrentPosition() int
}

// Overridable is satisfied by Sensor implementations that also let an
// operator force a position directly — Fixed, for benchtop testing without a
// real encoder attached. console's "sensor set" command type-asserts
// for this rather than requiring every Sensor to support it.
type Overridable interface {
	Sensor
	Set(pos int)
}
