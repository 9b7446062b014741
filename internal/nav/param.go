package nav

// Param is the value handed from the originating page to the target page's
// Activate. A nil Param means "absent". The concrete variants are the types
// in this file; the target page decides which one it expects.
type Param interface {
	isParam()
}

// IntParam carries a single integer, usually a device id.
// DeviceConfig treats a negative value as "create new".
type IntParam int

func (IntParam) isParam() {}

// RegisterParam selects one register of one device (DataDetail).
type RegisterParam struct {
	DeviceID int
	Address  int
}

func (RegisterParam) isParam() {}

// AsInt returns the integer carried by p, if p is an IntParam.
func AsInt(p Param) (int, bool) {
	v, ok := p.(IntParam)
	return int(v), ok
}

// AsRegister returns p as a RegisterParam, if it is one.
func AsRegister(p Param) (RegisterParam, bool) {
	v, ok := p.(RegisterParam)
	return v, ok
}
