package main

// OperationMode is the state of the HVAC system over one step.
type OperationMode int

const (
	COOLING OperationMode = iota + 1 // COOLING : cooling
	HEATING                          // HEATING : heating
	STOP                             // STOP : dead band, no conditioning
)

func (m OperationMode) String() string {
	switch m {
	case COOLING:
		return "cooling"
	case HEATING:
		return "heating"
	default:
		return "stop"
	}
}

/*
Operation mode implied by the loads of a step.

	Args:
	    coolingLoad: cooling load, W
	    heatingLoad: heating load, W

	Notes:
	    the larger positive load wins; both zero is the dead band.
*/
func getOperationMode(coolingLoad, heatingLoad float64) OperationMode {
	switch {
	case coolingLoad <= 0 && heatingLoad <= 0:
		return STOP
	case coolingLoad >= heatingLoad:
		return COOLING
	default:
		return HEATING
	}
}
