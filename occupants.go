package main

// sensible heat per occupant, W/person
func getQOccupant() float64 {
	return 75.0
}

// InternalLoads is the split of the internal heat gains of a zone, W
type InternalLoads struct {
	Convective float64
	Radiative  float64
	Latent     float64
}

/*
Split the internal gains into convective and radiative parts.

	Args:
	    z: zone

	Returns:
	    internal loads, W

	Notes:
	    occupants 75 W/person: 50 % convective, 50 % radiative
	    equipment: 50 % / 50 %
	    lighting: 38 % / 62 %
	    latent gains are not modelled.
*/
func splitInternalLoads(z *Zone) InternalLoads {
	qOcc := z.OccupancyDensity * z.Area * getQOccupant()
	qEquip := z.Area * z.EquipmentLoad
	qLight := z.Area * z.LightingLoad
	return InternalLoads{
		Convective: 0.5*qOcc + 0.5*qEquip + 0.38*qLight,
		Radiative:  0.5*qOcc + 0.5*qEquip + 0.62*qLight,
	}
}

/*
Sensible internal gain entering the air in free-float.

	Returns:
	    sensible gain, W

	Notes:
	    occupants 75 W/person, 90 % of equipment, all of lighting
*/
func getQInternalSensible(z *Zone) float64 {
	qOcc := z.OccupancyDensity * z.Area * getQOccupant()
	qEquip := z.Area * z.EquipmentLoad * 0.9
	qLight := z.Area * z.LightingLoad
	return qOcc + qEquip + qLight
}
