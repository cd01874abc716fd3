package model

// Role describes how a unit relates to the electricity market.
// Keep these values stable; they are intended for listings and CSV output.
type Role string

const (
	RoleHeatOnly         Role = "HEAT_ONLY"
	RoleCoGeneration     Role = "CO_GENERATION"
	RoleElectricalBoiler Role = "ELECTRIC_BOILER"
)

func RoleFromElectricity(maxElectricity float64) Role {
	switch {
	case maxElectricity > 0:
		return RoleCoGeneration
	case maxElectricity < 0:
		return RoleElectricalBoiler
	default:
		return RoleHeatOnly
	}
}
