package core

// TargetFilterValue is the fixed mapping of unit-filter category names to
// bit positions 0..61, used by the codegen of a Param with
// ValueType="unitfilter".
var TargetFilterValue = map[string]int{
	"Self":                 0,
	"Player":               1,
	"Ally":                 2,
	"Neutral":              3,
	"Enemy":                4,
	"Air":                  5,
	"Ground":               6,
	"Light":                7,
	"Armored":              8,
	"Biological":           9,
	"Robotic":              10,
	"Mechanical":           11,
	"Psionic":              12,
	"Massive":              13,
	"Structure":            14,
	"Hover":                15,
	"Heroic":               16,
	"User1":                17,
	"Worker":               18,
	"RawResource":          19,
	"HarvestableResource":  20,
	"Missile":              21,
	"Destructible":         22,
	"Item":                 23,
	"Uncommandable":        24,
	"CanHaveEnergy":        25,
	"CanHaveShields":       26,
	"PreventDefeat":        27,
	"PreventReveal":        28,
	"Buried":               29,
	"Cloaked":              30,
	"Visible":              31,
	"Stasis":               32,
	"UnderConstruction":    33,
	"Dead":                 34,
	"Revivable":            35,
	"Hidden":               36,
	"Hallucination":        37,
	"Invulnerable":         38,
	"HasEnergy":            39,
	"HasShields":           40,
	"Benign":               41,
	"Passive":              42,
	"Detector":             43,
	"Radar":                44,
	"Stunned":              45,
	"Summoned":             46,
	"Unstoppable":          47,
	"Outer":                48,
	"Resistant":            49,
	"Silenced":             50,
	"Dazed":                51,
	"MapBoss":              52,
	"Decaying":             53,
	"Raisable":             54,
	"HeroUnit":             55,
	"NonBuildingUnit":      56,
	"GroundUnit":           57,
	"AirUnit":              58,
	"Powerup":              59,
	"PowerupOrItem":        60,
	"NeutralHostile":       61,
}

// DefaultReturnValues is the default-value literal for each return kind
//; unlisted kinds have no
// default and generate an empty literal.
var DefaultReturnValues = map[string]string{
	"bool":   "true",
	"int":    "0",
	"string": "null",
}

// TypeMap remaps a handful of ReturnType/ParamDef type spellings onto the
// underlying type their codegen behaves as.
var TypeMap = map[string]string{
	"gamelink":         "string",
	"difficulty":       "int",
	"filepath":         "string",
	"userinstance":     "string",
	"actormsg":         "string",
	"catalogfieldpath": "string",
	"userfield":        "string",
	"layoutframe":      "string",
}

// ResolveType applies TypeMap, returning t unchanged if it has no
// remapping.
func ResolveType(t string) string {
	if mapped, ok := TypeMap[t]; ok {
		return mapped
	}
	return t
}
