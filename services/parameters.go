package services

// Well-known markup parameter keys. Tactic sequences reference parameters
// by these keys; tenders may override any value.
const (
	KeyGrowthMaterial    = "growth_mat"
	KeyGrowthWork        = "growth_work"
	KeyGrowthSubMaterial = "growth_sub_mat"
	KeyGrowthSubWork     = "growth_sub_work"
	KeyOverhead          = "overhead"
	KeyOverheadSub       = "overhead_sub"
	KeyProfit            = "profit"
	KeyProfitSub         = "profit_sub"
	KeyTransport         = "transport"
	KeyVAT               = "vat"
)

// ParameterDef describes a well-known parameter: its key, a human label
// and the default percentage used when a tender configures no override.
type ParameterDef struct {
	Key     string
	Label   string
	Default float64
}

// WellKnownParameters is the fixed default parameter set. The parameter
// source must fall back to these values, never to an empty map.
var WellKnownParameters = []ParameterDef{
	{KeyGrowthMaterial, "Material price growth", 5},
	{KeyGrowthWork, "Work price growth", 5},
	{KeyGrowthSubMaterial, "Subcontract material price growth", 10},
	{KeyGrowthSubWork, "Subcontract work price growth", 10},
	{KeyOverhead, "Overhead", 8},
	{KeyOverheadSub, "Subcontract overhead", 10},
	{KeyProfit, "Profit", 12},
	{KeyProfitSub, "Subcontract profit", 16},
	{KeyTransport, "Transport and logistics", 3},
	{KeyVAT, "VAT", 20},
}

// DefaultParameters returns a fresh map of the default values.
func DefaultParameters() map[string]float64 {
	out := make(map[string]float64, len(WellKnownParameters))
	for _, d := range WellKnownParameters {
		out[d.Key] = d.Default
	}
	return out
}

// MergeParameters overlays tender-specific overrides onto the defaults.
// Keys unknown to the default set are carried through as-is.
func MergeParameters(overrides map[string]float64) map[string]float64 {
	out := DefaultParameters()
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// GrowthKeyFor returns the growth parameter key whose steps are removed
// when a line of the given category is excluded. Non-subcontract
// categories are never excluded and return an empty key.
func GrowthKeyFor(cat Category) string {
	switch cat {
	case CategorySubMaterial:
		return KeyGrowthSubMaterial
	case CategorySubWork:
		return KeyGrowthSubWork
	}
	return ""
}
