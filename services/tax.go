package services

// ExtractTax removes steps applying the tax parameter from the sequence
// so the tax is not compounded inside the cached coefficient, and returns
// the tax percentage for separate application after distribution.
//
// If the tax parameter is not configured (or is zero), or the sequence
// contains no step referencing it, the sequence is returned unchanged
// with a zero tax percentage. A tactic whose author never wired in a tax
// step never has tax force-applied, even when the tender configures a
// tax value.
func ExtractTax(seq []Step, params map[string]float64, taxKey string) ([]Step, float64) {
	taxPercent, ok := params[taxKey]
	if !ok || taxPercent == 0 {
		return seq, 0
	}

	found := false
	for _, st := range seq {
		if st.ReferencesParameter(taxKey) {
			found = true
			break
		}
	}
	if !found {
		return seq, 0
	}

	return removeStepsByKey(seq, taxKey), taxPercent
}

// ApplyTax applies an extracted tax percentage multiplicatively. A zero
// percentage leaves the amount untouched.
func ApplyTax(amount, taxPercent float64) float64 {
	if taxPercent == 0 {
		return amount
	}
	return amount * (1 + taxPercent/100)
}
