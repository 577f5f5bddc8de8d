package services

// Exclusions holds the tender's growth-exclusion sets: cost-category
// references whose subcontracted lines must not receive the growth step.
// The zero value excludes nothing.
type Exclusions struct {
	Works     map[string]struct{}
	Materials map[string]struct{}
}

// IsExcluded reports whether a line with the given category and
// cost-category reference is growth-excluded. Only subcontracted
// categories are ever excluded.
func (e Exclusions) IsExcluded(cat Category, costCategory string) bool {
	if costCategory == "" {
		return false
	}
	switch cat {
	case CategorySubWork:
		_, ok := e.Works[costCategory]
		return ok
	case CategorySubMaterial:
		_, ok := e.Materials[costCategory]
		return ok
	}
	return false
}

// FilterExcluded removes every step referencing growthKey from the
// sequence when excluded is true, re-linking the remaining steps so no
// reference dangles: a reference to a removed step falls back to
// BaseOriginal, any other reference is shifted down by the number of
// removed steps before it. When excluded is false the sequence is
// returned unchanged.
func FilterExcluded(seq []Step, excluded bool, growthKey string) []Step {
	if !excluded || growthKey == "" {
		return seq
	}
	return removeStepsByKey(seq, growthKey)
}

// removeStepsByKey drops every step referencing the parameter key and
// re-links the survivors. The re-linked sequence preserves causal
// validity: every remaining base index is BaseOriginal or a valid index
// strictly before the step's new position.
func removeStepsByKey(seq []Step, key string) []Step {
	removed := make([]bool, len(seq))
	newIndex := make([]int, len(seq))
	kept := 0
	for i, st := range seq {
		if st.ReferencesParameter(key) {
			removed[i] = true
			newIndex[i] = BaseOriginal
			continue
		}
		newIndex[i] = kept
		kept++
	}
	if kept == len(seq) {
		return seq
	}

	relink := func(idx int) int {
		if idx == BaseOriginal || removed[idx] {
			return BaseOriginal
		}
		return newIndex[idx]
	}

	out := make([]Step, 0, kept)
	for i, st := range seq {
		if removed[i] {
			continue
		}
		ns := Step{Op: st.Op, Base: relink(st.Base)}
		ns.Operands = make([]Operand, len(st.Operands))
		for j, op := range st.Operands {
			if op.Kind == OperandStep {
				op.Step = relink(op.Step)
			}
			ns.Operands[j] = op
		}
		out = append(out, ns)
	}
	return out
}
