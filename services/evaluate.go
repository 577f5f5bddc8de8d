package services

import (
	"errors"
	"fmt"
)

// ErrParameterNotFound is returned when a step references a parameter key
// that has no value, not even a default. The caller must treat the line
// as unresolvable rather than silently defaulting.
var ErrParameterNotFound = errors.New("markup parameter not found")

// ErrNoSequence is returned when a tactic defines no sequence for a
// line's category.
var ErrNoSequence = errors.New("no markup sequence for category")

// EvaluateSequence computes the commercial amount produced by applying
// the sequence to baseAmount. Steps are processed strictly in order; each
// step reads the value at its base index (BaseOriginal = baseAmount,
// otherwise a prior step's output), folds its operands in via the step
// operation, and stores the result. The final step's output is returned;
// an empty sequence returns baseAmount unchanged.
//
// Called with baseAmount = 1 the result is the unit coefficient for the
// sequence, which is what the coefficient cache stores.
func EvaluateSequence(baseAmount float64, seq []Step, params map[string]float64) (float64, error) {
	if len(seq) == 0 {
		return baseAmount, nil
	}

	results := make([]float64, len(seq))
	valueAt := func(idx int) float64 {
		if idx == BaseOriginal {
			return baseAmount
		}
		return results[idx]
	}

	for i, st := range seq {
		target := valueAt(st.Base)
		for _, op := range st.Operands {
			v, err := resolveOperand(op, params, valueAt)
			if err != nil {
				return 0, fmt.Errorf("step %d: %w", i, err)
			}
			switch st.Op {
			case OpMultiply:
				target *= 1 + v/100
			case OpAdd:
				target += v
			default:
				return 0, fmt.Errorf("step %d: unknown operation %q", i, st.Op)
			}
		}
		results[i] = target
	}

	return results[len(seq)-1], nil
}

func resolveOperand(op Operand, params map[string]float64, valueAt func(int) float64) (float64, error) {
	switch op.Kind {
	case OperandParameter:
		v, ok := params[op.Key]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrParameterNotFound, op.Key)
		}
		return v, nil
	case OperandLiteral:
		return op.Value, nil
	case OperandStep:
		return valueAt(op.Step), nil
	default:
		return 0, fmt.Errorf("unknown operand kind %q", op.Kind)
	}
}
