package services

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// OperandKind tags an operand slot of a markup step.
type OperandKind string

const (
	OperandParameter OperandKind = "parameter" // named percentage parameter
	OperandLiteral   OperandKind = "literal"   // fixed number
	OperandStep      OperandKind = "step"      // output of a prior step
)

// Operand is one populated slot of a markup step. Exactly one of Key,
// Value or Step is meaningful, selected by Kind.
type Operand struct {
	Kind  OperandKind `json:"kind"`
	Key   string      `json:"key,omitempty"`
	Value float64     `json:"value,omitempty"`
	Step  int         `json:"step,omitempty"`
}

// StepOp is the operation a markup step applies per operand.
type StepOp string

const (
	// OpMultiply applies each operand as a percentage markup:
	// target = target * (1 + operand/100).
	OpMultiply StepOp = "multiply"
	// OpAdd applies each operand as a flat amount: target = target + operand.
	OpAdd StepOp = "add"
)

// BaseOriginal is the virtual base index referring to the original
// (pre-markup) amount rather than a prior step's output.
const BaseOriginal = -1

// MaxOperands bounds the number of operand slots per step.
const MaxOperands = 5

// Step is one unit of a markup sequence. Base identifies the value the
// step operates on: BaseOriginal for the line's base amount, or the index
// of a strictly earlier step.
type Step struct {
	Op       StepOp    `json:"op"`
	Base     int       `json:"base"`
	Operands []Operand `json:"operands"`
}

// ReferencesParameter reports whether any operand of the step references
// the given parameter key.
func (s Step) ReferencesParameter(key string) bool {
	for _, op := range s.Operands {
		if op.Kind == OperandParameter && op.Key == key {
			return true
		}
	}
	return false
}

// validateStepFields checks the field-level shape of a single step.
func validateStepFields(s Step) error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Op, validation.Required, validation.In(OpMultiply, OpAdd)),
		validation.Field(&s.Operands,
			validation.Required,
			validation.Length(1, MaxOperands),
			validation.Each(validation.By(validateOperand)),
		),
	)
}

func validateOperand(value interface{}) error {
	op, _ := value.(Operand)
	switch op.Kind {
	case OperandParameter:
		if op.Key == "" {
			return fmt.Errorf("parameter operand requires a key")
		}
	case OperandLiteral:
		// any number is allowed
	case OperandStep:
		// range is checked against the step position in ValidateSequence
	default:
		return fmt.Errorf("unknown operand kind %q", op.Kind)
	}
	return nil
}

// ValidateSequence checks every step's fields and the causal validity of
// its references: a base or step-reference operand may only point at
// BaseOriginal or a step strictly before the current one.
func ValidateSequence(seq []Step) error {
	for i, st := range seq {
		if err := validateStepFields(st); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if st.Base < BaseOriginal || st.Base >= i {
			return fmt.Errorf("step %d: base index %d is not a prior step", i, st.Base)
		}
		for j, op := range st.Operands {
			if op.Kind == OperandStep && (op.Step < BaseOriginal || op.Step >= i) {
				return fmt.Errorf("step %d: operand %d references step %d which is not prior", i, j, op.Step)
			}
		}
	}
	return nil
}

// DecodeSteps parses a stored JSON sequence and validates it.
func DecodeSteps(raw []byte) ([]Step, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var seq []Step
	if err := json.Unmarshal(raw, &seq); err != nil {
		return nil, fmt.Errorf("decode steps: %w", err)
	}
	if err := ValidateSequence(seq); err != nil {
		return nil, err
	}
	return seq, nil
}

// EncodeSteps serializes a sequence for storage.
func EncodeSteps(seq []Step) ([]byte, error) {
	return json.Marshal(seq)
}
