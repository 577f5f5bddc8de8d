package services

// Bucket names one of the two commercial output buckets.
type Bucket string

const (
	BucketMaterial Bucket = "material"
	BucketWork     Bucket = "work"
)

// DistributionTargets says where a variant's pre-markup amount and markup
// delta land.
type DistributionTargets struct {
	Base   Bucket
	Markup Bucket
}

// DistributionPolicy maps category-variants to their targets. A nil map
// means the tender has no policy configured at all (legacy routing).
type DistributionPolicy map[Variant]DistributionTargets

// Split is a commercial amount divided between the two buckets.
type Split struct {
	Material float64
	Work     float64
}

// Total returns the sum of both buckets.
func (s Split) Total() float64 { return s.Material + s.Work }

// Distribute splits a line's base amount and markup (commercial − base)
// between the material and work buckets.
//
// With no policy at all, legacy routing applies: material variants put
// the whole commercial amount in the material bucket, everything else in
// the work bucket, nothing split. With a policy that lacks the specific
// variant, component material falls back to the auxiliary-material rule,
// component work to the plain-work rule, and subcontract variants to
// legacy routing (entire commercial amount into the work bucket).
func Distribute(baseAmount, commercial float64, variant Variant, policy DistributionPolicy) Split {
	if policy == nil {
		return legacySplit(variant, commercial)
	}

	targets, ok := policy[variant]
	if !ok {
		switch variant {
		case VariantComponentMaterial:
			targets, ok = policy[VariantAuxiliaryMaterial]
		case VariantComponentWork:
			targets, ok = policy[VariantWork]
		case VariantSubcontractBasic, VariantSubcontractAuxiliary:
			return legacySplit(variant, commercial)
		}
	}
	if !ok {
		return legacySplit(variant, commercial)
	}

	markup := commercial - baseAmount
	var out Split
	route(&out, targets.Base, baseAmount)
	route(&out, targets.Markup, markup)
	return out
}

func route(s *Split, b Bucket, amount float64) {
	if b == BucketMaterial {
		s.Material += amount
		return
	}
	s.Work += amount
}

// legacySplit routes the entire commercial amount to a single bucket:
// material for plain/component materials, work for works and
// subcontracted variants.
func legacySplit(variant Variant, commercial float64) Split {
	if isMaterialVariant(variant) {
		return Split{Material: commercial}
	}
	return Split{Work: commercial}
}
