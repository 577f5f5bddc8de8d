// Package services implements the markup-tactic calculation engine for
// tender cost lines: sequence evaluation, exclusion and tax filtering,
// coefficient caching, cost distribution and batch recalculation.
package services

// Category is the closed set of BOQ item categories.
type Category string

const (
	CategoryMaterial          Category = "material"
	CategoryWork              Category = "work"
	CategorySubMaterial       Category = "sub_material"
	CategorySubWork           Category = "sub_work"
	CategoryComponentMaterial Category = "component_material"
	CategoryComponentWork     Category = "component_work"
)

// Categories lists every valid category, in schema order.
var Categories = []Category{
	CategoryMaterial,
	CategoryWork,
	CategorySubMaterial,
	CategorySubWork,
	CategoryComponentMaterial,
	CategoryComponentWork,
}

// MaterialSubtype refines material-like categories.
type MaterialSubtype string

const (
	SubtypeBasic     MaterialSubtype = "basic"
	SubtypeAuxiliary MaterialSubtype = "auxiliary"
)

// Variant is the distribution category-variant. It is derived once from
// (category, material subtype) so the rest of the engine never re-derives
// it from raw strings.
type Variant string

const (
	VariantBasicMaterial        Variant = "basic_material"
	VariantAuxiliaryMaterial    Variant = "auxiliary_material"
	VariantComponentMaterial    Variant = "component_material"
	VariantSubcontractBasic     Variant = "subcontract_basic"
	VariantSubcontractAuxiliary Variant = "subcontract_auxiliary"
	VariantWork                 Variant = "work"
	VariantComponentWork        Variant = "component_work"
)

// Variants lists the seven distribution variants.
var Variants = []Variant{
	VariantBasicMaterial,
	VariantAuxiliaryMaterial,
	VariantComponentMaterial,
	VariantSubcontractBasic,
	VariantSubcontractAuxiliary,
	VariantWork,
	VariantComponentWork,
}

// ResolveVariant maps a category and material subtype to its distribution
// variant. Materials without an explicit subtype count as basic.
// Subcontracted work has no variant of its own and distributes as work.
func ResolveVariant(cat Category, subtype MaterialSubtype) Variant {
	switch cat {
	case CategoryMaterial:
		if subtype == SubtypeAuxiliary {
			return VariantAuxiliaryMaterial
		}
		return VariantBasicMaterial
	case CategorySubMaterial:
		if subtype == SubtypeAuxiliary {
			return VariantSubcontractAuxiliary
		}
		return VariantSubcontractBasic
	case CategoryComponentMaterial:
		return VariantComponentMaterial
	case CategoryComponentWork:
		return VariantComponentWork
	default:
		return VariantWork
	}
}

// IsSubcontract reports whether the category is one of the subcontracted
// ones, the only categories subject to growth exclusion and anomaly
// detection.
func IsSubcontract(cat Category) bool {
	return cat == CategorySubMaterial || cat == CategorySubWork
}

// isMaterialVariant reports whether the variant routes to the material
// bucket under legacy (policy-less) distribution.
func isMaterialVariant(v Variant) bool {
	switch v {
	case VariantBasicMaterial, VariantAuxiliaryMaterial, VariantComponentMaterial:
		return true
	}
	return false
}
