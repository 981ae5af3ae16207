package models

// Catalog payload field names filtered by the search engine.
const (
	FieldCategory           = "Category"
	FieldIndividualCategory = "Individual_category"
	FieldGender             = "category_by_Gender"
	FieldColour             = "colour"
)

// SearchFilters is the wire form of the four filterable attributes. Each is
// either a concrete value or "NA".
type SearchFilters struct {
	Category           Attribute `json:"category"`
	IndividualCategory Attribute `json:"individual_category"`
	Gender             Attribute `json:"gender"`
	Colour             Attribute `json:"colour"`
}

// FiltersOf copies the filterable fields of a parsed record.
func FiltersOf(attrs StructuredAttributes) SearchFilters {
	return SearchFilters{
		Category:           attrs.Category,
		IndividualCategory: attrs.IndividualCategory,
		Gender:             attrs.Gender,
		Colour:             attrs.Colour,
	}
}

func (f SearchFilters) Spec() FilterSpec {
	return StructuredAttributes{
		Category:           f.Category,
		IndividualCategory: f.IndividualCategory,
		Gender:             f.Gender,
		Colour:             f.Colour,
	}.Filters()
}

// SearchMode records which branch produced a search result.
type SearchMode string

const (
	SearchModeFiltered SearchMode = "filtered"
	SearchModeSampled  SearchMode = "sampled"
	SearchModeFallback SearchMode = "fallback"
	SearchModeDegraded SearchMode = "degraded"
)
