// Package paform implements the prior-authorization form pipeline: analyze
// the PA form's fillable fields, OCR the referral document, extract
// canonical facts with an LLM, map facts onto form fields, and write a
// filled PDF.
package paform

// FieldKind classifies a form field for mapping and filling purposes.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldCheckbox FieldKind = "checkbox"
	FieldRadio    FieldKind = "radio"
	FieldSelect   FieldKind = "select"
	FieldDate     FieldKind = "date"
	FieldNumber   FieldKind = "number"
)

// Position is a field's location on its page in document units.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FieldDescriptor is the normalized description of one form field.
// Identifier is assumed unique within a document; duplicate identifiers are
// distinct mapping targets that share a write target.
type FieldDescriptor struct {
	Identifier   string    `json:"identifier"`
	Kind         FieldKind `json:"kind"`
	Required     bool      `json:"required"`
	Options      []string  `json:"options,omitempty"`
	Page         int       `json:"page"`
	Position     Position  `json:"position"`
	NearbyText   string    `json:"nearby_text,omitempty"`
	CurrentValue string    `json:"current_value,omitempty"`
}

// InventoryClass says whether an inventory came from real interactive
// widgets or was synthesized because the document exposed none.
type InventoryClass string

const (
	// ClassInteractive inventories were read from the document's widgets
	// and can be filled.
	ClassInteractive InventoryClass = "interactive"

	// ClassGenericFallback inventories are synthesized from a canonical
	// field list when no widgets exist. They surface shape information
	// only and are not fillable.
	ClassGenericFallback InventoryClass = "generic-fallback"
)

// FormInventory is the ordered field list for one document.
type FormInventory struct {
	Fields         []FieldDescriptor `json:"fields"`
	Classification InventoryClass    `json:"classification"`
	SchemaVersion  string            `json:"schema_version"`
}

// FactBundle holds extracted referral facts in four categories. Every
// canonical label is always present; facts the referral does not contain
// carry an empty string, never an omission.
type FactBundle struct {
	Patient   map[string]string `json:"patient_info"`
	Provider  map[string]string `json:"provider_info"`
	Insurance map[string]string `json:"insurance_info"`
	Clinical  map[string]string `json:"clinical_info"`
}

// Flatten merges all categories into a single label to value map.
// Canonical labels are unique across categories.
func (b *FactBundle) Flatten() map[string]string {
	flat := make(map[string]string)
	for _, category := range []map[string]string{b.Patient, b.Provider, b.Insurance, b.Clinical} {
		for label, value := range category {
			flat[label] = value
		}
	}
	return flat
}

// FieldMapping maps field identifiers to the value to write. At most one
// value per identifier; later writers overwrite earlier ones.
type FieldMapping map[string]string

// ValidationOutcome is a presence-only check of required fields against
// the flattened fact bundle. It is reported, never enforced.
type ValidationOutcome struct {
	Valid           bool     `json:"valid"`
	MissingRequired []string `json:"missing_required"`
}

// FillReport describes a fill run. Mapped counts mapping entries, Written
// counts widgets actually updated; the two diverging is observability
// signal, not an error.
type FillReport struct {
	OutputPath    string `json:"output_path,omitempty"`
	FieldsMapped  int    `json:"fields_mapped"`
	FieldsWritten int    `json:"fields_written"`
}

// ProcessingResult is the single result object for one pipeline run.
// Failures are carried as data so the consumer boundary renders a uniform
// response regardless of which stage failed.
type ProcessingResult struct {
	Success        bool               `json:"success"`
	FilledPDFPath  string             `json:"filled_pdf_path,omitempty"`
	ExtractedData  *FactBundle        `json:"extracted_data,omitempty"`
	Validation     *ValidationOutcome `json:"validation_result,omitempty"`
	FieldsMapped   int                `json:"fields_mapped"`
	FieldsWritten  int                `json:"fields_written"`
	ProcessingTime float64            `json:"processing_time"`
	ErrorMessage   string             `json:"error_message,omitempty"`
}
