package paform

import "encoding/json"

// The canonical fact schema: a fixed, document-independent list of
// human-readable labels the fact extractor always targets, regardless of
// how any particular form names its fields. Extraction quality therefore
// does not depend on a document's field-naming quality; the mapper bridges
// canonical labels to real identifiers afterwards.

const schemaVersion = "1.0"

var patientLabels = []string{
	"Patient First Name",
	"Patient Last Name",
	"Patient DOB",
	"Patient Sex",
	"Patient Address",
	"Patient City",
	"Patient State",
	"Patient Zip Code",
	"Patient Phone Number",
}

var providerLabels = []string{
	"Prescribing Provider First Name",
	"Prescribing Provider Last Name",
	"Provider NPI",
	"Provider Phone Number",
	"Provider Fax Number",
	"Clinic Name",
}

var insuranceLabels = []string{
	"Insurance Plan Name",
	"Insurance Member ID",
	"Insurance Group Number",
}

var clinicalLabels = []string{
	"Primary Diagnosis (ICD-10 Code)",
	"Secondary Diagnosis (ICD-10 Code)",
	"Medication Requested",
	"Dosage",
	"Frequency",
	"Has the patient tried other treatments?",
	"List previous treatments and reasons for failure",
	"Is this a renewal or continuation of therapy?",
	"Date of last treatment",
	"Clinical notes justifying medical necessity",
}

// NewFactBundle returns a bundle with every canonical label present and
// empty.
func NewFactBundle() *FactBundle {
	emptyMap := func(labels []string) map[string]string {
		m := make(map[string]string, len(labels))
		for _, label := range labels {
			m[label] = ""
		}
		return m
	}
	return &FactBundle{
		Patient:   emptyMap(patientLabels),
		Provider:  emptyMap(providerLabels),
		Insurance: emptyMap(insuranceLabels),
		Clinical:  emptyMap(clinicalLabels),
	}
}

// canonicalSkeletonJSON renders the category -> label -> "" skeleton that
// goes into the extraction prompt. Keys serialize in sorted order, which
// keeps the prompt deterministic.
func canonicalSkeletonJSON() string {
	out, err := json.MarshalIndent(NewFactBundle(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

// factBundleSchema validates the shape of extractor output: an object with
// the four category objects whose values are strings (numbers and booleans
// are tolerated and coerced later).
const factBundleSchema = `{
  "type": "object",
  "required": ["patient_info", "provider_info", "insurance_info", "clinical_info"],
  "properties": {
    "patient_info":   {"type": "object"},
    "provider_info":  {"type": "object"},
    "insurance_info": {"type": "object"},
    "clinical_info":  {"type": "object"}
  }
}`

// genericFallbackFields is the synthesized inventory used when a document
// exposes no interactive widgets. It surfaces the expected shape of a PA
// form; it is not fillable.
func genericFallbackFields() []FieldDescriptor {
	return []FieldDescriptor{
		{Identifier: "Patient First Name", Kind: FieldText},
		{Identifier: "Patient Last Name", Kind: FieldText},
		{Identifier: "Patient DOB", Kind: FieldDate},
		{Identifier: "Diagnosis Code (ICD-10)", Kind: FieldText},
		{Identifier: "Prescribed Medication", Kind: FieldText},
		{Identifier: "Provider NPI", Kind: FieldText},
		{Identifier: "Insurance Member ID", Kind: FieldText},
	}
}
