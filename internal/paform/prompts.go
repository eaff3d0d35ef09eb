package paform

import "fmt"

// extractionSystemPrompt instructs the model to behave as a data entry
// specialist: extract only, never invent, leave unknowns empty, answer
// with raw JSON.
const extractionSystemPrompt = `You are an expert AI assistant specializing in extracting structured data from unstructured medical documents. Your task is to act as a data entry specialist, accurately populating a JSON object based on a provided schema and a referral text.

Follow these rules strictly:
1. **Analyze the Schema**: Carefully examine the provided JSON schema which defines the structure of the form to be filled. Pay attention to field names, types, and nesting. The schema represents the fields available on the PA form.
2. **Extract Information**: Read the referral text and find the information that corresponds to each field in the schema.
3. **Populate JSON**: Fill the values in the JSON object. Your primary goal is to map referral data to the form fields.
4. **Handle Missing Data**: If a piece of information for a specific field is not found in the referral text, leave its value as an empty string (""). Do not invent or infer data. If you are unsure, it's better to leave it empty.
5. **Strict JSON Format**: Your final output must be a single, valid JSON object that strictly adheres to the provided schema. Do not add any explanatory text, greetings, or markdown before or after the JSON object. Just the raw JSON.`

// extractionUserPrompt embeds the canonical schema skeleton and the
// referral text.
func extractionUserPrompt(schemaJSON, referralText string) string {
	return fmt.Sprintf(`Please extract the required information from the 'REFERRAL_TEXT' below and use it to populate the fields in the 'JSON_SCHEMA'.

**JSON_SCHEMA**:
%s

**REFERRAL_TEXT**:
---
%s
---

Your response must be only the populated JSON object.`, schemaJSON, referralText)
}

// mappingPrompt asks the model to match extracted facts to PDF fields
// using field kind and nearby text as signal, preferring unmapped over a
// low-confidence guess.
func mappingPrompt(dataJSON, fieldsJSON string) string {
	return fmt.Sprintf(`You are an expert at mapping medical form data to PDF form fields. Your task is to map the extracted referral data to the correct PDF form fields based on the field metadata.

EXTRACTED REFERRAL DATA:
%s

PDF FORM FIELDS (with metadata):
%s

INSTRUCTIONS:
1. Analyze each PDF field's name, type, and nearby text to understand what information it's asking for
2. Match the extracted referral data to the most appropriate PDF field
3. Consider field types (text, checkbox, etc.) when making matches
4. For checkboxes, use "yes"/"no" or "true"/"false" values
5. Only map fields where you have high confidence in the match
6. Return a JSON object with PDF field names as keys and values as the data to fill

MAPPING RULES:
- Patient name fields often have "name", "first", "last" in nearby text
- Date fields often have "date", "dob", "birth" in nearby text
- Address fields often have "address", "street", "city", "state", "zip" in nearby text
- Phone fields often have "phone", "tel" in nearby text
- Diagnosis fields often have "diagnosis", "icd", "code" in nearby text
- Medication fields often have "medication", "drug", "prescription" in nearby text
- Provider fields often have "provider", "doctor", "physician", "npi" in nearby text
- Insurance fields often have "insurance", "member", "group", "policy" in nearby text

Return ONLY a JSON object with the mapping, no other text:`, dataJSON, fieldsJSON)
}
