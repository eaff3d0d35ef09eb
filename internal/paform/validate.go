package paform

// Validate checks required inventory fields for presence in the flattened
// fact bundle. It is deliberately presence-only: no type, format, or
// clinical correctness checks. The outcome is reported alongside the
// result and never blocks filling.
func Validate(inventory *FormInventory, facts *FactBundle) *ValidationOutcome {
	flat := facts.Flatten()

	var missing []string
	for _, field := range inventory.Fields {
		if !field.Required {
			continue
		}
		if flat[field.Identifier] == "" {
			missing = append(missing, field.Identifier)
		}
	}

	return &ValidationOutcome{
		Valid:           len(missing) == 0,
		MissingRequired: missing,
	}
}
