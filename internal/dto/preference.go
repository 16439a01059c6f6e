package dto

// UpsertPreferencesRequest replaces a student's stored preferences for a term.
type UpsertPreferencesRequest struct {
	PreferencesInput
}
