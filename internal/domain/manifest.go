package domain

// ManifestEntry records one successfully replaced asset for downstream
// persistence. Errored and skipped assets are not listed here; they remain
// inspectable on the run itself.
type ManifestEntry struct {
	OriginalReference  string `json:"original_reference"`
	GeneratedReference string `json:"generated_reference"`
	DescriptiveText    string `json:"descriptive_text"`
	Section            string `json:"section"`
	Prompt             string `json:"prompt"`
}

// LocalizationResult packages the output of a finished run.
type LocalizationResult struct {
	FinalDocument string          `json:"final_document"`
	Manifest      []ManifestEntry `json:"manifest"`
}
