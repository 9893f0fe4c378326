package domain

// AssetKind enumerates the replaceable asset categories found in a document.
type AssetKind string

const (
	AssetKindImage      AssetKind = "image"
	AssetKindBackground AssetKind = "background"
	AssetKindVideo      AssetKind = "video"
)

// AssetStatus tracks the lifecycle of a detected asset through a run.
type AssetStatus string

const (
	AssetStatusPending    AssetStatus = "pending"
	AssetStatusGenerating AssetStatus = "generating"
	AssetStatusCompleted  AssetStatus = "completed"
	AssetStatusError      AssetStatus = "error"
	AssetStatusSkipped    AssetStatus = "skipped"
)

// Terminal reports whether the status counts toward run completion.
func (s AssetStatus) Terminal() bool {
	switch s {
	case AssetStatusCompleted, AssetStatusError, AssetStatusSkipped:
		return true
	}
	return false
}

// DetectedAsset is one physically distinct replaceable asset discovered in a
// document. The same reference appearing in two structural contexts yields two
// independent records, each independently replaceable.
type DetectedAsset struct {
	ID                 string      `json:"id"`
	Kind               AssetKind   `json:"kind"`
	OriginalReference  string      `json:"original_reference"`
	DescriptiveText    string      `json:"descriptive_text"`
	Section            string      `json:"section"`
	Width              int         `json:"width,omitempty"`
	Height             int         `json:"height,omitempty"`
	Status             AssetStatus `json:"status"`
	GeneratedReference string      `json:"generated_reference,omitempty"`
	Prompt             string      `json:"prompt,omitempty"`
	ErrorDetail        string      `json:"error_detail,omitempty"`
}
