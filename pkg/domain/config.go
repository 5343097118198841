package domain

// Declared graph interface of an exported cross-encoder. Downstream
// consumers bind to these exact names.
const (
	GraphInputIDs   = "input_ids"
	GraphInputMask  = "attention_mask"
	GraphInputTypes = "token_type_ids"
	GraphOutput     = "logits"
)

const (
	// DefaultModelID is the small MS MARCO cross-encoder used when no
	// model is given on the command line.
	DefaultModelID = "cross-encoder/ms-marco-MiniLM-L6-v2"
	// DefaultMaxSeqLen is the padded sequence length of the example input.
	DefaultMaxSeqLen = 512
	// DefaultOpsetVersion is the highest default-domain opset accepted in
	// an exported graph.
	DefaultOpsetVersion = 14
)

// ExportConfig drives one conversion.
type ExportConfig struct {
	// model identifier on the hub, e.g. "cross-encoder/ms-marco-MiniLM-L6-v2"
	ModelID string
	// destination path for the exported graph
	OutputPath string
	// e.g. 512
	MaxSeqLen int
	// e.g. 14
	OpsetVersion int
	// hub cache directory; resolved to the user cache dir when empty
	CacheDir string
}

// ModelRef is one entry of the batch catalog: a hub identifier and the
// file name the exported graph is written under.
type ModelRef struct {
	ID   string `yaml:"id"`
	File string `yaml:"file"`
}
