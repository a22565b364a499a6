package archive

// Well known tag names stamped on every stored document
const (
	TagAppName     = "App-Name"
	TagContentType = "Content-Type"
	TagFileName    = "File-Name"
	TagEncrypted   = "Encrypted"
)

// Descriptive data attached to a document as tags
type Metadata struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`

	// Application level correlation strings (room id, document id, user id).
	// Keys become tag names, values are stored verbatim.
	CorrelationIds map[string]string `json:"correlation_ids,omitempty"`

	// Marks payloads encrypted before upload, the archive never encrypts itself
	Encrypted bool `json:"encrypted"`
}

type UploadOptions struct {
	// Extra caller tags, appended after the metadata derived ones
	Tags map[string]string

	// Stages the document into this batch instead of uploading right away
	BatchId string
}

type UploadResult struct {
	Id          string `json:"id"`
	Url         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`

	// Set when the document got staged into a batch, Id stays
	// empty until that batch commits
	BatchId string `json:"batch_id,omitempty"`
	Queued  bool   `json:"queued,omitempty"`
}

// One file of a multi file upload
type File struct {
	Key      string   `json:"key"`
	Data     []byte   `json:"-"`
	Metadata Metadata `json:"metadata"`
}

type QueryOptions struct {
	CorrelationIds map[string]string
	Tags           map[string]string
	Limit          int
	After          string
}

// Generic object store shim types
type Object struct {
	Body        []byte
	ContentType string
}

type PutResult struct {
	Id  string `json:"id"`
	Url string `json:"url"`
}
