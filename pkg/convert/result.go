// Package convert turns PDF bytes into the JSON documents served by the API
// and shown by the clients.
package convert

// Result is the canonical conversion output shared by the local and remote pipelines.
type Result struct {
	Filename  string     `json:"filename"`
	Size      int64      `json:"size"`
	Pages     int        `json:"pages"`
	Metadata  Metadata   `json:"metadata"`
	Text      string     `json:"text"`
	PageTexts []PageText `json:"pageTexts"`
}

// Metadata is the fixed set of document fields. Missing values are empty strings.
type Metadata struct {
	Title            string `json:"title"`
	Author           string `json:"author"`
	Subject          string `json:"subject"`
	Creator          string `json:"creator"`
	Producer         string `json:"producer"`
	CreationDate     string `json:"creationDate"`
	ModificationDate string `json:"modificationDate"`
}

// PageText is the extraction outcome of one page.
type PageText struct {
	Page  int    `json:"page"`
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// FailedPages counts pages whose extraction failed.
func (r *Result) FailedPages() int {
	n := 0
	for _, p := range r.PageTexts {
		if p.Error != "" {
			n++
		}
	}
	return n
}

// LegacyResult is the server schema kept for clients of the earlier API.
type LegacyResult struct {
	Text     string         `json:"text"`
	Metadata LegacyMetadata `json:"metadata"`
}

// LegacyMetadata mirrors the parser output of the earlier API.
type LegacyMetadata struct {
	Info     map[string]string `json:"info"`
	Metadata map[string]string `json:"metadata"`
	NumPages int               `json:"numPages"`
	Version  string            `json:"version"`
}
