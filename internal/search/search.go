package search

// ProjectRecord is the data we index per project.
type ProjectRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	ClientName  string `json:"clientName"`
	Description string `json:"description"`
	BaselineID  string `json:"baselineId,omitempty"`
	Currency    string `json:"currency"`
}

// Result is a single search hit returned to the caller.
type Result struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	ClientName string `json:"clientName"`
	Snippet    string `json:"snippet"`
	BaselineID string `json:"baselineId,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text   string
	Limit  int
	Offset int
}

// Searcher can execute a full-text search over projects.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}
