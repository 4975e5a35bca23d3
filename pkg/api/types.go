package api

type ListSourcesResponseItem struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type ListSourcesResponse = []ListSourcesResponseItem

type GetSourceResponse struct {
	Name            string `json:"name"`
	Path            string `json:"path"`
	Description     string `json:"description"`
	LineLengthGuess int    `json:"lineLengthGuess"`
	CreatedAt       int64  `json:"createdAt"`
	UpdatedAt       int64  `json:"updatedAt"`
}

// GetSourceTailRequest selects how many trailing lines to return.
// Zero returns the whole file.
type GetSourceTailRequest struct {
	N int `query:"n" validate:"min=0"`
}

type GetMetaResponse struct {
	Name       string `json:"name"`
	Exists     bool   `json:"exists"`
	Refreshing bool   `json:"refreshing"`
	Size       int64  `json:"size"`
	Mtime      int64  `json:"mtime"`
	UpdatedAt  int64  `json:"updatedAt"`
	NextRun    int64  `json:"nextRun"`
}

type ListMetasResponse = []GetMetaResponse
