package handler

type ArticleResponse struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type ListResponse struct {
	Articles []ArticleResponse `json:"articles"`
	Total    int               `json:"total"`
	State    string            `json:"state"`
	Error    string            `json:"error,omitempty"`
}

type StateResponse struct {
	State string `json:"state"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}
