package order

// QueryOrdersModel represents filter parameters for querying the journal.
type QueryOrdersModel struct {
	Ids      []string `json:"ids,omitempty"`
	Statuses []Status `json:"statuses,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Offset   int      `json:"offset,omitempty"`
}
