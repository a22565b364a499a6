package store

// Response of the bundler node to a data item submission
type UploadResponse struct {
	Id                  string   `json:"id"`
	Timestamp           uint64   `json:"timestamp"`
	Version             string   `json:"version"`
	DeadlineHeight      uint64   `json:"deadlineHeight"`
	DataCaches          []string `json:"dataCaches"`
	FastFinalityIndexes []string `json:"fastFinalityIndexes"`
	Public              string   `json:"public"`
	Signature           string   `json:"signature"`
	Owner               string   `json:"owner"`
}

type BalanceResponse struct {
	Balance string `json:"balance"`
}

// Advisory balance snapshot. Amount is "unknown" when the balance
// endpoint could not be reached - the check never blocks an upload.
type Balance struct {
	Amount     string `json:"amount"`
	Sufficient bool   `json:"sufficient"`
}

const BalanceUnknown = "unknown"
