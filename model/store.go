package model

import "time"

// CorpusStatistics summarises the passage table.
type CorpusStatistics struct {
	TotalChunks    int64      `json:"total_chunks"`
	DistinctTitles int64      `json:"distinct_titles"`
	MeanCharCount  float64    `json:"mean_char_count"`
	LastInsert     *time.Time `json:"last_insert_timestamp"`
}

// StoreHealth reports the readiness of the passage store.
// On connection failure every flag is false and Error holds the cause.
type StoreHealth struct {
	VectorExtensionInstalled bool   `json:"vector_extension_installed"`
	TableExists              bool   `json:"table_exists"`
	VectorIndexExists        bool   `json:"vector_index_exists"`
	ConnectionOK             bool   `json:"connection_ok"`
	Error                    string `json:"error,omitempty"`
}

// UnreachableStore returns a health report for a store that could not be queried.
func UnreachableStore(err error) *StoreHealth {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &StoreHealth{Error: msg}
}
