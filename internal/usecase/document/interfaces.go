package document

// Dispatcher hands a persisted document off for background ingestion.
type Dispatcher interface {
	Dispatch(documentID string) error
}
