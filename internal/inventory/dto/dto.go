package dto

// StockResult reports the outcome of a scalar stock mutation. Insufficiency
// is an ordinary result, not an error: callers read Success and decide
// whether to abort or continue.
type StockResult struct {
	Success   bool
	Stock     int    // stock after the mutation (or unchanged on failure)
	Shortfall int    // how many units were missing, failures only
	Error     string // human-readable failure reason
}
