package domain

// ClassificationResult is a transient category/priority suggestion. Either
// field may be nil when no confident value is available.
type ClassificationResult struct {
	Category *TicketCategory
	Priority *TicketPriority
}

// Empty reports whether neither field carries a value.
func (r ClassificationResult) Empty() bool {
	return r.Category == nil && r.Priority == nil
}

// Complete reports whether both fields carry a value.
func (r ClassificationResult) Complete() bool {
	return r.Category != nil && r.Priority != nil
}

// NewClassificationResult builds a result from raw values, keeping only
// those that belong to their enumeration. Each field is checked on its own.
func NewClassificationResult(category, priority string) ClassificationResult {
	var result ClassificationResult
	if c, ok := ParseCategory(category); ok {
		result.Category = &c
	}
	if p, ok := ParsePriority(priority); ok {
		result.Priority = &p
	}
	return result
}
