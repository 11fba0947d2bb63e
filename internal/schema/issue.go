// -----------------------------------------------------------------------
// Schema validation issues - field-level problems in model output
// -----------------------------------------------------------------------

package schema

import "fmt"

// Issue is a single field-level problem found in parsed model output
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// Messages flattens issues to plain strings for warning lists
func Messages(issues []Issue) []string {
	if len(issues) == 0 {
		return nil
	}
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.String()
	}
	return out
}
