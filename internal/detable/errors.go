package detable

import "fmt"

// ConfigError reports an invalid or contradictory parameter combination.
// Callers fail with it before producing any output.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Msg
}

// DataError reports input that cannot serve as a results table: missing
// required columns, malformed statistics, or duplicate gene identifiers.
type DataError struct {
	Msg string
}

func (e *DataError) Error() string {
	return "data error: " + e.Msg
}

// ParseError represents an error during table parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("table parse error at line %d: %s", e.Line, e.Message)
}
