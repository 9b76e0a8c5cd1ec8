// Package protocol writes connector messages as JSON lines.
//
// Every message is one JSON object on its own line with a "type" field naming the
// payload that follows. Stdout is reserved for these lines; logs go to stderr.
package protocol

// MessageType names the payload carried by a Message.
type MessageType string

const (
	SpecMessage             MessageType = "SPEC"
	ConnectionStatusMessage MessageType = "CONNECTION_STATUS"
	CatalogMessage          MessageType = "CATALOG"
	RecordMessage           MessageType = "RECORD"
	LogMessage              MessageType = "LOG"
)

// Status is the outcome reported in a CONNECTION_STATUS message.
type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Level is the severity of a LOG message.
type Level string

const (
	LevelError Level = "ERROR"
	LevelWarn  Level = "WARN"
	LevelInfo  Level = "INFO"
	LevelDebug Level = "DEBUG"
)

// SyncModeFullRefresh is the only sync mode the connector supports.
const SyncModeFullRefresh = "full_refresh"

type Spec struct {
	ConnectionSpecification map[string]any `json:"connectionSpecification"`
}

type ConnectionStatus struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

type Stream struct {
	Name                    string         `json:"name"`
	JSONSchema              map[string]any `json:"json_schema"`
	SupportedSyncModes      []string       `json:"supported_sync_modes"`
	SourceDefinedPrimaryKey [][]string     `json:"source_defined_primary_key,omitempty"`
}

type Catalog struct {
	Streams []Stream `json:"streams"`
}

type Record struct {
	Stream    string         `json:"stream"`
	Data      map[string]any `json:"data"`
	EmittedAt int64          `json:"emitted_at"`
}

type Log struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Message is the envelope written for every line. Exactly one payload is set.
type Message struct {
	Type             MessageType       `json:"type"`
	Spec             *Spec             `json:"spec,omitempty"`
	ConnectionStatus *ConnectionStatus `json:"connectionStatus,omitempty"`
	Catalog          *Catalog          `json:"catalog,omitempty"`
	Record           *Record           `json:"record,omitempty"`
	Log              *Log              `json:"log,omitempty"`
}

// NewStream describes a full-refresh stream keyed by id with an open object schema.
func NewStream(name string) Stream {
	return Stream{
		Name:                    name,
		JSONSchema:              map[string]any{"type": "object"},
		SupportedSyncModes:      []string{SyncModeFullRefresh},
		SourceDefinedPrimaryKey: [][]string{{"id"}},
	}
}
