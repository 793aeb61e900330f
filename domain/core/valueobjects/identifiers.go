package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// NodeID is a value object identifying a node in a process graph.
// Value objects are immutable and have no identity beyond their value.
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NewNodeIDFromString creates a NodeID from an existing identifier.
// Identifiers are opaque, stable strings; the only requirement is that
// they are non-empty.
func NewNodeIDFromString(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	return NodeID{value: id}, nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("NodeID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// ProcessID identifies a business process being documented.
type ProcessID struct {
	value string
}

// NewProcessID creates a new random ProcessID
func NewProcessID() ProcessID {
	return ProcessID{value: uuid.New().String()}
}

// NewProcessIDFromString creates a ProcessID from an existing identifier
func NewProcessIDFromString(id string) (ProcessID, error) {
	if id == "" {
		return ProcessID{}, errors.New("process ID cannot be empty")
	}
	return ProcessID{value: id}, nil
}

// String returns the string representation of the ProcessID
func (id ProcessID) String() string {
	return id.value
}

// Equals checks if two ProcessIDs are equal
func (id ProcessID) Equals(other ProcessID) bool {
	return id.value == other.value
}

// IsZero checks if the ProcessID is the zero value
func (id ProcessID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ProcessID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ProcessID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("ProcessID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
