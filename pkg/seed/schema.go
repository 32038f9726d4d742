// pkg/seed/schema.go
package seed

// File is the on-disk seed format.
type File struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"maxParticipants"`
	Participants    []string `json:"participants,omitempty"`
}

// fileSchema is the JSON Schema every seed file must satisfy.
const fileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["activities"],
  "properties": {
    "version": {"type": "string"},
    "lastUpdated": {"type": "string"},
    "activities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "description", "schedule", "maxParticipants"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "schedule": {"type": "string"},
          "maxParticipants": {"type": "integer", "minimum": 0},
          "participants": {
            "type": "array",
            "items": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`
