package inviteinterview

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["registrationId", "date", "time", "place"],
  "properties": {
    "authToken":      {"type": "string"},
    "registrationId": {"type": "string", "minLength": 1},
    "date":           {"type": "string", "minLength": 1},
    "time":           {"type": "string", "minLength": 1},
    "place":          {"type": "string", "minLength": 1, "maxLength": 500}
  }
}`)
