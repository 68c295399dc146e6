package listregistrations

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "properties": {
    "authToken":     {"type": "string"},
    "studentId":     {"type": "string", "minLength": 1},
    "institutionId": {"type": "string", "minLength": 1}
  },
  "oneOf": [
    {"required": ["studentId"]},
    {"required": ["institutionId"]}
  ]
}`)
