package chooseinstitution

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["studentId", "registrationId"],
  "properties": {
    "authToken":      {"type": "string"},
    "studentId":      {"type": "string", "minLength": 1},
    "registrationId": {"type": "string", "minLength": 1}
  }
}`)
