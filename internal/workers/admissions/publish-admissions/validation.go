package publishadmissions

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["institutionId"],
  "properties": {
    "authToken":     {"type": "string"},
    "institutionId": {"type": "string", "minLength": 1}
  }
}`)
