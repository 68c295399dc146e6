package submitgrades

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["studentId", "institutionId", "marks", "skills"],
  "properties": {
    "authToken":     {"type": "string"},
    "studentId":     {"type": "string", "minLength": 1},
    "institutionId": {"type": "string", "minLength": 1},
    "marks":         {"type": "number", "exclusiveMinimum": 0},
    "skills":        {"type": "array", "minItems": 1, "items": {"type": "string"}}
  }
}`)
