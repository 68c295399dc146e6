package checkjobmatches

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["studentId"],
  "properties": {
    "authToken": {"type": "string"},
    "studentId": {"type": "string", "minLength": 1}
  }
}`)
