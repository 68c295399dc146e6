package applycourse

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["studentId", "courseId"],
  "properties": {
    "authToken": {"type": "string"},
    "studentId": {"type": "string", "minLength": 1, "maxLength": 128},
    "courseId":  {"type": "string", "minLength": 1, "maxLength": 128}
  }
}`)
