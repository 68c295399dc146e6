package applyjob

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["studentId", "jobId"],
  "properties": {
    "authToken": {"type": "string"},
    "studentId": {"type": "string", "minLength": 1},
    "jobId":     {"type": "string", "minLength": 1}
  }
}`)
