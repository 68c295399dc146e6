package marknotificationread

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["studentId", "notificationId"],
  "properties": {
    "authToken":      {"type": "string"},
    "studentId":      {"type": "string", "minLength": 1},
    "notificationId": {"type": "string", "minLength": 1}
  }
}`)
