package scoreapplicants

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["companyId"],
  "properties": {
    "authToken": {"type": "string"},
    "companyId": {"type": "string", "minLength": 1},
    "minTier":   {"type": "string", "enum": ["not_qualified", "qualified", "interview"]}
  }
}`)
