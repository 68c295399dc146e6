package reviewaccount

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["kind", "id", "action"],
  "properties": {
    "authToken": {"type": "string"},
    "kind":      {"type": "string", "enum": ["institution", "company"]},
    "id":        {"type": "string", "minLength": 1},
    "action":    {"type": "string", "enum": ["approve", "suspend"]}
  }
}`)
