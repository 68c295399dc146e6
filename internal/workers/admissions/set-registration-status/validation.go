package setregistrationstatus

import "admissions-engine/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["registrationId"],
  "properties": {
    "authToken":      {"type": "string"},
    "registrationId": {"type": "string", "minLength": 1},
    "status":         {"type": "string", "enum": ["pending", "waiting", "admitted", "rejected", "removed"]},
    "resume":         {"type": "boolean"}
  },
  "anyOf": [
    {"required": ["status"]},
    {"properties": {"resume": {"enum": [true]}}, "required": ["resume"]}
  ]
}`)
