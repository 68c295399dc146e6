package auth

import (
	"context"
	"fmt"

	"admissions-engine/internal/common/errors"
)

// Authorize resolves token and checks the session role against allowed.
// A nil resolver means the session provider is not configured and the call is trusted.
func Authorize(ctx context.Context, resolver SessionResolver, token string, allowed ...string) (*Session, error) {
	if resolver == nil {
		return nil, nil
	}
	session, err := resolver.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(allowed) == 0 {
		return session, nil
	}
	for _, role := range allowed {
		if session.Role == role {
			return session, nil
		}
	}
	return nil, errors.NewForbiddenError(fmt.Sprintf("role %q not in %v", session.Role, allowed))
}

// RequireSelf rejects a student session acting on another student's records.
func RequireSelf(session *Session, studentID string) error {
	return RequireOwner(session, RoleStudent, studentID)
}

// RequireOwner rejects a session of the given role acting on a record owned by
// another account. Sessions of other roles pass.
func RequireOwner(session *Session, role, ownerID string) error {
	if session == nil || session.Role != role {
		return nil
	}
	if session.UserID != ownerID {
		return errors.NewForbiddenError(fmt.Sprintf("%s %s may only act on its own records", role, session.UserID))
	}
	return nil
}
