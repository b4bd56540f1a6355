package auth

import "context"

// Authorizer decides whether a chat-platform user may perform admin
// actions. Injected per request instead of consulting global state.
type Authorizer interface {
	IsAdmin(ctx context.Context, userID string) bool
}

type allowList struct {
	ids map[string]struct{}
}

// NewAllowList builds an Authorizer from a fixed set of admin user
// ids. Empty entries are ignored.
func NewAllowList(userIDs []string) Authorizer {
	ids := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			ids[id] = struct{}{}
		}
	}
	return &allowList{ids: ids}
}

func (a *allowList) IsAdmin(_ context.Context, userID string) bool {
	_, ok := a.ids[userID]
	return ok
}
