package nakama

import (
	"context"

	"truco/internal/ports"
)

// accountUpdater is the slice of runtime.NakamaModule the account adapter needs.
type accountUpdater interface {
	AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error
}

// NakamaAccountAdapter implements ports.AccountPort on Nakama accounts.
type NakamaAccountAdapter struct {
	nk accountUpdater
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk accountUpdater) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// UpdateProfile renames the account and tags it as a truco player. Empty
// fields are left unchanged by Nakama.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	metadata := map[string]interface{}{"game": GameName}
	return a.nk.AccountUpdateId(ctx, userID, username, metadata, displayName, "", "", "", "")
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
