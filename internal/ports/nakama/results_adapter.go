package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"truco/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	resultsCollection = "truco_results"
	winsWalletKey     = "truco_wins"
)

// multiUpdater is the slice of runtime.NakamaModule the results adapter needs.
type multiUpdater interface {
	MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error)
}

// NakamaResultsAdapter stores finished games and credits a win to every
// human on the winning team in one MultiUpdate.
type NakamaResultsAdapter struct {
	nk multiUpdater
}

// NewNakamaResultsAdapter creates a new results adapter.
func NewNakamaResultsAdapter(nk multiUpdater) *NakamaResultsAdapter {
	return &NakamaResultsAdapter{nk: nk}
}

// RecordGameResult writes the result under the room id once; a second write
// for the same room is ignored.
func (a *NakamaResultsAdapter) RecordGameResult(ctx context.Context, result ports.GameResult) error {
	if a.nk == nil {
		return nil
	}
	if result.RoomID == "" {
		return fmt.Errorf("room id is required")
	}

	value, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal game result: %w", err)
	}

	storageWrites := []*runtime.StorageWrite{
		{
			Collection:      resultsCollection,
			Key:             result.RoomID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}

	var walletUpdates []*runtime.WalletUpdate
	for _, p := range result.Winners() {
		walletUpdates = append(walletUpdates, &runtime.WalletUpdate{
			UserID:    p.UserID,
			Changeset: map[string]int64{winsWalletKey: 1},
			Metadata: map[string]interface{}{
				"room_id": result.RoomID,
				"scores":  result.Scores,
			},
		})
	}

	if _, _, err := a.nk.MultiUpdate(ctx, nil, storageWrites, nil, walletUpdates, true); err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return nil
		}
		return fmt.Errorf("failed to record game result: %w", err)
	}
	return nil
}

var _ ports.ResultsPort = (*NakamaResultsAdapter)(nil)
