package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"truco/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients looking for a table.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// quickMatchQuery matches Truco tables that have not dealt yet and still have a seat.
const quickMatchQuery = "+label.open:>=1 +label.game:" + GameName + " +label.phase:" + string(domain.PhaseNotStarted)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	limit := 10
	authoritative := true

	minSize := 1
	maxSize := domain.SeatCount - 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		return encodeQuickMatch(QuickMatchResponse{MatchID: matches[0].MatchId})
	}

	// Seats are handed out in MatchJoin.
	matchID, err := nk.MatchCreate(ctx, MatchNameTruco, map[string]interface{}{})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}
	return encodeQuickMatch(QuickMatchResponse{MatchID: matchID, IsNew: true})
}

func encodeQuickMatch(resp QuickMatchResponse) (string, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
