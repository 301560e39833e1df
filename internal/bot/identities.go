package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
	AvatarIndex int    `json:"avatar_index"`
}

var (
	mu            sync.RWMutex
	botIdentities []BotIdentity
	botByID       = map[string]BotIdentity{}
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		var ids []BotIdentity
		if err := json.Unmarshal(data, &ids); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		botIdentities = ids
		for _, identity := range ids {
			if identity.UserID != "" {
				botByID[identity.UserID] = identity
			}
		}
	})
	return loadErr
}

// ProvisionBots ensures that bot accounts exist in the Nakama database and have the is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		for i := range botIdentities {
			identity := &botIdentities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   identity.Difficulty,
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}
			botByID[userID] = *identity
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Difficulty: %s", identity.DisplayName, userID, identity.Difficulty)
		}
	})
}

// GetBotIdentity returns the pooled identity at index (mod pool size) that is
// not in exclude. With no usable pool entry an ephemeral identity is minted
// and registered so IsBot recognizes it.
func GetBotIdentity(index int, exclude map[string]bool) BotIdentity {
	mu.Lock()
	defer mu.Unlock()
	for i := 0; i < len(botIdentities); i++ {
		identity := botIdentities[(index+i)%len(botIdentities)]
		if identity.UserID != "" && !exclude[identity.UserID] {
			return identity
		}
	}
	identity := BotIdentity{
		UserID:      "bot-" + uuid.NewString(),
		Username:    fmt.Sprintf("bot%d", index),
		DisplayName: fmt.Sprintf("AI Player %d", index+1),
		Difficulty:  "medium",
	}
	botByID[identity.UserID] = identity
	return identity
}

// Lookup returns the identity of a bot user id.
func Lookup(userID string) (BotIdentity, bool) {
	mu.RLock()
	defer mu.RUnlock()
	identity, ok := botByID[userID]
	return identity, ok
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	_, ok := Lookup(userID)
	return ok
}
