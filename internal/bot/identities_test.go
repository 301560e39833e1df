package bot

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEphemeralIdentityIsRegistered(t *testing.T) {
	taken := map[string]bool{}
	for _, identity := range botIdentities {
		taken[identity.UserID] = true
	}
	identity := GetBotIdentity(2, taken)
	if identity.UserID == "" {
		t.Fatalf("empty user id")
	}
	if !IsBot(identity.UserID) {
		t.Fatalf("minted identity %s not recognized as a bot", identity.UserID)
	}
	if IsBot("some-human") {
		t.Fatalf("human reported as bot")
	}

	agent, err := NewAgent(identity)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	if agent.ID != identity.UserID || agent.Name != identity.DisplayName {
		t.Fatalf("agent %+v", agent)
	}
}

func TestLoadIdentities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bots.json")
	data := `[{"user_id": "b-1", "username": "bot_one", "display_name": "One", "difficulty": "hard"}]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := LoadIdentities(path); err != nil {
		t.Skipf("identities already loaded: %v", err)
	}
	identity, ok := Lookup("b-1")
	if !ok || identity.DisplayName != "One" {
		t.Fatalf("lookup %+v ok=%v", identity, ok)
	}
	if got := GetBotIdentity(0, nil); got.UserID != "b-1" {
		t.Fatalf("pooled identity not returned: %+v", got)
	}
}
