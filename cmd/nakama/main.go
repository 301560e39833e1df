// Command nakama builds the Truco runtime plugin:
//
//	go build -buildmode=plugin -trimpath -o truco.so ./cmd/nakama
package main

import (
	"context"
	"database/sql"

	"truco/internal/ports/nakama"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule is the symbol Nakama looks up when loading the plugin.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	return nakama.InitModule(ctx, logger, db, nk, initializer)
}

// main is never run: the package is loaded as a plugin. It exists so that
// `go build ./...` can link this package in the default build mode.
func main() {}
