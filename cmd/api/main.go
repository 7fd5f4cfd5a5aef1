package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/ledgerline/identity-core/cmd/api/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Version kong.VersionFlag
		Serve   commands.ServeCmd   `cmd:"" default:"1" help:"Start the HTTP API."`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply database migrations and exit."`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("identity-core"),
		kong.Description("Multi-tenant identity and authorization service."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Version: version})
	cmd.FatalIfErrorf(err)
}
