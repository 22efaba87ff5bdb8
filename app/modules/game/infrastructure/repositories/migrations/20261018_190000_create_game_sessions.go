package gamemigrations

import (
	"context"
	"fmt"

	gamedb "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating game_sessions table...")

		if _, err := db.NewCreateTable().Model((*gamedb.GameSession)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create game_sessions table: %w", err)
		}

		if _, err := db.NewCreateIndex().
			Model((*gamedb.GameSession)(nil)).
			Index("idx_game_sessions_updated_at").
			Column("updated_at").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create game_sessions index: %w", err)
		}

		fmt.Println("game_sessions table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping game_sessions table...")

		if _, err := db.NewDropTable().Model((*gamedb.GameSession)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop game_sessions table: %w", err)
		}

		fmt.Println("game_sessions table dropped successfully!")
		return nil
	})
}
