package migrations

import (
	"context"
	"fmt"

	"github.com/quatton/fina/pkg/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Print(" [up migration] ")

		_, err := db.NewCreateTable().
			Model((*models.Transaction)(nil)).
			IfNotExists().
			ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewRaw("CREATE INDEX IF NOT EXISTS transactions_user_id_idx ON transactions (user_id)").Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Print(" [down migration] ")

		if _, err := db.NewRaw("DROP INDEX IF EXISTS transactions_user_id_idx").Exec(ctx); err != nil {
			return err
		}

		_, err := db.NewDropTable().Model((*models.Transaction)(nil)).IfExists().Exec(ctx)
		return err
	})
}
