package database

import (
	"fmt"

	"lotes-backend/models"
)

// AutoMigrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Money column types (NUMERIC(14,2))
// - Foreign keys: purchases → lots/users, payments → purchases/users
// - Basic CHECK constraints on amounts and balances
// The raw-SQL hardening is Postgres-only; other dialects (the sqlite test
// harness) stop after the GORM migration.
func AutoMigrate() error {
	if err := DB.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.ProjectStage{},
		&models.Lot{},
		&models.Purchase{},
		&models.Payment{},
		&models.PQRS{},
		&models.IdempotencyKey{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	if DB.Dialector.Name() != "postgres" {
		return nil
	}

	// --- Enforce money columns as NUMERIC(14,2) (idempotent ALTERs) ---
	alters := []string{
		`ALTER TABLE lots      ALTER COLUMN price             TYPE numeric(14,2)`,
		`ALTER TABLE lots      ALTER COLUMN installment_value TYPE numeric(14,2)`,
		`ALTER TABLE purchases ALTER COLUMN total_value       TYPE numeric(14,2)`,
		`ALTER TABLE purchases ALTER COLUMN installment_value TYPE numeric(14,2)`,
		`ALTER TABLE purchases ALTER COLUMN total_paid        TYPE numeric(14,2)`,
		`ALTER TABLE purchases ALTER COLUMN balance           TYPE numeric(14,2)`,
		`ALTER TABLE payments  ALTER COLUMN amount            TYPE numeric(14,2)`,
	}
	for _, stmt := range alters {
		if err := DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
		}
	}

	// --- Foreign keys (RESTRICT: a purchased lot and a paid purchase are immovable) ---
	fks := []struct{ table, name, sql string }{
		{"purchases", "fk_purchases_lot",
			`ALTER TABLE purchases ADD CONSTRAINT fk_purchases_lot
			 FOREIGN KEY (lot_id) REFERENCES lots(id)
			 ON UPDATE RESTRICT ON DELETE RESTRICT`},
		{"purchases", "fk_purchases_client",
			`ALTER TABLE purchases ADD CONSTRAINT fk_purchases_client
			 FOREIGN KEY (client_id) REFERENCES users(id)
			 ON UPDATE RESTRICT ON DELETE RESTRICT`},
		{"payments", "fk_payments_purchase",
			`ALTER TABLE payments ADD CONSTRAINT fk_payments_purchase
			 FOREIGN KEY (purchase_id) REFERENCES purchases(id)
			 ON UPDATE RESTRICT ON DELETE RESTRICT`},
		{"payments", "fk_payments_client",
			`ALTER TABLE payments ADD CONSTRAINT fk_payments_client
			 FOREIGN KEY (client_id) REFERENCES users(id)
			 ON UPDATE RESTRICT ON DELETE RESTRICT`},
	}
	for _, fk := range fks {
		stmt := fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1
		FROM pg_constraint
		WHERE conrelid = '%s'::regclass
		  AND conname  = '%s'
	) THEN
		%s;
	END IF;
END $$;`, fk.table, fk.name, fk.sql)
		if err := DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("foreign key migration failed (%s): %w", fk.name, err)
		}
	}

	// --- Basic CHECK constraints (idempotent) ---
	checks := []struct{ table, name, expr string }{
		{"lots", "chk_lots_price_nonneg", "price >= 0"},
		{"payments", "chk_payments_amount_pos", "amount > 0"},
		{"payments", "chk_payments_installment_pos", "installment_number >= 1"},
		{"purchases", "chk_purchases_total_paid_nonneg", "total_paid >= 0"},
		{"purchases", "chk_purchases_installments_pos", "installments > 0"},
	}
	for _, ck := range checks {
		stmt := fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%s'::regclass
		  AND conname  = '%s'
	) THEN
		ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
	END IF;
END $$;`, ck.table, ck.name, ck.table, ck.name, ck.expr)
		if err := DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("check constraint migration failed (%s): %w", ck.name, err)
		}
	}

	return nil
}
