package infra

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// NewReportingDB returns the sqlx handle used by aggregate queries. With a
// replica URL it opens a dedicated lib/pq pool; otherwise it shares the
// primary's pool through gorm.
func NewReportingDB(primary *gorm.DB, replicaURL string) (*sqlx.DB, error) {
	if replicaURL != "" {
		db, err := sqlx.Connect("postgres", replicaURL)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(5)
		return db, nil
	}
	sqlDB, err := primary.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, "pgx"), nil
}
