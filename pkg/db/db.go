package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/olyadmengistu/quicktalk/configs"
)

type Db struct {
	DB *gorm.DB
}

func NewDb(cfg *configs.Config) (*Db, error) {
	conn, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Db{DB: conn}, nil
}
