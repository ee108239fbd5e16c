package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	Id           int64           `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Cash         decimal.Decimal `json:"cash"`
	CreatedAt    time.Time       `json:"createdAt"`
}
