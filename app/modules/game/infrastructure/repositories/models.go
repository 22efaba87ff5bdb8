package gamedb

import (
	"time"

	"github.com/uptrace/bun"
)

// GameSession is one stored game snapshot.
type GameSession struct {
	bun.BaseModel `bun:"table:game_sessions,alias:gs"`
	Key           string    `bun:"session_key,pk,notnull,type:varchar(255)"`
	Payload       string    `bun:"payload,notnull,type:text"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
