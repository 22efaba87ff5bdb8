package gamequeue

// SessionReapJob deletes stored game sessions older than the session TTL.
type SessionReapJob struct{}

// Kind returns the job type identifier for River
func (SessionReapJob) Kind() string { return "game_session_reap" }

// QueueName is the dedicated River queue for game maintenance jobs.
const QueueName = "game"
