package store

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id            UUID PRIMARY KEY,
	user_id       TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	message_count INTEGER NOT NULL DEFAULT 0,
	current_mode  TEXT NULL CHECK (current_mode IN ('popular_destinations', 'travel_planning', 'food_recommendation')),
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS conversations_user_updated_idx ON conversations (user_id, updated_at DESC);

CREATE TABLE IF NOT EXISTS messages (
	id              UUID PRIMARY KEY,
	seq             BIGSERIAL,
	conversation_id UUID NOT NULL REFERENCES conversations (id) ON DELETE CASCADE,
	user_id         TEXT NOT NULL,
	role            TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
	content         TEXT NOT NULL CHECK (content <> ''),
	timestamp       TIMESTAMPTZ NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS messages_conversation_timestamp_idx ON messages (conversation_id, timestamp);
CREATE INDEX IF NOT EXISTS messages_user_idx ON messages (user_id);
CREATE INDEX IF NOT EXISTS messages_timestamp_idx ON messages (timestamp);
`
