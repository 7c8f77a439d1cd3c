package storage

// The schema evolves through numbered versions tracked in SQLite's
// user_version pragma. Migrations are additive only: a version may create
// new tables and indexes but never alters or drops what an earlier version
// created, so data written under any old version survives every upgrade.
// Each step is applied once, when the database's recorded version is below
// it, and guards with IF NOT EXISTS so a re-run is harmless.

var migrations = []string{
	// v1: practice sessions and their handwriting answers.
	`
-- The 'sessions' table records one row per practice run, created when the
-- run starts. lesson_ids is the selected lesson list as a JSON array, in
-- selection order, duplicates preserved.
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    timestamp DATETIME NOT NULL,
    lesson_ids TEXT NOT NULL,
    test_type TEXT NOT NULL,
    total_questions INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON sessions(timestamp);

-- The 'answers' table stores one row per saved handwriting submission.
-- session_id is not a FOREIGN KEY on purpose: the store accepts answers
-- for any session token and leaves referential discipline to the
-- lifecycle layer, matching the cascade-delete contract.
CREATE TABLE IF NOT EXISTS answers (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    question_index INTEGER NOT NULL,
    question_type TEXT NOT NULL,
    target_char TEXT NOT NULL,
    target_zhuyin TEXT NOT NULL,
    context_word TEXT NOT NULL,
    canvas_data BLOB,
    timestamp DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_answers_session_id ON answers(session_id);
CREATE INDEX IF NOT EXISTS idx_answers_timestamp ON answers(timestamp);
`,
	// v2: starred items. id is the derived (type, char, zhuyin) key, so
	// the primary key itself enforces at-most-one row per triple.
	`
CREATE TABLE IF NOT EXISTS starred (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    target_char TEXT NOT NULL,
    target_zhuyin TEXT NOT NULL,
    context_word TEXT NOT NULL,
    timestamp DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_starred_timestamp ON starred(timestamp);
`,
	// v3: questionable items, same shape as starred.
	`
CREATE TABLE IF NOT EXISTS questionable (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    target_char TEXT NOT NULL,
    target_zhuyin TEXT NOT NULL,
    context_word TEXT NOT NULL,
    timestamp DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_questionable_timestamp ON questionable(timestamp);
`,
}
