package storage

const schema = `
-- The 'users' table holds one study account and its running counters.
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL,
    total_studied INTEGER NOT NULL DEFAULT 0, -- correct answers only
    total_mastered INTEGER NOT NULL DEFAULT 0,
    total_errors INTEGER NOT NULL DEFAULT 0
);

-- The 'study_history' table keeps the latest outcome per user and question.
-- question_key is the composite "subjectKey_questionID".
CREATE TABLE IF NOT EXISTS study_history (
    user_id TEXT NOT NULL,
    question_key TEXT NOT NULL,
    last_studied DATETIME, -- NULL when only the mastery flag was set
    is_correct INTEGER NOT NULL DEFAULT 0,
    is_error INTEGER NOT NULL DEFAULT 0,
    is_mastered INTEGER NOT NULL DEFAULT 0,

    PRIMARY KEY(user_id, question_key),
    FOREIGN KEY(user_id) REFERENCES users(id)
);
`
