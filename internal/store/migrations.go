package store

const schema = `
CREATE TABLE IF NOT EXISTS posts (
    id                TEXT PRIMARY KEY,
    title             TEXT NOT NULL,
    content           TEXT NOT NULL DEFAULT '',
    score             INTEGER NOT NULL DEFAULT 0,
    upvote_ratio      REAL NOT NULL DEFAULT 0,
    comments          INTEGER NOT NULL DEFAULT 0,
    author            TEXT NOT NULL DEFAULT '',
    created_utc       INTEGER NOT NULL DEFAULT 0,
    created_iso       TEXT NOT NULL DEFAULT '',
    url               TEXT NOT NULL DEFAULT '',
    flair             TEXT NOT NULL DEFAULT '',
    is_problem_report BOOLEAN NOT NULL DEFAULT 0,
    sentiment         TEXT NOT NULL DEFAULT 'neutral',
    urgency_level     INTEGER NOT NULL DEFAULT 1,
    keywords          TEXT NOT NULL DEFAULT '[]',
    collected_at      INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_posts_created_iso ON posts(created_iso);
CREATE INDEX IF NOT EXISTS idx_posts_created_utc ON posts(created_utc);
CREATE INDEX IF NOT EXISTS idx_posts_urgency ON posts(urgency_level);

CREATE TABLE IF NOT EXISTS keyword_trends (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    keyword TEXT NOT NULL,
    count   INTEGER NOT NULL DEFAULT 0,
    date    TEXT NOT NULL,
    hour    INTEGER NOT NULL,
    UNIQUE(keyword, date, hour)
);

CREATE INDEX IF NOT EXISTS idx_trends_keyword_date ON keyword_trends(keyword, date);
`
