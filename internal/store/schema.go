package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS game (
    id               INTEGER PRIMARY KEY,
    display_name     TEXT NOT NULL,
    executable_name  TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS flag (
    id               INTEGER PRIMARY KEY,
    name             TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS has_flag (
    game_id          INTEGER NOT NULL REFERENCES game(id) ON DELETE CASCADE,
    flag_id          INTEGER NOT NULL REFERENCES flag(id) ON DELETE CASCADE,
    value            INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (game_id, flag_id)
);

CREATE TABLE IF NOT EXISTS activity (
    game_id          INTEGER NOT NULL REFERENCES game(id),
    start_time       TEXT NOT NULL,
    playtime         REAL NOT NULL,
    PRIMARY KEY (game_id, start_time)
);

CREATE INDEX IF NOT EXISTS idx_activity_start ON activity(start_time);
`
