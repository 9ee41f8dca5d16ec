package db

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    author TEXT,
    status TEXT,
    type TEXT,
    remark TEXT,
    pageviews INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS meetingrooms (
    meetingroom_id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    author TEXT,
    status TEXT,
    type TEXT,
    remark TEXT,
    pageviews INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS users (
    user_id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password TEXT NOT NULL,
    token TEXT UNIQUE NOT NULL,
    privilege INTEGER NOT NULL DEFAULT 0,
    roles TEXT NOT NULL DEFAULT '',
    introduction TEXT NOT NULL DEFAULT '',
    avatar TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT ''
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS articles (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    author TEXT,
    status TEXT,
    type TEXT,
    remark TEXT,
    pageviews BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS meetingrooms (
    meetingroom_id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    author TEXT,
    status TEXT,
    type TEXT,
    remark TEXT,
    pageviews BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS users (
    user_id BIGSERIAL PRIMARY KEY,
    username TEXT UNIQUE NOT NULL,
    password TEXT NOT NULL,
    token TEXT UNIQUE NOT NULL,
    privilege INTEGER NOT NULL DEFAULT 0,
    roles TEXT NOT NULL DEFAULT '',
    introduction TEXT NOT NULL DEFAULT '',
    avatar TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT ''
);
`
