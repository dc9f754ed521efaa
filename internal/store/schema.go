package store

const Schema = `
CREATE TABLE IF NOT EXISTS import_jobs (
	id TEXT PRIMARY KEY,
	source_url TEXT NOT NULL,
	status TEXT NOT NULL,
	progress REAL DEFAULT 0,
	track_id INTEGER,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	error TEXT
);

-- Prevent duplicate active imports of the same URL
CREATE UNIQUE INDEX IF NOT EXISTS idx_import_jobs_active_source ON import_jobs(source_url)
WHERE status IN ('queued', 'running');

CREATE TABLE IF NOT EXISTS tracks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_url TEXT NOT NULL,
	raw_label TEXT NOT NULL,

	-- Reconciled metadata
	title TEXT NOT NULL,
	artist TEXT NOT NULL,
	album TEXT NOT NULL,
	release_date TEXT,
	genres TEXT,        -- JSON array
	external_ids TEXT,  -- JSON array
	popularity INTEGER DEFAULT 0,
	duration_seconds INTEGER DEFAULT 0,
	provider TEXT,
	provider_id TEXT,
	match_score REAL DEFAULT 0,
	hybrid BOOLEAN DEFAULT 0,
	enriched BOOLEAN DEFAULT 0,

	-- Stored objects
	audio_path TEXT,
	cover_path TEXT,

	-- Processing
	status TEXT NOT NULL DEFAULT 'pending',
	error TEXT DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tracks_artist ON tracks(artist);
CREATE INDEX IF NOT EXISTS idx_tracks_status ON tracks(status);
`
