package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Memories table - one row per saved scene snapshot
		`CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			transcript TEXT NOT NULL DEFAULT '',
			sentiment TEXT NOT NULL CHECK(sentiment IN ('POSITIVE', 'NEGATIVE', 'NEUTRAL')),
			image_ref TEXT NOT NULL DEFAULT '',
			density INTEGER NOT NULL DEFAULT 0
		)`,

		// Memory palette table - exactly 3 colors per memory
		`CREATE TABLE IF NOT EXISTS memory_palette (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			memory_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
			slot INTEGER NOT NULL CHECK(slot BETWEEN 0 AND 2),
			r REAL NOT NULL,
			g REAL NOT NULL,
			b REAL NOT NULL
		)`,

		// Voice segments table - finalized transcript events captured while
		// the memory was recorded
		`CREATE TABLE IF NOT EXISTS voice_segments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			memory_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			text TEXT NOT NULL,
			sentiment TEXT NOT NULL CHECK(sentiment IN ('POSITIVE', 'NEGATIVE', 'NEUTRAL')),
			spoken_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_memory_palette_memory_id ON memory_palette(memory_id)`,
		`CREATE INDEX IF NOT EXISTS idx_voice_segments_memory_id ON voice_segments(memory_id)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_created_at ON memories(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
