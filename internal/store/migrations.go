package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Layouts table - one row per saved zone layout
		`CREATE TABLE IF NOT EXISTS layouts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Zones table - hover zones of a layout in registration order
		`CREATE TABLE IF NOT EXISTS zones (
			id TEXT PRIMARY KEY,
			layout_id TEXT NOT NULL REFERENCES layouts(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			chars TEXT NOT NULL,
			center_x REAL NOT NULL,
			center_y REAL NOT NULL,
			outer_radius REAL NOT NULL CHECK(outer_radius > 0),
			inner_radius REAL NOT NULL CHECK(inner_radius >= outer_radius),
			UNIQUE(layout_id, chars),
			UNIQUE(layout_id, position)
		)`,

		// Entries table - typed history, one row per commit or delete
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL CHECK(kind IN ('commit', 'delete')),
			char TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_zones_layout_id ON zones(layout_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
