package sqlite

// Instants are stored as UTC unix nanoseconds and calendar days as YYYY-MM-DD
// text so both compare correctly in range predicates.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		rule_id TEXT,
		dedup_day TEXT,
		type TEXT NOT NULL,
		priority TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		read_status TEXT NOT NULL DEFAULT 'unread',
		created_at INTEGER NOT NULL,
		UNIQUE (client_id, rule_id, dedup_day)
	);`,
	`CREATE INDEX IF NOT EXISTS notifications_client_created ON notifications (client_id, created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS workout_logs (
		client_id TEXT NOT NULL,
		logged_at INTEGER NOT NULL,
		is_pr INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS workout_logs_client_time ON workout_logs (client_id, logged_at);`,
	`CREATE TABLE IF NOT EXISTS meal_tracking (
		client_id TEXT NOT NULL,
		day TEXT NOT NULL,
		calories REAL NOT NULL DEFAULT 0,
		calorie_goal REAL NOT NULL DEFAULT 0,
		protein REAL NOT NULL DEFAULT 0,
		protein_goal REAL NOT NULL DEFAULT 0,
		carbs REAL NOT NULL DEFAULT 0,
		carbs_goal REAL NOT NULL DEFAULT 0,
		fat REAL NOT NULL DEFAULT 0,
		fat_goal REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (client_id, day)
	);`,
	`CREATE TABLE IF NOT EXISTS meal_logs (
		client_id TEXT NOT NULL,
		logged_at INTEGER NOT NULL,
		meal_type TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS meal_logs_client_time ON meal_logs (client_id, logged_at);`,
	`CREATE TABLE IF NOT EXISTS hydration_logs (
		client_id TEXT NOT NULL,
		day TEXT NOT NULL,
		amount_ml REAL NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS hydration_logs_client_day ON hydration_logs (client_id, day);`,
	`CREATE TABLE IF NOT EXISTS weight_logs (
		client_id TEXT NOT NULL,
		day TEXT NOT NULL,
		value REAL NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS weight_logs_client_day ON weight_logs (client_id, day);`,
	`CREATE TABLE IF NOT EXISTS check_ins (
		client_id TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS check_ins_client_created ON check_ins (client_id, created_at DESC);`,
}
