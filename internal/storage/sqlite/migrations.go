package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Participant references inside procurements are not foreign keys: the
// settlement calculator reports dangling references instead.
const schema = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    organizer_tg_user_id INTEGER NOT NULL,
    payment_details TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    name TEXT NOT NULL,
    tg_user_id INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS procurements (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    name TEXT NOT NULL,
    comment TEXT NOT NULL DEFAULT '',
    price_minor INTEGER,
    responsible_id TEXT NOT NULL DEFAULT '',
    completion_status TEXT NOT NULL,
    fundraising_status TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS procurement_contributors (
    procurement_id TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    PRIMARY KEY (procurement_id, participant_id),
    FOREIGN KEY (procurement_id) REFERENCES procurements(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payment_states (
    event_id TEXT NOT NULL,
    debtor_id TEXT NOT NULL,
    creditor_id TEXT NOT NULL,
    amount_minor INTEGER NOT NULL,
    paid INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (event_id, debtor_id, creditor_id),
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_participants_event_id ON participants(event_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_event_tg_user
    ON participants(event_id, tg_user_id) WHERE tg_user_id != 0;
CREATE INDEX IF NOT EXISTS idx_procurements_event_id ON procurements(event_id);
CREATE INDEX IF NOT EXISTS idx_procurements_responsible_id ON procurements(responsible_id);
CREATE INDEX IF NOT EXISTS idx_procurement_contributors_participant_id ON procurement_contributors(participant_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
