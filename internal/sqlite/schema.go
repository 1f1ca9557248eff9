package sqlite

// Schema DDL. Statements are idempotent so an existing catalog survives
// restarts; the seeding guard depends on that.
const (
	createCreatures = `CREATE TABLE IF NOT EXISTS creatures (
    creature_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    version INTEGER NOT NULL DEFAULT 0
);`

	createCreatureTypes = `CREATE TABLE IF NOT EXISTS creature_types (
    creature_id INTEGER NOT NULL,
    type_tag TEXT NOT NULL,
    PRIMARY KEY (creature_id, type_tag),
    FOREIGN KEY (creature_id) REFERENCES creatures(creature_id) ON DELETE CASCADE
);`

	createCreatureImages = `CREATE TABLE IF NOT EXISTS creature_images (
    creature_id INTEGER PRIMARY KEY,
    image_url TEXT NOT NULL,
    FOREIGN KEY (creature_id) REFERENCES creatures(creature_id) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxCreatureTypesTag = `CREATE INDEX IF NOT EXISTS idx_creature_types_tag ON creature_types(type_tag);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createCreatures,
	createCreatureTypes,
	createCreatureImages,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxCreatureTypesTag,
}
