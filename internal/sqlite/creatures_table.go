package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/dexhub/pkg/types"
)

const selectCreature = `SELECT c.creature_id, c.name, c.version, COALESCE(i.image_url, '')
FROM creatures c LEFT JOIN creature_images i ON i.creature_id = c.creature_id`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Count returns the number of stored creatures.
func (b *Backend) Count(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrDetached
	}

	var n int
	if err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM creatures").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting creatures: %w", err)
	}
	return n, nil
}

// Get retrieves a creature with its types and image.
func (b *Backend) Get(ctx context.Context, id int64) (*types.Creature, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	row := b.db.QueryRowContext(ctx, selectCreature+" WHERE c.creature_id = ?", id)
	c, err := scanCreature(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting creature %d: %w", id, err)
	}

	tags, err := b.loadTypes(ctx, "WHERE creature_id = ?", id)
	if err != nil {
		return nil, err
	}
	c.Types = types.NewTypeSet(tags[id]...)
	return c, nil
}

// GetImage retrieves the image row owned by a creature.
func (b *Backend) GetImage(ctx context.Context, id int64) (*types.Image, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	img := types.Image{ID: id}
	err := b.db.QueryRowContext(ctx,
		"SELECT image_url FROM creature_images WHERE creature_id = ?", id,
	).Scan(&img.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting image %d: %w", id, err)
	}
	return &img, nil
}

// Fetch returns every creature ordered by pokedex number. The result is
// empty, not nil, when the catalog is empty.
func (b *Backend) Fetch(ctx context.Context) ([]types.Creature, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.QueryContext(ctx, selectCreature+" ORDER BY c.creature_id ASC")
	if err != nil {
		return nil, fmt.Errorf("fetching creatures: %w", err)
	}
	defer rows.Close()

	results := []types.Creature{}
	for rows.Next() {
		c, err := scanCreature(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating creature: %w", err)
		}
		results = append(results, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating creatures: %w", err)
	}
	rows.Close()

	tags, err := b.loadTypes(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Types = types.NewTypeSet(tags[results[i].ID]...)
	}
	return results, nil
}

// InsertAll writes all creatures in one transaction. New creatures start at
// version 0 regardless of c.Version.
func (b *Backend) InsertAll(ctx context.Context, creatures []types.Creature) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}
	defer tx.Rollback()

	insCreature, err := tx.PrepareContext(ctx, "INSERT INTO creatures (creature_id, name, version) VALUES (?, ?, 0)")
	if err != nil {
		return fmt.Errorf("preparing creature insert: %w", err)
	}
	defer insCreature.Close()

	insType, err := tx.PrepareContext(ctx, "INSERT INTO creature_types (creature_id, type_tag) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing type insert: %w", err)
	}
	defer insType.Close()

	insImage, err := tx.PrepareContext(ctx, "INSERT INTO creature_images (creature_id, image_url) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing image insert: %w", err)
	}
	defer insImage.Close()

	for _, c := range creatures {
		if _, err := insCreature.ExecContext(ctx, c.ID, c.Name); err != nil {
			return fmt.Errorf("inserting creature %d: %w", c.ID, err)
		}
		for _, tag := range types.NewTypeSet(c.Types...) {
			if _, err := insType.ExecContext(ctx, c.ID, string(tag)); err != nil {
				return fmt.Errorf("inserting type %s for creature %d: %w", tag, c.ID, err)
			}
		}
		if _, err := insImage.ExecContext(ctx, c.ID, c.Image.URL); err != nil {
			return fmt.Errorf("inserting image for creature %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert transaction: %w", err)
	}
	return nil
}

// Save is a compare-and-swap on the version column. The version check, the
// increment, and the replacement of types and image all commit together.
func (b *Backend) Save(ctx context.Context, c *types.Creature) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE creatures SET name = ?, version = version + 1 WHERE creature_id = ? AND version = ?",
		c.Name, c.ID, c.Version,
	)
	if err != nil {
		return fmt.Errorf("updating creature %d: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update of creature %d: %w", c.ID, err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM creatures WHERE creature_id = ?", c.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("checking creature %d: %w", c.ID, err)
		}
		return types.ErrStaleVersion
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM creature_types WHERE creature_id = ?", c.ID); err != nil {
		return fmt.Errorf("clearing types of creature %d: %w", c.ID, err)
	}
	tags := types.NewTypeSet(c.Types...)
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO creature_types (creature_id, type_tag) VALUES (?, ?)", c.ID, string(tag),
		); err != nil {
			return fmt.Errorf("inserting type %s for creature %d: %w", tag, c.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO creature_images (creature_id, image_url) VALUES (?, ?)
ON CONFLICT(creature_id) DO UPDATE SET image_url = excluded.image_url`,
		c.ID, c.Image.URL,
	); err != nil {
		return fmt.Errorf("saving image of creature %d: %w", c.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save of creature %d: %w", c.ID, err)
	}

	c.Version++
	c.Types = tags
	c.Image.ID = c.ID
	return nil
}

// Delete removes a creature together with its types and image.
func (b *Backend) Delete(ctx context.Context, id int64) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	// Children first; the FK cascade covers databases opened without
	// foreign_keys enabled.
	if _, err := tx.ExecContext(ctx, "DELETE FROM creature_types WHERE creature_id = ?", id); err != nil {
		return fmt.Errorf("deleting types of creature %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM creature_images WHERE creature_id = ?", id); err != nil {
		return fmt.Errorf("deleting image of creature %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM creatures WHERE creature_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting creature %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete of creature %d: %w", id, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of creature %d: %w", id, err)
	}
	return nil
}

// loadTypes returns type tags grouped by creature ID. where is an optional
// WHERE clause applied to creature_types.
func (b *Backend) loadTypes(ctx context.Context, where string, args ...any) (map[int64][]types.TypeTag, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT creature_id, type_tag FROM creature_types "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("loading creature types: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]types.TypeTag)
	for rows.Next() {
		var id int64
		var tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("scanning creature type: %w", err)
		}
		out[id] = append(out[id], types.TypeTag(tag))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating creature types: %w", err)
	}
	return out, nil
}

func scanCreature(row rowScanner) (*types.Creature, error) {
	var c types.Creature
	if err := row.Scan(&c.ID, &c.Name, &c.Version, &c.Image.URL); err != nil {
		return nil, err
	}
	c.Image.ID = c.ID
	c.Types = []types.TypeTag{}
	return &c, nil
}
