package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/hovertype/internal/zone"
)

// Layout is a named, ordered set of hover zones stored in the database.
type Layout struct {
	ID        string
	Name      string
	Zones     []Zone
	CreatedAt time.Time
}

// Zone is one hover zone of a layout. Position is its registration order.
type Zone struct {
	ID          string
	Position    int
	Chars       string
	CenterX     float64
	CenterY     float64
	OuterRadius float64
	InnerRadius float64
}

// Configs returns the layout's zones as zone configurations in position order.
func (l *Layout) Configs() []zone.Config {
	cfgs := make([]zone.Config, len(l.Zones))
	for i, z := range l.Zones {
		cfgs[i] = zone.Config{
			Chars:       z.Chars,
			Center:      zone.Point{X: z.CenterX, Y: z.CenterY},
			OuterRadius: z.OuterRadius,
			InnerRadius: z.InnerRadius,
		}
	}
	return cfgs
}

// ZonesFromConfigs converts zone configurations to stored zones.
func ZonesFromConfigs(cfgs []zone.Config) []Zone {
	zones := make([]Zone, len(cfgs))
	for i, c := range cfgs {
		zones[i] = Zone{
			Position:    i,
			Chars:       c.Chars,
			CenterX:     c.Center.X,
			CenterY:     c.Center.Y,
			OuterRadius: c.OuterRadius,
			InnerRadius: c.InnerRadius,
		}
	}
	return zones
}

// LayoutRepository provides CRUD operations for layouts and their zones.
type LayoutRepository struct {
	db *sql.DB
}

// Layouts returns the layout repository for this store.
func (s *Store) Layouts() *LayoutRepository {
	return &LayoutRepository{db: s.db}
}

// Save creates the layout or, if a layout with the same name exists,
// replaces its zones. Zone positions are taken from slice order.
func (r *LayoutRepository) Save(l *Layout) (err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var existingID string
	var createdAt time.Time
	err = tx.QueryRow(`SELECT id, created_at FROM layouts WHERE name = ?`, l.Name).Scan(&existingID, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.CreatedAt = time.Now()
		if _, err = tx.Exec(
			`INSERT INTO layouts (id, name, created_at) VALUES (?, ?, ?)`,
			l.ID, l.Name, l.CreatedAt,
		); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		l.ID = existingID
		l.CreatedAt = createdAt
		if _, err = tx.Exec(`DELETE FROM zones WHERE layout_id = ?`, l.ID); err != nil {
			return err
		}
	}

	for i := range l.Zones {
		z := &l.Zones[i]
		z.ID = uuid.New().String()
		z.Position = i
		if _, err = tx.Exec(
			`INSERT INTO zones (id, layout_id, position, chars, center_x, center_y, outer_radius, inner_radius)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			z.ID, l.ID, z.Position, z.Chars, z.CenterX, z.CenterY, z.OuterRadius, z.InnerRadius,
		); err != nil {
			return fmt.Errorf("insert zone %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetByName retrieves a layout and its zones by name.
func (r *LayoutRepository) GetByName(name string) (*Layout, error) {
	l := &Layout{}

	err := r.db.QueryRow(
		`SELECT id, name, created_at FROM layouts WHERE name = ?`,
		name,
	).Scan(&l.ID, &l.Name, &l.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	zones, err := r.zones(l.ID)
	if err != nil {
		return nil, err
	}
	l.Zones = zones

	return l, nil
}

func (r *LayoutRepository) zones(layoutID string) ([]Zone, error) {
	rows, err := r.db.Query(
		`SELECT id, position, chars, center_x, center_y, outer_radius, inner_radius
		 FROM zones WHERE layout_id = ? ORDER BY position`,
		layoutID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []Zone
	for rows.Next() {
		var z Zone
		if err := rows.Scan(&z.ID, &z.Position, &z.Chars, &z.CenterX, &z.CenterY, &z.OuterRadius, &z.InnerRadius); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return zones, nil
}

// List retrieves all layouts without their zones, ordered by name.
func (r *LayoutRepository) List() ([]*Layout, error) {
	rows, err := r.db.Query(`SELECT id, name, created_at FROM layouts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var layouts []*Layout
	for rows.Next() {
		l := &Layout{}
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, err
		}
		layouts = append(layouts, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return layouts, nil
}

// Delete removes a layout and its zones by name.
func (r *LayoutRepository) Delete(name string) error {
	result, err := r.db.Exec(`DELETE FROM layouts WHERE name = ?`, name)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
