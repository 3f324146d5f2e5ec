package store

import (
	"database/sql"
	"errors"

	"github.com/renderix/reverie/internal/memory"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// MemoryRepository provides CRUD operations for saved memories.
type MemoryRepository struct {
	db *sql.DB
}

// Memories returns the memory repository for this store.
func (s *Store) Memories() *MemoryRepository {
	return &MemoryRepository{db: s.db}
}

// Create inserts a memory with its palette and voice segments in a single
// transaction.
func (r *MemoryRepository) Create(e *memory.Entry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO memories (id, created_at, transcript, sentiment, image_ref, density)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp, e.Transcript, string(e.Sentiment), e.ImageRef, e.Density,
	)
	if err != nil {
		return err
	}

	for slot, c := range e.Palette {
		_, err = tx.Exec(
			`INSERT INTO memory_palette (memory_id, slot, r, g, b) VALUES (?, ?, ?, ?, ?)`,
			e.ID, slot, c.R, c.G, c.B,
		)
		if err != nil {
			return err
		}
	}

	for seq, seg := range e.Segments {
		_, err = tx.Exec(
			`INSERT INTO voice_segments (memory_id, sequence, text, sentiment, spoken_at)
			 VALUES (?, ?, ?, ?, ?)`,
			e.ID, seq, seg.Text, string(seg.Sentiment), seg.Timestamp,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a memory by its ID, including palette and segments.
func (r *MemoryRepository) GetByID(id string) (*memory.Entry, error) {
	e := &memory.Entry{}
	var sentiment string

	err := r.db.QueryRow(
		`SELECT id, created_at, transcript, sentiment, image_ref, density
		 FROM memories WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Timestamp, &e.Transcript, &sentiment, &e.ImageRef, &e.Density)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	e.Sentiment = memory.Sentiment(sentiment)

	if err := r.loadPalette(e); err != nil {
		return nil, err
	}
	if err := r.loadSegments(e); err != nil {
		return nil, err
	}

	return e, nil
}

// List retrieves all memories ordered by most recent first.
func (r *MemoryRepository) List() ([]*memory.Entry, error) {
	rows, err := r.db.Query(
		`SELECT id, created_at, transcript, sentiment, image_ref, density
		 FROM memories ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*memory.Entry
	for rows.Next() {
		e := &memory.Entry{}
		var sentiment string

		err := rows.Scan(&e.ID, &e.Timestamp, &e.Transcript, &sentiment, &e.ImageRef, &e.Density)
		if err != nil {
			return nil, err
		}

		e.Sentiment = memory.Sentiment(sentiment)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range entries {
		if err := r.loadPalette(e); err != nil {
			return nil, err
		}
		if err := r.loadSegments(e); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// Delete removes a memory by its ID. Palette and segments cascade.
func (r *MemoryRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM memories WHERE id = ?`, id)
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

func (r *MemoryRepository) loadPalette(e *memory.Entry) error {
	rows, err := r.db.Query(
		`SELECT slot, r, g, b FROM memory_palette WHERE memory_id = ? ORDER BY slot`,
		e.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var slot int
		var cr, cg, cb float64
		if err := rows.Scan(&slot, &cr, &cg, &cb); err != nil {
			return err
		}
		if slot >= 0 && slot < len(e.Palette) {
			e.Palette[slot].R = cr
			e.Palette[slot].G = cg
			e.Palette[slot].B = cb
		}
	}

	return rows.Err()
}

func (r *MemoryRepository) loadSegments(e *memory.Entry) error {
	rows, err := r.db.Query(
		`SELECT text, sentiment, spoken_at FROM voice_segments
		 WHERE memory_id = ? ORDER BY sequence`,
		e.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	e.Segments = nil
	for rows.Next() {
		var seg memory.VoiceSegment
		var sentiment string
		if err := rows.Scan(&seg.Text, &sentiment, &seg.Timestamp); err != nil {
			return err
		}
		seg.Sentiment = memory.Sentiment(sentiment)
		e.Segments = append(e.Segments, seg)
	}

	return rows.Err()
}
