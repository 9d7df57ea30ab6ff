package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/passbi/transitcore/internal/catalogue"
)

const batchSize = 1000

// SaveCatalogue replaces the persisted catalogue with cat's contents.
// The whole write happens in one transaction so a reader never observes
// a half-written catalogue.
func SaveCatalogue(ctx context.Context, p *pgxpool.Pool, cat *catalogue.Catalogue) error {
	tx, err := p.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE stop_distance, bus_stop, bus, stop RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("storage: clearing catalogue tables: %w", err)
	}

	stops := cat.Stops()
	batch := &pgx.Batch{}
	for _, s := range stops {
		batch.Queue(`INSERT INTO stop (name, lat, lon) VALUES ($1, $2, $3)`, s.Name, s.Lat, s.Lon)
		if flushed, err := flushIfFull(ctx, tx, batch); err != nil {
			return err
		} else if flushed {
			batch = &pgx.Batch{}
		}
	}
	if err := flush(ctx, tx, batch); err != nil {
		return err
	}

	buses := cat.Buses()
	batch = &pgx.Batch{}
	for _, b := range buses {
		batch.Queue(`INSERT INTO bus (name, is_roundtrip) VALUES ($1, $2)`, b.Name, b.IsRoundtrip)
		for position, stopName := range b.Route {
			batch.Queue(`INSERT INTO bus_stop (bus_name, position, stop_name) VALUES ($1, $2, $3)`,
				b.Name, position, stopName)
		}
		if flushed, err := flushIfFull(ctx, tx, batch); err != nil {
			return err
		} else if flushed {
			batch = &pgx.Batch{}
		}
	}
	if err := flush(ctx, tx, batch); err != nil {
		return err
	}

	batch = &pgx.Batch{}
	for _, from := range stops {
		for _, to := range stops {
			if from.Name == to.Name {
				continue
			}
			meters := cat.Distance(from.Name, to.Name)
			if meters == 0 {
				continue
			}
			batch.Queue(`INSERT INTO stop_distance (from_stop, to_stop, meters) VALUES ($1, $2, $3)`,
				from.Name, to.Name, meters)
			if flushed, err := flushIfFull(ctx, tx, batch); err != nil {
				return err
			} else if flushed {
				batch = &pgx.Batch{}
			}
		}
	}
	if err := flush(ctx, tx, batch); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("storage: committing catalogue: %w", err)
	}
	return nil
}

// LoadCatalogue reconstructs a catalogue from its persisted form,
// preserving stop and bus insertion order.
func LoadCatalogue(ctx context.Context, p *pgxpool.Pool) (*catalogue.Catalogue, error) {
	cat := catalogue.New()

	stopRows, err := p.Query(ctx, `SELECT name, lat, lon FROM stop ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("storage: querying stops: %w", err)
	}
	for stopRows.Next() {
		var name string
		var lat, lon float64
		if err := stopRows.Scan(&name, &lat, &lon); err != nil {
			stopRows.Close()
			return nil, fmt.Errorf("storage: scanning stop: %w", err)
		}
		if err := cat.AddStop(name, lat, lon); err != nil {
			stopRows.Close()
			return nil, fmt.Errorf("storage: loading stop %q: %w", name, err)
		}
	}
	stopRows.Close()
	if err := stopRows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterating stops: %w", err)
	}

	busRows, err := p.Query(ctx, `SELECT name, is_roundtrip FROM bus ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("storage: querying buses: %w", err)
	}
	type busHeader struct {
		name        string
		isRoundtrip bool
	}
	var busHeaders []busHeader
	for busRows.Next() {
		var h busHeader
		if err := busRows.Scan(&h.name, &h.isRoundtrip); err != nil {
			busRows.Close()
			return nil, fmt.Errorf("storage: scanning bus: %w", err)
		}
		busHeaders = append(busHeaders, h)
	}
	busRows.Close()
	if err := busRows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterating buses: %w", err)
	}

	for _, h := range busHeaders {
		stopRows, err := p.Query(ctx,
			`SELECT stop_name FROM bus_stop WHERE bus_name = $1 ORDER BY position`, h.name)
		if err != nil {
			return nil, fmt.Errorf("storage: querying route for bus %q: %w", h.name, err)
		}
		var route []string
		for stopRows.Next() {
			var stopName string
			if err := stopRows.Scan(&stopName); err != nil {
				stopRows.Close()
				return nil, fmt.Errorf("storage: scanning bus stop: %w", err)
			}
			route = append(route, stopName)
		}
		stopRows.Close()
		if err := stopRows.Err(); err != nil {
			return nil, fmt.Errorf("storage: iterating bus stops: %w", err)
		}

		// route is the already-expanded form written by SaveCatalogue,
		// not the original raw stop list, so it is restored verbatim.
		if err := cat.AddExpandedBus(h.name, route, h.isRoundtrip); err != nil {
			return nil, fmt.Errorf("storage: loading bus %q: %w", h.name, err)
		}
	}

	distRows, err := p.Query(ctx, `SELECT from_stop, to_stop, meters FROM stop_distance`)
	if err != nil {
		return nil, fmt.Errorf("storage: querying distances: %w", err)
	}
	for distRows.Next() {
		var from, to string
		var meters int
		if err := distRows.Scan(&from, &to, &meters); err != nil {
			distRows.Close()
			return nil, fmt.Errorf("storage: scanning distance: %w", err)
		}
		if err := cat.SetDistance(from, to, meters); err != nil {
			distRows.Close()
			return nil, fmt.Errorf("storage: loading distance %s->%s: %w", from, to, err)
		}
	}
	distRows.Close()
	if err := distRows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterating distances: %w", err)
	}

	return cat, nil
}

func flushIfFull(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) (bool, error) {
	if batch.Len() < batchSize {
		return false, nil
	}
	return true, flush(ctx, tx, batch)
}

func flush(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("storage: batch insert failed at statement %d: %w", i, err)
		}
	}
	return nil
}
