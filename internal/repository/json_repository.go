package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	models "github.com/pedalhub/pedalhub/internal"
)

const (
	DefaultBikesFile    = "bike_inventory.json"
	DefaultBookingsFile = "bookings.json"
	DefaultHistoryFile  = "rental_history.json"
)

// LoadList reads a JSON array of objects from path. A missing file or
// malformed content yields an empty list.
func LoadList(logger *slog.Logger, path string) []map[string]any {
	body, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("reading data file, starting empty", "path", path, "err", err)
		}
		return []map[string]any{}
	}

	var items []map[string]any
	if err := json.Unmarshal(body, &items); err != nil {
		logger.Warn("malformed data file, starting empty", "path", path, "err", err)
		return []map[string]any{}
	}
	if items == nil {
		return []map[string]any{}
	}
	return items
}

// LoadListFunc is LoadList with each element decoded. One element that fails to
// decode marks the whole file as malformed.
func LoadListFunc[T any](logger *slog.Logger, path string, decode func(map[string]any) (T, error)) []T {
	items := LoadList(logger, path)
	out := make([]T, 0, len(items))
	for i, item := range items {
		v, err := decode(item)
		if err != nil {
			logger.Warn("undecodable record, starting empty", "path", path, "index", i, "err", err)
			return []T{}
		}
		out = append(out, v)
	}
	return out
}

// SaveList overwrites path with data as indented JSON.
func SaveList(path string, data []map[string]any) error {
	if data == nil {
		data = []map[string]any{}
	}
	body, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

type Files struct {
	Bikes    string
	Bookings string
	History  string
}

type JSONRepository struct {
	dir    string
	files  Files
	logger *slog.Logger
}

func NewJSONRepository(dir string, files Files, logger *slog.Logger) *JSONRepository {
	if files.Bikes == "" {
		files.Bikes = DefaultBikesFile
	}
	if files.Bookings == "" {
		files.Bookings = DefaultBookingsFile
	}
	if files.History == "" {
		files.History = DefaultHistoryFile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONRepository{dir: dir, files: files, logger: logger}
}

func (r *JSONRepository) LoadBikes(ctx context.Context) []models.BikeDetails {
	return LoadListFunc(r.logger, r.path(r.files.Bikes), models.DecodeBikeDetails)
}

func (r *JSONRepository) LoadBookings(ctx context.Context) []models.Booking {
	return LoadListFunc(r.logger, r.path(r.files.Bookings), models.DecodeBooking)
}

func (r *JSONRepository) LoadHistory(ctx context.Context) []models.Booking {
	return LoadListFunc(r.logger, r.path(r.files.History), models.DecodeBooking)
}

func (r *JSONRepository) SaveBikes(ctx context.Context, bikes []models.BikeDetails) error {
	data := make([]map[string]any, len(bikes))
	for i, bike := range bikes {
		data[i] = bike.Encode()
	}
	return r.save(ctx, r.files.Bikes, data)
}

func (r *JSONRepository) SaveBookings(ctx context.Context, bookings []models.Booking) error {
	return r.save(ctx, r.files.Bookings, encodeBookings(bookings))
}

func (r *JSONRepository) SaveHistory(ctx context.Context, history []models.Booking) error {
	return r.save(ctx, r.files.History, encodeBookings(history))
}

func (r *JSONRepository) save(ctx context.Context, name string, data []map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.dir != "" {
		if err := os.MkdirAll(r.dir, 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
	}
	return SaveList(r.path(name), data)
}

func (r *JSONRepository) path(name string) string {
	return filepath.Join(r.dir, name)
}

func encodeBookings(bookings []models.Booking) []map[string]any {
	data := make([]map[string]any, len(bookings))
	for i, booking := range bookings {
		data[i] = booking.Encode()
	}
	return data
}
