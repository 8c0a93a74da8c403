// Package services loads the site's resources (maps.json, updates.json and
// map images) from a directory, an HTTP origin or a Cloud Storage bucket,
// and generates map thumbnails.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"
	"unicode"

	"github.com/patrickmn/go-cache"

	"map-gallery/pkg/config"
	"map-gallery/pkg/logging"
	"map-gallery/pkg/models"
)

const (
	mapsKey    = "maps"
	updatesKey = "updates"
)

// Service loads and caches the maps and updates collections
type Service struct {
	config *config.Config
	source Source
	cache  *cache.Cache
	mu     sync.RWMutex
	log    *slog.Logger
}

// NewService returns a service reading from src
func NewService(cfg *config.Config, src Source) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		config: cfg,
		source: src,
		cache:  cache.New(ttl, 2*ttl),
		log:    logging.WithComponent("resources"),
	}
}

// Source returns the underlying resource source
func (s *Service) Source() Source {
	return s.source
}

// Maps returns the maps collection, with thumbnail URLs attached where a
// generated thumbnail exists
func (s *Service) Maps(ctx context.Context) ([]models.MapEntry, error) {
	if cached, ok := s.cached(mapsKey); ok {
		return cached.([]models.MapEntry), nil
	}

	data, err := s.load(ctx, s.config.MapsFile, mapsKey)
	if err != nil {
		return nil, err
	}
	var doc models.MapsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, s.config.MapsFile, err)
	}
	maps := s.attachThumbnails(doc.Maps)

	s.store(mapsKey, maps)
	s.log.Debug("maps loaded", slog.Int("total", len(maps)), slog.String("source", s.source.String()))
	return maps, nil
}

// Updates returns the changelog entries in file order
func (s *Service) Updates(ctx context.Context) ([]models.UpdateEntry, error) {
	if cached, ok := s.cached(updatesKey); ok {
		return cached.([]models.UpdateEntry), nil
	}

	data, err := s.load(ctx, s.config.UpdatesFile, updatesKey)
	if err != nil {
		return nil, err
	}
	var doc models.UpdatesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, s.config.UpdatesFile, err)
	}

	s.store(updatesKey, doc.Updates)
	s.log.Debug("updates loaded", slog.Int("total", len(doc.Updates)), slog.String("source", s.source.String()))
	return doc.Updates, nil
}

// Raw reads a resource without validation or caching
func (s *Service) Raw(ctx context.Context, name string) ([]byte, error) {
	r, err := s.source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Resources lists the source's files in natural order
func (s *Service) Resources(ctx context.Context) ([]string, error) {
	names, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(names, func(i, j int) bool {
		return naturalLess(names[i], names[j])
	})
	return names, nil
}

// Flush drops the cached collections
func (s *Service) Flush() {
	s.mu.Lock()
	s.cache.Flush()
	s.mu.Unlock()
	s.log.Debug("resource cache flushed")
}

func (s *Service) load(ctx context.Context, name, kind string) ([]byte, error) {
	data, err := s.Raw(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := Validate(kind, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) cached(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Get(key)
}

func (s *Service) store(key string, v interface{}) {
	s.mu.Lock()
	s.cache.Set(key, v, cache.DefaultExpiration)
	s.mu.Unlock()
}

func (s *Service) attachThumbnails(entries []models.MapEntry) []models.MapEntry {
	if s.config.ThumbnailDir == "" {
		return entries
	}
	out := make([]models.MapEntry, len(entries))
	for i, e := range entries {
		out[i] = e
		if e.Thumbnail != "" {
			continue
		}
		name := ThumbnailName(e.Image)
		if _, err := os.Stat(filepath.Join(s.config.ThumbnailDir, name)); err != nil {
			continue
		}
		out[i].Thumbnail = ThumbnailURL(s.config, name)
	}
	return out
}

// naturalLess compares strings treating digit runs as numbers,
// so "map2.png" sorts before "map10.png"
func naturalLess(s1, s2 string) bool {
	i, j := 0, 0
	for i < len(s1) && j < len(s2) {
		if unicode.IsDigit(rune(s1[i])) && unicode.IsDigit(rune(s2[j])) {
			si := i
			for i < len(s1) && unicode.IsDigit(rune(s1[i])) {
				i++
			}
			sj := j
			for j < len(s2) && unicode.IsDigit(rune(s2[j])) {
				j++
			}
			n1, _ := strconv.Atoi(s1[si:i])
			n2, _ := strconv.Atoi(s2[sj:j])
			if n1 != n2 {
				return n1 < n2
			}
			continue
		}
		if s1[i] != s2[j] {
			return s1[i] < s2[j]
		}
		i++
		j++
	}
	return len(s1)-i < len(s2)-j
}
