package tle

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Loader reads TLE sets from local files or http(s) URLs. A remote source may
// list several comma-separated URLs whose texts are concatenated, e.g. two
// catalog groups. Remote text is cached per source; when a fetch fails the
// newest cached copy is used instead.
type Loader struct {
	Cache        *Cache // nil disables caching
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// Load returns the entries of source.
func (l *Loader) Load(ctx context.Context, source string) ([]TLEEntry, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(source) {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("loading TLE source %s: %w", source, err)
	}

	entries, err := Parse(bytes.NewReader(data), l.Logger)
	if err != nil {
		return nil, fmt.Errorf("parsing TLE source %s: %w", source, err)
	}
	l.Logger.Info("TLE source loaded", "source", source, "count", len(entries))
	return entries, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	urls := strings.Split(source, ",")
	for i := range urls {
		urls[i] = strings.TrimSpace(urls[i])
	}
	f := NewFetcher(urls[0], l.Logger, urls[1:]...)
	if l.FetchTimeout > 0 {
		f.WithTimeout(l.FetchTimeout)
	}

	data, err := f.Fetch(ctx)
	key := CacheKey(source)
	if err == nil {
		if l.Cache != nil {
			if werr := l.Cache.Write(key, data, time.Now()); werr != nil {
				l.Logger.Warn("failed to cache TLE data", "source", source, "error", werr)
			}
		}
		return data, nil
	}

	if l.Cache == nil {
		return nil, err
	}
	cached, ts, cerr := l.Cache.LoadLatest(key)
	if cerr != nil {
		return nil, err
	}
	l.Logger.Warn("TLE fetch failed, using cached copy",
		"source", source,
		"cached_at", ts.UTC().Format(time.RFC3339),
		"error", err,
	)
	return cached, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
