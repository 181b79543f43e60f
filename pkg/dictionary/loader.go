/*
Package dictionary reads and writes candidate files.

A data directory holds one file per candidate type, named after the type:
mention.txt, hashtag.bin and so on. Text files carry one "word score" pair per
line, with '#' starting a comment line. Binary files are a MessagePack array of
Entry values and load without any parsing of their own.
*/
package dictionary

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bastiangx/mentionserve/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
)

// DefaultScore is given to text lines that carry only a word.
const DefaultScore = 1

// ErrNoDictionaries is returned by LoadDir when a directory holds no candidate files.
var ErrNoDictionaries = errors.New("no dictionary files found")

// Entry is a candidate word with its ranking score.
type Entry struct {
	Word  string `msgpack:"w"`
	Score int    `msgpack:"s"`
}

// Set is the content of one dictionary file.
type Set struct {
	Type    string
	Path    string
	Format  FileFormat
	Entries []Entry
}

// LoaderStats provides statistics about a directory load
type LoaderStats struct {
	Files    int
	Entries  int
	Skipped  int
	Duration time.Duration
}

// ReadText parses "word score" lines. Malformed lines are skipped and counted.
func ReadText(r io.Reader) ([]Entry, int, error) {
	var entries []Entry
	skipped := 0

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) > 2 || !utils.IsValidCandidate(fields[0]) {
			log.Debugf("Skipping malformed dictionary line %d: %q", lineNo, line)
			skipped++
			continue
		}

		score := DefaultScore
		if len(fields) == 2 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				log.Debugf("Skipping line %d with bad score %q", lineNo, fields[1])
				skipped++
				continue
			}
			score = n
		}
		entries = append(entries, Entry{Word: fields[0], Score: score})
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("failed to read dictionary text: %w", err)
	}
	return entries, skipped, nil
}

// WriteText writes entries as "word score" lines.
func WriteText(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%s %d\n", e.Word, e.Score); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadBinary decodes a MessagePack array of entries.
func ReadBinary(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := msgpack.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode binary dictionary: %w", err)
	}
	return entries, nil
}

// WriteBinary encodes entries as a MessagePack array.
func WriteBinary(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	return msgpack.NewEncoder(w).Encode(entries)
}

// SaveBinary exports entries to a .bin file, creating parent directories.
func SaveBinary(path string, entries []Entry) error {
	if DetectFormat(path) != FormatBinary {
		return fmt.Errorf("binary dictionary %s must use the .bin extension", path)
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteBinary(file, entries); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// Load reads one dictionary file, choosing the decoder from its extension.
func Load(path string) (Set, int, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return Set{}, 0, fmt.Errorf("unsupported dictionary file %s", path)
	}
	if err := ValidateFileFormat(path, format); err != nil {
		return Set{}, 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		return Set{}, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	set := Set{Type: TypeName(path), Path: path, Format: format}
	skipped := 0
	switch format {
	case FormatText:
		set.Entries, skipped, err = ReadText(file)
	case FormatBinary:
		set.Entries, err = ReadBinary(bufio.NewReader(file))
	}
	if err != nil {
		return Set{}, skipped, fmt.Errorf("%s: %w", path, err)
	}
	return set, skipped, nil
}

// LoadDir loads every dictionary file in dir concurrently.
// The first failure cancels the remaining loads. When a type has both a text
// and a binary file, their entries are concatenated.
func LoadDir(ctx context.Context, dir string) ([]Set, LoaderStats, error) {
	start := time.Now()
	files := utils.ListDictionaryFiles(dir)
	if len(files) == 0 {
		return nil, LoaderStats{}, fmt.Errorf("%s: %w", dir, ErrNoDictionaries)
	}
	sort.Strings(files)

	var (
		mu      sync.Mutex
		byType  = make(map[string]*Set)
		skipped int
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			set, n, err := Load(path)
			if err != nil {
				return err
			}
			log.Debugf("Loaded %d %s candidates from %s", len(set.Entries), set.Type, filepath.Base(path))

			mu.Lock()
			defer mu.Unlock()
			skipped += n
			if existing, ok := byType[set.Type]; ok {
				existing.Entries = append(existing.Entries, set.Entries...)
				return nil
			}
			byType[set.Type] = &set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, LoaderStats{}, err
	}

	sets := make([]Set, 0, len(byType))
	stats := LoaderStats{Files: len(files), Skipped: skipped}
	for _, set := range byType {
		sets = append(sets, *set)
		stats.Entries += len(set.Entries)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Type < sets[j].Type })
	stats.Duration = time.Since(start)

	log.Debugf("Loaded %s candidates of %d types in %v",
		utils.FormatWithCommas(stats.Entries), len(sets), stats.Duration)
	return sets, stats, nil
}
