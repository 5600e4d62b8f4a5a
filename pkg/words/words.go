package words

import (
	"bufio"
	"database/sql"
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed words.txt
var embeddedWords string

// Supply is a stateless provider of distinct board words. The corpus is
// loaded once at construction and never mutated.
type Supply struct {
	words []string
}

type NewSupplyOptions struct {
	// DBPath is an optional SQLite database with a words(word TEXT) table.
	DBPath string
	// FilePath is an optional newline-delimited word list file.
	FilePath string
}

// NewSupply loads the word corpus. A SQLite database takes precedence over
// a word list file; with neither configured the embedded default corpus is
// used so the server always has words to deal.
func NewSupply(opts NewSupplyOptions) (*Supply, error) {
	var list []string
	var err error

	switch {
	case opts.DBPath != "":
		list, err = loadFromDB(opts.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load words from database: %w", err)
		}
	case opts.FilePath != "":
		list, err = loadFromFile(opts.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load words from file: %w", err)
		}
	default:
		list = normalize(strings.Split(embeddedWords, "\n"))
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("word corpus is empty")
	}
	return &Supply{words: list}, nil
}

// NewSupplyFromWords builds a supply from an in-memory list.
func NewSupplyFromWords(list []string) *Supply {
	return &Supply{words: normalize(list)}
}

// Len returns the size of the corpus.
func (s *Supply) Len() int {
	return len(s.words)
}

// Pick returns n distinct words drawn uniformly at random from the corpus.
func (s *Supply) Pick(n int) ([]string, error) {
	if n > len(s.words) {
		return nil, fmt.Errorf("corpus has %d words, need %d", len(s.words), n)
	}

	picked := make([]string, len(s.words))
	copy(picked, s.words)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n], nil
}

func loadFromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var list []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		list = append(list, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return normalize(list), nil
}

func loadFromDB(path string) ([]string, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT word FROM words`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, err
		}
		list = append(list, word)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return normalize(list), nil
}

// normalize upper-cases, trims, and de-duplicates a raw word list.
func normalize(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	list := make([]string, 0, len(raw))
	for _, word := range raw {
		word = strings.ToUpper(strings.TrimSpace(word))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		list = append(list, word)
	}
	return list
}
