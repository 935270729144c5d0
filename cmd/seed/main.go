// Command seed fills an empty REST store with generated authors and books,
// going through the same operations the GraphQL mutations use.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"bookgraph/internal/datasource"
	"bookgraph/internal/logger"
	"bookgraph/internal/platform/jsonserver"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var genres = []string{
	"ADVENTURE", "CLASSICS", "DETECTIVE_MYSTERY", "DYSTOPIA", "FANTASY",
	"HORROR", "NON_FICTION", "SCIENCE_FICTION", "ROMANCE", "THRILLER",
}

var words = []string{
	"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
	"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
	"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
	"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
}

var firstNames = []string{"Ada", "Ben", "Clara", "Dev", "Elena", "Farid", "Grace", "Hiro", "Iris", "Jonas"}
var lastNames = []string{"Abara", "Brandt", "Castillo", "Dubois", "Eriksen", "Fontaine", "Gupta", "Haddad", "Ito", "Jovanovic"}

func main() {
	authors := flag.Int("authors", 20, "number of authors to create")
	books := flag.Int("books", 100, "number of books to create")
	flag.Parse()

	if err := run(*authors, *books); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(authorCount, bookCount int) error {
	_ = godotenv.Load(".env.local")
	baseURL := os.Getenv("REST_API_BASE_URL")
	if baseURL == "" {
		return fmt.Errorf("missing required environment variable: REST_API_BASE_URL")
	}
	log, err := logger.New("development", "info")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client := jsonserver.NewClient(baseURL, jsonserver.Options{Timeout: 5 * time.Second, Logger: log})
	svc := datasource.NewService(client, nil, log)
	return seed(context.Background(), svc, log, rand.New(rand.NewSource(time.Now().UnixNano())), authorCount, bookCount)
}

func seed(ctx context.Context, svc *datasource.Service, log *zap.Logger, rng *rand.Rand, authorCount, bookCount int) error {
	if authorCount <= 0 {
		return fmt.Errorf("need at least one author")
	}

	log.Info("creating authors", zap.Int("count", authorCount))
	authorIDs := make([]int, 0, authorCount)
	for i := 0; i < authorCount; i++ {
		name := fmt.Sprintf("%s %s", firstNames[rng.Intn(len(firstNames))], lastNames[rng.Intn(len(lastNames))])
		author, err := svc.CreateAuthor(ctx, name)
		if err != nil {
			return fmt.Errorf("create author %d: %w", i+1, err)
		}
		authorIDs = append(authorIDs, author.ID)
	}

	log.Info("creating books", zap.Int("count", bookCount))
	for i := 0; i < bookCount; i++ {
		genre := genres[rng.Intn(len(genres))]
		summary := fmt.Sprintf("A book about %s.", strings.ToLower(randomWord(rng)))
		in := datasource.CreateBookInput{
			Title:     fmt.Sprintf("%s of %s", randomWord(rng), randomWord(rng)),
			AuthorIDs: pickAuthors(rng, authorIDs),
			Genre:     &genre,
			Summary:   &summary,
		}
		if _, err := svc.CreateBook(ctx, in); err != nil {
			return fmt.Errorf("create book %d: %w", i+1, err)
		}
		if (i+1)%50 == 0 {
			log.Info("progress", zap.Int("books", i+1), zap.Int("total", bookCount))
		}
	}

	log.Info("seed complete", zap.Int("authors", authorCount), zap.Int("books", bookCount))
	return nil
}

func randomWord(rng *rand.Rand) string {
	return words[rng.Intn(len(words))]
}

// pickAuthors returns one author, or two distinct ones for about a fifth of
// the books.
func pickAuthors(rng *rand.Rand, ids []int) []int {
	first := ids[rng.Intn(len(ids))]
	if len(ids) < 2 || rng.Intn(5) != 0 {
		return []int{first}
	}
	for {
		if second := ids[rng.Intn(len(ids))]; second != first {
			return []int{first, second}
		}
	}
}
