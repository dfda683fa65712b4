package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	notemaster "github.com/mamour-dx/NoteMaster"
)

func main() {
	var (
		dataFile = flag.String("data", "notemaster_data.json", "Path to the exported data file")
		list     = flag.Bool("list", false, "List notes in the data file")
		note     = flag.String("note", "", "Play a quiz for this note")
		addTitle = flag.String("add", "", "Add or overwrite a note with this title (content read from stdin)")
		stats    = flag.Bool("stats", false, "Show attempt statistics")
		verbose  = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	notemaster.SetVerbose(*verbose)

	cfg := notemaster.LoadConfig()
	store := notemaster.NewStore()

	if data, err := os.ReadFile(*dataFile); err == nil {
		if err := store.Import(data); err != nil {
			log.Fatalf("Failed to load data file %s: %v", *dataFile, err)
		}
		notemaster.VerboseLog("Loaded %d notes from %s", len(store.ListNotes()), *dataFile)
	} else if !os.IsNotExist(err) {
		log.Fatalf("Failed to read data file %s: %v", *dataFile, err)
	}

	switch {
	case *list:
		listNotes(store)
	case *stats:
		showStats(store)
	case *addTitle != "":
		addNote(store, *addTitle)
		saveData(store, *dataFile)
	case *note != "":
		playQuiz(store, cfg, *note)
		saveData(store, *dataFile)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func listNotes(store *notemaster.Store) {
	notes := store.ListNotes()
	if len(notes) == 0 {
		fmt.Println("No notes yet.")
		return
	}
	for _, n := range notes {
		fmt.Printf("%s (%d characters, %d questions, %d attempts)\n",
			n.Title, len(n.Content), len(store.GetQuestions(n.Title)), len(store.GetAttempts(n.Title)))
	}
}

func addNote(store *notemaster.Store, title string) {
	fmt.Println("Enter note content, end with an empty line:")
	scanner := bufio.NewScanner(os.Stdin)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		lines = append(lines, line)
	}

	content := strings.Join(lines, "\n")
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		log.Fatal("Title and content must not be empty.")
	}

	store.PutNote(title, content)
	fmt.Printf("Saved note %q (%d characters)\n", title, len(content))
}

func showStats(store *notemaster.Store) {
	all := store.GetAllAttempts()
	if len(all) == 0 {
		fmt.Println("No attempts recorded yet.")
		return
	}

	titles := make([]string, 0, len(all))
	for title := range all {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for _, title := range titles {
		attempts := all[title]
		if len(attempts) == 0 {
			continue
		}
		total := 0
		for _, a := range attempts {
			total += a.Score
		}
		avg := float64(total) / float64(len(attempts))
		fmt.Printf("%s: %d attempts, average score %.1f/%d\n", title, len(attempts), avg, notemaster.MaxScore)
	}
}

func playQuiz(store *notemaster.Store, cfg notemaster.Config, title string) {
	// The store is the source of truth for question sets; the cache file
	// is only consulted when the data file carries none.
	if len(store.GetQuestions(title)) == 0 {
		if cached, err := loadCached(cfg, title); err != nil {
			log.Printf("Could not read question cache for %q: %v", title, err)
		} else if len(cached) > 0 {
			store.PutQuestions(title, cached)
			fmt.Printf("Loaded %d cached questions for %q\n", len(cached), title)
		}
	}

	maker := notemaster.NewQuestionMaker(cfg)
	evaluator := notemaster.NewEvaluator(cfg)

	if logger, err := notemaster.NewLLMLogger(title); err != nil {
		log.Printf("Failed to create service log: %v", err)
	} else {
		maker.SetLogger(logger)
		evaluator.SetLogger(logger)
		defer logger.Close()
	}

	session := notemaster.NewQuizSession(store, maker, evaluator)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := session.Start(ctx, title); err != nil {
		log.Fatalf("Failed to start quiz: %v", err)
	}

	fmt.Printf("🎯 Quiz on: %s (%d questions)\n", title, session.QuestionCount())
	fmt.Println("Type your answer, or 'skip' to pass a question.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)

	for session.State() == notemaster.QuizInProgress {
		question, ok := session.Current()
		if !ok {
			break
		}

		fmt.Printf("Question %d/%d:\n%s\n\n", session.Index()+1, session.QuestionCount(), question.Text)

		fmt.Print("Your answer: ")
		if !scanner.Scan() {
			fmt.Println("\nQuiz interrupted.")
			return
		}
		answer := strings.TrimSpace(scanner.Text())

		if strings.EqualFold(answer, "skip") {
			if err := session.Skip(); err != nil {
				log.Fatalf("Failed to skip: %v", err)
			}
			fmt.Println("⏭️  Skipped.")
			fmt.Println()
			continue
		}

		evaluation, err := session.Submit(ctx, answer)
		if err == notemaster.ErrEmptyAnswer {
			fmt.Println("Please enter an answer before submitting.")
			fmt.Println()
			continue
		}
		if err != nil {
			log.Fatalf("Failed to submit answer: %v", err)
		}

		fmt.Printf("Score: %d/%d\n", evaluation.Score, notemaster.MaxScore)
		fmt.Printf("Feedback: %s\n", evaluation.Feedback)
		fmt.Printf("Reference answer: %s\n", question.Answer)
		fmt.Println()
	}

	summary := session.Summary()
	fmt.Println("🏁 Quiz complete!")
	fmt.Printf("Total score: %d/%d (%.1f%%)\n", summary.TotalScore, summary.MaxScore, summary.Percentage)
}

// loadCached wraps the package-level cache lookup with the configured
// directory.
func loadCached(cfg notemaster.Config, title string) ([]notemaster.Question, error) {
	return notemaster.LoadCachedQuestions(cfg.QuestionsDir, title)
}

func saveData(store *notemaster.Store, dataFile string) {
	data, err := store.Export()
	if err != nil {
		log.Fatalf("Failed to export data: %v", err)
	}
	if err := os.WriteFile(dataFile, data, 0644); err != nil {
		log.Fatalf("Failed to write data file %s: %v", dataFile, err)
	}
	notemaster.VerboseLog("Saved data to %s", dataFile)
}
