package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bodul/crossword/internal/crossword"
)

type generateFlags struct {
	wordsFile string
	textFile  string
	out       string
	title     string
	attempts  int
	seed      uint64
	save      bool
	preview   bool
}

func (a *app) generateCommand() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a puzzle from a word list or news text",
		Long: `Build a crossword puzzle and write it as JSON.

Words come either from a JSON file holding [{"word", "clue", "definition", "source_url"}]
records (--words) or from a plain-text news file sent to Gemini for extraction (--text).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if (f.wordsFile == "") == (f.textFile == "") {
				return errors.New("exactly one of --words or --text is required")
			}

			gen, cleanup, err := a.newGenerator(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := GenerateOptions{Attempts: f.attempts, Title: f.title}
			if cmd.Flags().Changed("seed") {
				opts.Seed = &f.seed
			}

			var puzzle *crossword.Puzzle
			if f.wordsFile != "" {
				words, err := readWordsFile(f.wordsFile)
				if err != nil {
					return err
				}
				puzzle, err = gen.FromWords(words, opts)
				if err != nil {
					return err
				}
			} else {
				text, err := os.ReadFile(f.textFile)
				if err != nil {
					return fmt.Errorf("read text: %w", err)
				}
				puzzle, err = gen.FromText(ctx, string(text), opts)
				if err != nil {
					return err
				}
			}

			if f.save {
				store, err := openStore(ctx, a.cfg.Store)
				if err != nil {
					return err
				}
				defer store.Close()
				if _, err := store.Save(ctx, puzzle); err != nil {
					return err
				}
				logger.Info("Puzzle stored", "id", puzzle.ID, "backend", a.cfg.Store.Backend)
			}

			out := f.out
			if out == "" {
				out = a.cfg.Output.Path
			}
			if err := writePuzzleFile(out, puzzle); err != nil {
				return err
			}
			logger.Info("Puzzle saved", "path", out, "words", puzzle.Score())

			if f.preview {
				rendered, err := renderPuzzle(puzzle, false)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.wordsFile, "words", "", "JSON file with word/clue records")
	cmd.Flags().StringVar(&f.textFile, "text", "", "news text file for Gemini extraction")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output path (default from config: "+defaultOutputPath+")")
	cmd.Flags().StringVar(&f.title, "title", "", "puzzle title (default: dated daily title)")
	cmd.Flags().IntVar(&f.attempts, "attempts", 0, "layout attempts (default from config)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed for a reproducible layout")
	cmd.Flags().BoolVar(&f.save, "save", false, "also save the puzzle to the configured store")
	cmd.Flags().BoolVar(&f.preview, "preview", false, "print the grid after generation")
	return cmd
}

func (a *app) previewCommand() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Render a puzzle JSON file in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			puzzle, err := readPuzzleFile(args[0])
			if err != nil {
				return err
			}
			rendered, err := renderPuzzle(puzzle, reveal)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "show the answers")
	return cmd
}

func readWordsFile(path string) ([]crossword.WordInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	var words []crossword.WordInput
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("parse words %s: %w", path, err)
	}
	return words, nil
}

func readPuzzleFile(path string) (*crossword.Puzzle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read puzzle: %w", err)
	}
	var p crossword.Puzzle
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse puzzle %s: %w", path, err)
	}
	return &p, nil
}

// writePuzzleFile writes p as indented JSON, creating parent directories.
func writePuzzleFile(path string, p *crossword.Puzzle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode puzzle: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write puzzle: %w", err)
	}
	return nil
}
