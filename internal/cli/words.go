package cli

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/statgrapher/pkg/chart"
	"github.com/matzehuels/statgrapher/pkg/errors"
	"github.com/matzehuels/statgrapher/pkg/words"
)

// wordsCommand creates the words command for checking a word file.
func (c *CLI) wordsCommand() *cobra.Command {
	var (
		samples int
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "words [file]",
		Short: "Validate a word file and preview captions",
		Long: `Validate a word file and preview captions.

A word file has four sections introduced by *1*, *2*, *3* and *4* header
lines, one word or phrase per line. Captions take one entry from each of
the first three sections and, one time in five, a fourth from section 4.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadConfig(c.ConfigPath)
				if err != nil {
					return err
				}
				path = cfg.Render.Words
			}
			if path == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "no word file: pass a path or set render.words in the config")
			}
			if seed == 0 {
				seed = rand.Uint64()
			}
			return runWords(cmd.OutOrStdout(), path, samples, seed)
		},
	}

	cmd.Flags().IntVarP(&samples, "samples", "s", 5, "number of sample captions")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for samples (0 picks one)")

	return cmd
}

func runWords(w io.Writer, path string, samples int, seed uint64) error {
	bank, err := words.Load(path)
	if err != nil {
		return err
	}

	fprintSuccess(w, "%s is valid", StyleHighlight.Render(path))
	for i := range words.Categories {
		fprintKeyValue(w, fmt.Sprintf("section %d", i+1), StyleNumber.Render(strconv.Itoa(len(bank[i]))))
	}
	fprintKeyValue(w, "hash", bank.Hash()[:12])

	if samples <= 0 {
		return nil
	}
	fmt.Fprintln(w, StyleTitle.Render("Samples")+StyleDim.Render(fmt.Sprintf(" (seed %d)", seed)))
	r := chart.NewRand(seed)
	for range samples {
		caption, err := words.Compose(r, bank)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "  "+caption)
	}
	return nil
}
